package live

import "github.com/vango-dev/didact/pkg/host/memhost"

// MessageType identifies a websocket message.
type MessageType string

const (
	MessageSnapshot MessageType = "snapshot"
	MessageOps      MessageType = "ops"
	MessageEvent    MessageType = "event"
	MessageError    MessageType = "error"
)

// Message is exchanged over the websocket in both directions.
type Message struct {
	Type MessageType `json:"type"`

	// Server to client.
	Root  *memhost.SnapshotNode `json:"root,omitempty"`
	Ops   []memhost.Op          `json:"ops,omitempty"`
	Error string                `json:"error,omitempty"`

	// Client to server.
	Node  int    `json:"node,omitempty"`
	Event string `json:"event,omitempty"`
	Value string `json:"value,omitempty"`
}
