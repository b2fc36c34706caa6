package memhost

// OpKind identifies a journaled host mutation.
type OpKind string

const (
	OpCreate     OpKind = "create"
	OpText       OpKind = "text"
	OpSetAttr    OpKind = "set"
	OpRemoveAttr OpKind = "remove-attr"
	OpListen     OpKind = "listen"
	OpUnlisten   OpKind = "unlisten"
	OpAppend     OpKind = "append"
	OpRemove     OpKind = "remove"
)

// Op is one host mutation, serializable for remote mirrors.
type Op struct {
	Kind   OpKind `json:"op"`
	Node   int    `json:"node"`
	Parent int    `json:"parent,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
}
