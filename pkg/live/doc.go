// Package live serves a memhost document to browsers. Clients receive a
// snapshot of the tree on connect and the op journal of every commit
// afterwards; events from the browser are dispatched on the frame loop
// that owns the runtime.
//
//	GET /         page with the current tree and the client script
//	GET /ws       websocket: snapshot, ops, events
//	GET /metrics  Prometheus metrics
//	GET /healthz  liveness
package live
