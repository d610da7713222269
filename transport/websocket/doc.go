// Package websocket implements the footprints relay.
//
// The relay keeps no game state. It tracks which connections are alive and
// forwards every frame it receives to all of them, sender included.
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns all
// WebSocket connections. Each connection has a read goroutine feeding the
// hub and a write goroutine draining its send queue. Only the hub
// goroutine touches the connection map, so it needs no locks.
//
// Message Handling:
//
//   - Frames that are not valid protocol records are logged and dropped.
//   - A "hello" triggers a leader election: every tracked participant gets
//     a {"_type":"join","leader":bool} frame, with leader=true only for the
//     participant whose connection id sorts first.
//   - Every accepted frame, hello included, is then forwarded verbatim to
//     every tracked participant. Unknown but well-formed tags are forwarded
//     too so newer clients can extend the protocol.
//
// Usage:
//
//	hub := websocket.NewHub(registry.NewMemory(), logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", hub.ServeWS)
//
// Connection Lifecycle:
//
// 1. Client connects and is assigned an opaque connection id
// 2. The id is added to the participant registry
// 3. Frames from the client are fanned out by the hub
// 4. Disconnection, or a full send queue, removes the id again
package websocket
