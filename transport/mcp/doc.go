// Package mcp exposes a footprints player as a Model Context Protocol
// server, so an AI agent can walk the shared grid.
//
// Tools:
//   - whoami: the agent's character and where the world currently places it
//   - world: the grid as text plus a legend of every character
//   - move: one step up, down, left or right
//   - walk: up to 50 steps in order
//   - participants: connection ids and the elected leader, from the relay
//     admin API
//
// Moves are broadcast through the relay and applied when the echo comes
// back, so the world tool may lag a just-sent move by a round trip.
//
// Usage:
//
//	srv := mcp.NewServer(controller, adminURL, log)
//	if err := server.ServeStdio(srv.MCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
