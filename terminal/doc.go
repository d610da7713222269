// Package terminal draws the shared grid as text and plays it from a
// terminal with termbox-go.
//
// Render and Legend are pure and also feed the MCP surface. Run owns the
// terminal until the context ends or the player quits with Esc, Ctrl-C
// or q. Arrow keys and WASD move.
package terminal
