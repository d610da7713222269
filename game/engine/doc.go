// Package engine defines the data model shared by every footprints participant.
//
// The engine package provides:
//   - The grid coordinate space and single-step movement rules
//   - Character identity and display attributes
//   - The World value (characters plus the footprint trail)
//   - The wire form of the trail as a sparse JSON array
//
// Grid:
//
// The grid is GridWidth x GridHeight cells. A Position is valid when both
// coordinates lie inside it. ClampMove shifts a position by one cell and
// returns the original position when the shift would leave the grid, so a
// move into a wall is a silent no-op rather than an error.
//
// Trail:
//
// Every time a character leaves a cell, that cell is painted with the
// character's color. Cells are keyed by Linearize(position). Entries are
// only ever overwritten, never removed.
//
// Immutability:
//
// World values are never mutated in place. Every helper that changes a
// world returns a new World and leaves the receiver's slices and maps
// untouched, so a published World can be shared freely between goroutines.
//
// Usage:
//
//	self := engine.NewCharacter(rand.New(rand.NewSource(time.Now().UnixNano())))
//	world := engine.NewWorld(self)
//	next := engine.ClampMove(self.Position, engine.Right)
package engine
