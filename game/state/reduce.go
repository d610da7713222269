// Package state folds protocol messages into a World.
package state

import (
	"github.com/wricardo/footprints/game/engine"
	"github.com/wricardo/footprints/game/protocol"
)

// Reduce returns the world that results from applying msg to w. It never
// mutates w and has no side effects; the leader's snapshot reply to a Join
// is the caller's job.
//
// Move does not carry the resulting position, so Reduce assumes the
// receiver's view of the mover already agrees with every other receiver's.
// A lost Move or a Snapshot arriving after newer Moves breaks that
// assumption and the views drift until a later Snapshot.
func Reduce(w engine.World, msg protocol.Message) engine.World {
	switch m := msg.(type) {
	case protocol.Hello, protocol.Join:
		return w
	case protocol.Snapshot:
		return Merge(w, m.Context)
	case protocol.Move:
		return ApplyMove(w, m)
	}
	return w
}

// Merge overlays incoming onto local. Characters present in incoming win;
// local characters missing from it are kept ahead of the incoming ones.
// The incoming trail replaces the local one wholesale.
func Merge(local, incoming engine.World) engine.World {
	out := engine.World{
		Characters: make([]engine.Character, 0, len(local.Characters)+len(incoming.Characters)),
		Colors:     incoming.Colors.Clone(),
	}
	for _, c := range local.Characters {
		if incoming.Index(c.ID) < 0 {
			out.Characters = append(out.Characters, c)
		}
	}
	out.Characters = append(out.Characters, incoming.Characters...)
	return out
}

// ApplyMove applies one Move. An unknown id enters the world at the origin
// with the message's attributes. A known character steps one cell; if the
// step is blocked by the grid edge nothing changes at all, facing included.
// Otherwise the cell being left is painted with the character's color.
func ApplyMove(w engine.World, m protocol.Move) engine.World {
	existing, ok := w.Character(m.ID)
	if !ok {
		return w.WithCharacter(engine.Character{
			ID:          m.ID,
			Color:       m.Color,
			SpriteIndex: m.SpriteIndex,
			Direction:   m.Direction,
			Position:    engine.Origin,
		})
	}

	next := engine.ClampMove(existing.Position, m.Direction)
	if next == existing.Position {
		return w
	}

	moved := existing
	moved.Direction = m.Direction
	moved.Position = next

	out := w.WithCharacter(moved)
	out.Colors = w.Colors.With(existing.Position, existing.Color)
	return out
}
