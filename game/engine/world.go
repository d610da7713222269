package engine

import (
	"encoding/json"
	"maps"
	"slices"
)

// Trail maps a linearized cell to the color of the last character that left it.
type Trail map[int]string

// At returns the color painted at p, if any.
func (t Trail) At(p Position) (string, bool) {
	c, ok := t[Linearize(p)]
	return c, ok
}

// With returns a copy of t with p painted in color. t is left untouched.
func (t Trail) With(p Position, color string) Trail {
	out := make(Trail, len(t)+1)
	maps.Copy(out, t)
	out[Linearize(p)] = color
	return out
}

// Clone returns an independent copy of t.
func (t Trail) Clone() Trail {
	out := make(Trail, len(t))
	maps.Copy(out, t)
	return out
}

// MarshalJSON encodes the trail as a sparse array indexed by cell, with
// null for cells that were never painted.
func (t Trail) MarshalJSON() ([]byte, error) {
	last := -1
	for i := range t {
		if i > last {
			last = i
		}
	}
	cells := make([]*string, last+1)
	for i, color := range t {
		if i < 0 {
			continue
		}
		c := color
		cells[i] = &c
	}
	return json.Marshal(cells)
}

// UnmarshalJSON accepts the sparse array form. Nulls and indices outside the
// grid are ignored.
func (t *Trail) UnmarshalJSON(data []byte) error {
	var cells []*string
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	out := make(Trail)
	for i, c := range cells {
		if c == nil || i >= GridWidth*GridHeight {
			continue
		}
		out[i] = *c
	}
	*t = out
	return nil
}

// World is the replicated state every participant converges on.
type World struct {
	Characters []Character `json:"characters"`
	Colors     Trail       `json:"colors"`
}

// NewWorld creates a world holding the given characters and an empty trail.
func NewWorld(characters ...Character) World {
	return World{
		Characters: append([]Character{}, characters...),
		Colors:     Trail{},
	}
}

// MarshalJSON always emits an array for characters, never null.
func (w World) MarshalJSON() ([]byte, error) {
	type wire World
	out := wire(w)
	if out.Characters == nil {
		out.Characters = []Character{}
	}
	return json.Marshal(out)
}

// Clone returns a deep copy of w.
func (w World) Clone() World {
	return World{
		Characters: append([]Character{}, w.Characters...),
		Colors:     w.Colors.Clone(),
	}
}

// Index returns the position of the character with the given id in
// Characters, or -1.
func (w World) Index(id string) int {
	return slices.IndexFunc(w.Characters, func(c Character) bool { return c.ID == id })
}

// Character looks up a character by id.
func (w World) Character(id string) (Character, bool) {
	if i := w.Index(id); i >= 0 {
		return w.Characters[i], true
	}
	return Character{}, false
}

// WithCharacter returns a copy of w where c replaces the character with the
// same id, or is appended when the id is new. The trail is shared.
func (w World) WithCharacter(c Character) World {
	chars := append(make([]Character, 0, len(w.Characters)+1), w.Characters...)
	if i := w.Index(c.ID); i >= 0 {
		chars[i] = c
	} else {
		chars = append(chars, c)
	}
	return World{Characters: chars, Colors: w.Colors}
}
