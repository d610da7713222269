package terminal

import (
	"fmt"
	"strings"

	"github.com/wricardo/footprints/game/engine"
)

const (
	selfGlyph  = '@'
	trailGlyph = '.'
	emptyGlyph = ' '
)

// Glyph returns the letter used for the i-th other character.
func Glyph(i int) rune {
	return rune('a' + i%26)
}

// Render draws world as GridHeight rows of GridWidth cells. The character
// with id self is drawn as '@', other characters as letters in world
// order, footprints as '.'.
func Render(world engine.World, self string) []string {
	cells := make([][]rune, engine.GridHeight)
	for y := range cells {
		cells[y] = []rune(strings.Repeat(string(emptyGlyph), engine.GridWidth))
	}

	for i := range world.Colors {
		if p, ok := engine.Delinearize(i); ok {
			cells[p.Y][p.X] = trailGlyph
		}
	}

	var me *engine.Character
	other := 0
	for i, c := range world.Characters {
		if c.ID == self {
			me = &world.Characters[i]
			continue
		}
		if c.Position.InBounds() {
			cells[c.Position.Y][c.Position.X] = Glyph(other)
		}
		other++
	}
	if me != nil && me.Position.InBounds() {
		cells[me.Position.Y][me.Position.X] = selfGlyph
	}

	rows := make([]string, len(cells))
	for y, row := range cells {
		rows[y] = string(row)
	}
	return rows
}

// Legend describes each character on one line, matching Render's glyphs.
func Legend(world engine.World, self string) []string {
	lines := make([]string, 0, len(world.Characters))
	other := 0
	for _, c := range world.Characters {
		glyph := selfGlyph
		if c.ID != self {
			glyph = Glyph(other)
			other++
		}
		lines = append(lines, fmt.Sprintf("%c %s %s facing %s at %s",
			glyph, c.ID, c.Color, c.Direction, c.Position))
	}
	return lines
}
