package engine

import "fmt"

const (
	// GridWidth is the number of columns in the shared grid.
	GridWidth = 40
	// GridHeight is the number of rows in the shared grid.
	GridHeight = 40

	// SpriteVariants is the number of visual assets a character can pick from.
	SpriteVariants = 3
)

// Position represents x,y coordinates on the grid
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Origin is where characters first appear.
var Origin = Position{X: 0, Y: 0}

// InBounds reports whether p lies inside the grid.
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < GridWidth && p.Y >= 0 && p.Y < GridHeight
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is one of the four single-step moves.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every valid direction.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts a wire string into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("invalid direction %q", s)
	}
	return d, nil
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Character is a participant's avatar. Identity is ID; everything else may change.
type Character struct {
	ID          string    `json:"id"`
	Color       string    `json:"color"`
	SpriteIndex int       `json:"spriteIndex"`
	Direction   Direction `json:"direction"`
	Position    Position  `json:"position"`
}
