package engine

// ClampMove returns p shifted one cell in direction d. When the shift would
// leave the grid, or d is not a known direction, p is returned unchanged.
func ClampMove(p Position, d Direction) Position {
	switch d {
	case Up:
		if p.Y > 0 {
			return Position{X: p.X, Y: p.Y - 1}
		}
	case Down:
		if p.Y+1 < GridHeight {
			return Position{X: p.X, Y: p.Y + 1}
		}
	case Left:
		if p.X > 0 {
			return Position{X: p.X - 1, Y: p.Y}
		}
	case Right:
		if p.X+1 < GridWidth {
			return Position{X: p.X + 1, Y: p.Y}
		}
	}
	return p
}

// Linearize maps a valid position onto a single cell index (x + y*GridWidth).
func Linearize(p Position) int {
	return p.X + p.Y*GridWidth
}

// Delinearize is the inverse of Linearize. It returns false for indices
// outside the grid.
func Delinearize(i int) (Position, bool) {
	if i < 0 || i >= GridWidth*GridHeight {
		return Position{}, false
	}
	return Position{X: i % GridWidth, Y: i / GridWidth}, true
}
