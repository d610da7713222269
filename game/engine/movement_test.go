package engine

import "testing"

func TestClampMove_DirectionMapping(t *testing.T) {
	start := Position{X: 3, Y: 3}

	tests := []struct {
		direction Direction
		expected  Position
	}{
		{Up, Position{X: 3, Y: 2}},
		{Down, Position{X: 3, Y: 4}},
		{Left, Position{X: 2, Y: 3}},
		{Right, Position{X: 4, Y: 3}},
	}

	for _, test := range tests {
		t.Run(string(test.direction), func(t *testing.T) {
			got := ClampMove(start, test.direction)
			if got != test.expected {
				t.Errorf("ClampMove(%v, %s): expected %v, got %v", start, test.direction, test.expected, got)
			}
		})
	}
}

func TestClampMove_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		from      Position
		direction Direction
	}{
		{"left edge", Position{X: 0, Y: 5}, Left},
		{"top edge", Position{X: 5, Y: 0}, Up},
		{"right edge", Position{X: GridWidth - 1, Y: 5}, Right},
		{"bottom edge", Position{X: 5, Y: GridHeight - 1}, Down},
		{"origin left", Origin, Left},
		{"origin up", Origin, Up},
		{"far corner right", Position{X: GridWidth - 1, Y: GridHeight - 1}, Right},
		{"far corner down", Position{X: GridWidth - 1, Y: GridHeight - 1}, Down},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ClampMove(test.from, test.direction)
			if got != test.from {
				t.Errorf("Expected move %s from %v to be a no-op, got %v", test.direction, test.from, got)
			}
		})
	}
}

func TestClampMove_InvalidDirection(t *testing.T) {
	p := Position{X: 1, Y: 1}
	if got := ClampMove(p, Direction("north")); got != p {
		t.Errorf("Expected unknown direction to be a no-op, got %v", got)
	}
}

func TestLinearize_Injective(t *testing.T) {
	seen := make(map[int]Position, GridWidth*GridHeight)
	for y := 0; y < GridHeight; y++ {
		for x := 0; x < GridWidth; x++ {
			p := Position{X: x, Y: y}
			i := Linearize(p)
			if prev, dup := seen[i]; dup {
				t.Fatalf("Linearize collision: %v and %v both map to %d", prev, p, i)
			}
			seen[i] = p

			back, ok := Delinearize(i)
			if !ok || back != p {
				t.Fatalf("Delinearize(%d): expected %v, got %v (ok=%v)", i, p, back, ok)
			}
		}
	}
}

func TestLinearize_Values(t *testing.T) {
	if got := Linearize(Position{X: 3, Y: 3}); got != 3+3*GridWidth {
		t.Errorf("Expected %d, got %d", 3+3*GridWidth, got)
	}
	if got := Linearize(Origin); got != 0 {
		t.Errorf("Expected origin to linearize to 0, got %d", got)
	}
}

func TestDelinearize_OutOfRange(t *testing.T) {
	for _, i := range []int{-1, GridWidth * GridHeight, GridWidth*GridHeight + 7} {
		if _, ok := Delinearize(i); ok {
			t.Errorf("Expected Delinearize(%d) to fail", i)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		got, err := ParseDirection(string(d))
		if err != nil {
			t.Errorf("ParseDirection(%q) failed: %v", d, err)
		}
		if got != d {
			t.Errorf("Expected %s, got %s", d, got)
		}
	}

	for _, bad := range []string{"", "UP", "north", "upp"} {
		if _, err := ParseDirection(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestPositionInBounds(t *testing.T) {
	tests := []struct {
		p        Position
		expected bool
	}{
		{Origin, true},
		{Position{X: GridWidth - 1, Y: GridHeight - 1}, true},
		{Position{X: -1, Y: 0}, false},
		{Position{X: 0, Y: -1}, false},
		{Position{X: GridWidth, Y: 0}, false},
		{Position{X: 0, Y: GridHeight}, false},
	}

	for _, test := range tests {
		if got := test.p.InBounds(); got != test.expected {
			t.Errorf("%v.InBounds(): expected %v, got %v", test.p, test.expected, got)
		}
	}
}
