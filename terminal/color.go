package terminal

import (
	"fmt"

	"github.com/nsf/termbox-go"
)

// Color maps a CSS rgb(r,g,b) string onto the 256-color cube. Anything
// else is drawn in the default color.
func Color(css string) termbox.Attribute {
	var r, g, b int
	if _, err := fmt.Sscanf(css, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
		return termbox.ColorDefault
	}
	index := 16 + 36*cube(r) + 6*cube(g) + cube(b)
	// Output256 attributes are the palette index plus one.
	return termbox.Attribute(index + 1)
}

func cube(v int) int {
	v = max(0, min(255, v))
	return (v*5 + 127) / 255
}
