package terminal

import (
	"github.com/nsf/termbox-go"

	"github.com/wricardo/footprints/game/engine"
)

// KeyDirection maps arrow keys and WASD to a direction.
func KeyDirection(ev termbox.Event) (engine.Direction, bool) {
	if ev.Type != termbox.EventKey {
		return "", false
	}
	switch ev.Key {
	case termbox.KeyArrowUp:
		return engine.Up, true
	case termbox.KeyArrowDown:
		return engine.Down, true
	case termbox.KeyArrowLeft:
		return engine.Left, true
	case termbox.KeyArrowRight:
		return engine.Right, true
	}
	switch ev.Ch {
	case 'w', 'W':
		return engine.Up, true
	case 's', 'S':
		return engine.Down, true
	case 'a', 'A':
		return engine.Left, true
	case 'd', 'D':
		return engine.Right, true
	}
	return "", false
}

// IsQuit reports whether ev ends the game.
func IsQuit(ev termbox.Event) bool {
	if ev.Type != termbox.EventKey {
		return false
	}
	return ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q'
}
