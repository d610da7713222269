package terminal

import (
	"context"
	"fmt"

	"github.com/nsf/termbox-go"

	"github.com/wricardo/footprints/game/engine"
)

// Player is the part of a session controller the terminal drives.
type Player interface {
	Self() engine.Character
	World() engine.World
	Move(dir engine.Direction) error
	Subscribe(fn func(engine.World))
}

// Run takes over the terminal and plays until ctx ends or the player quits.
func Run(ctx context.Context, player Player) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetOutputMode(termbox.Output256)

	redraw := make(chan struct{}, 1)
	player.Subscribe(func(engine.World) {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})

	events := make(chan termbox.Event)
	done := make(chan struct{})
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	defer termbox.Interrupt()
	defer close(done)

	self := player.Self()
	draw(player.World(), self)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-redraw:
			draw(player.World(), self)

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Type == termbox.EventError {
				return fmt.Errorf("terminal: %w", ev.Err)
			}
			if IsQuit(ev) {
				return nil
			}
			if ev.Type == termbox.EventResize {
				draw(player.World(), self)
				continue
			}
			if dir, ok := KeyDirection(ev); ok {
				// failures are already logged by the controller
				_ = player.Move(dir)
			}
		}
	}
}

func draw(world engine.World, self engine.Character) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	rows := Render(world, self.ID)
	for y, row := range rows {
		for x, ch := range []rune(row) {
			fg := termbox.ColorDefault
			if color, ok := world.Colors.At(engine.Position{X: x, Y: y}); ok && ch == trailGlyph {
				fg = Color(color)
			}
			// two columns per cell keeps the grid roughly square
			termbox.SetCell(2*x, y, ch, fg, termbox.ColorDefault)
		}
	}

	other := 0
	for _, c := range world.Characters {
		if c.ID == self.ID {
			continue
		}
		if c.Position.InBounds() {
			termbox.SetCell(2*c.Position.X, c.Position.Y, Glyph(other), Color(c.Color)|termbox.AttrBold, termbox.ColorDefault)
		}
		other++
	}
	if me, ok := world.Character(self.ID); ok && me.Position.InBounds() {
		termbox.SetCell(2*me.Position.X, me.Position.Y, selfGlyph, Color(me.Color)|termbox.AttrBold, termbox.ColorDefault)
	}

	for i, ch := range StatusLine(world, self.ID) {
		termbox.SetCell(i, engine.GridHeight+1, ch, termbox.ColorDefault, termbox.ColorDefault)
	}
	termbox.Flush()
}

// StatusLine is the help text under the grid. Characters are never removed
// from a world, so the count includes players who have left.
func StatusLine(world engine.World, self string) string {
	return fmt.Sprintf("%s  arrows/WASD move, q quits, %d characters seen", self, len(world.Characters))
}
