package protocol

import "github.com/wricardo/footprints/game/engine"

// Type is the wire discriminator of a message.
type Type string

const (
	TypeHello    Type = "hello"
	TypeJoin     Type = "join"
	TypeSnapshot Type = "context"
	TypeMove     Type = "move"
)

// Message is implemented by every protocol variant.
type Message interface {
	Type() Type
	isMessage()
}

// Hello is sent once by a session right after its channel opens. It asks
// the relay to run a leader election among the connected participants.
type Hello struct{}

// Join is produced by the relay for every participant in response to a
// Hello. Exactly one recipient per round gets Leader set.
type Join struct {
	Leader bool `json:"leader"`
}

// Snapshot carries the full world of the elected leader.
type Snapshot struct {
	Context engine.World `json:"context"`
}

// Move announces one step of a character. The resulting position is not
// carried; receivers recompute it from their own view of the character.
type Move struct {
	ID          string           `json:"id"`
	Color       string           `json:"color"`
	Direction   engine.Direction `json:"direction"`
	SpriteIndex int              `json:"spriteIndex"`
}

func (Hello) Type() Type    { return TypeHello }
func (Join) Type() Type     { return TypeJoin }
func (Snapshot) Type() Type { return TypeSnapshot }
func (Move) Type() Type     { return TypeMove }

func (Hello) isMessage()    {}
func (Join) isMessage()     {}
func (Snapshot) isMessage() {}
func (Move) isMessage()     {}

// NewMove builds the Move a character sends when stepping in d.
func NewMove(c engine.Character, d engine.Direction) Move {
	return Move{
		ID:          c.ID,
		Color:       c.Color,
		Direction:   d,
		SpriteIndex: c.SpriteIndex,
	}
}
