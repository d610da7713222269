package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/footprints/game/engine"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

type envelope struct {
	Tag    Type `json:"_type"`
	AltTag Type `json:"type"`
}

func (e envelope) kind() Type {
	if e.Tag != "" {
		return e.Tag
	}
	return e.AltTag
}

// PeekType reads only the discriminator of a raw message.
func PeekType(data []byte) (Type, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	t := env.kind()
	if t == "" {
		return "", fmt.Errorf("%w: missing _type", ErrMalformed)
	}
	return t, nil
}

// Encode serializes msg with its "_type" discriminator.
func Encode(msg Message) ([]byte, error) {
	var v any
	switch m := msg.(type) {
	case Hello:
		v = struct {
			Tag Type `json:"_type"`
		}{TypeHello}
	case Join:
		v = struct {
			Tag Type `json:"_type"`
			Join
		}{TypeJoin, m}
	case Snapshot:
		v = struct {
			Tag Type `json:"_type"`
			Snapshot
		}{TypeSnapshot, m}
	case Move:
		v = struct {
			Tag Type `json:"_type"`
			Move
		}{TypeMove, m}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}
	return json.Marshal(v)
}

// Decode parses and validates a raw message.
func Decode(data []byte) (Message, error) {
	t, err := PeekType(data)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeHello:
		return Hello{}, nil

	case TypeJoin:
		var m Join
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: join: %v", ErrMalformed, err)
		}
		return m, nil

	case TypeSnapshot:
		var m Snapshot
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: context: %v", ErrMalformed, err)
		}
		if err := validateWorld(m.Context); err != nil {
			return nil, fmt.Errorf("%w: context: %v", ErrMalformed, err)
		}
		if m.Context.Colors == nil {
			m.Context.Colors = engine.Trail{}
		}
		return m, nil

	case TypeMove:
		var m Move
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: move: %v", ErrMalformed, err)
		}
		if m.ID == "" {
			return nil, fmt.Errorf("%w: move: missing id", ErrMalformed)
		}
		if !m.Direction.Valid() {
			return nil, fmt.Errorf("%w: move: invalid direction %q", ErrMalformed, m.Direction)
		}
		return m, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func validateWorld(w engine.World) error {
	seen := make(map[string]bool, len(w.Characters))
	for _, c := range w.Characters {
		if c.ID == "" {
			return errors.New("character without id")
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate character %s", c.ID)
		}
		seen[c.ID] = true
		if !c.Position.InBounds() {
			return fmt.Errorf("character %s outside grid at %v", c.ID, c.Position)
		}
	}
	return nil
}
