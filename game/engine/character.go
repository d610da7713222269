package engine

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// NewCharacter creates a fresh local identity: a random id, a random
// rgb() color and sprite variant, facing down at the origin.
func NewCharacter(r *rand.Rand) Character {
	return Character{
		ID:          uuid.NewString(),
		Color:       RandomColor(r),
		SpriteIndex: r.Intn(SpriteVariants),
		Direction:   Down,
		Position:    Origin,
	}
}

// RandomColor returns a CSS rgb() color string.
func RandomColor(r *rand.Rand) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", r.Intn(256), r.Intn(256), r.Intn(256))
}
