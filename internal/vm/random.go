package vm

import (
	"math/rand"
	"time"
)

// NewRandom returns a random source for the random instruction.
// A seed of 0 seeds the source from the current time.
func NewRandom(seed int64) Random {
	return newRandom(seed)
}

func newRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
