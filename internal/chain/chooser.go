package chain

import "math/rand/v2"

// Chooser picks an index in [0, n).
type Chooser interface {
	Intn(n int) int
}

type randomChooser struct{}

// NewRandomChooser returns a Chooser backed by math/rand/v2.
func NewRandomChooser() Chooser {
	return randomChooser{}
}

func (randomChooser) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// pick returns chooser's index for n items, or 0 when it is out of range.
func pick(chooser Chooser, n int) int {
	if n <= 1 {
		return 0
	}
	i := chooser.Intn(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
