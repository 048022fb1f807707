package trajectory

import (
	"math/rand"
	"time"
)

// Source supplies the uniform draws behind each month's rejection trial.
// A month rejects when the draw is strictly below the rejection probability.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source for the seed.
// A zero seed uses the current time.
func NewSeededSource(seed int64) Source {
	if seed == 0 {
		seed = timeSeed()
	}
	return newSource(seed)
}

// newSource seeds a source as given; zero is an ordinary seed here.
func newSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// timeNow is a package-level variable for testability.
var timeNow = time.Now

func timeSeed() int64 {
	return timeNow().UnixNano()
}

// Sequence is a pre-recorded list of draws. Once exhausted it keeps
// returning its last value; an empty Sequence always returns 0.
//
// Sequence{0} rejects every applying month with a positive probability;
// Sequence{1} never rejects.
type Sequence []float64

// Float64 implements Source. Sequence is consumed through a pointer so
// the read position advances.
func (s *Sequence) Float64() float64 {
	if len(*s) == 0 {
		return 0
	}
	v := (*s)[0]
	if len(*s) > 1 {
		*s = (*s)[1:]
	}
	return v
}
