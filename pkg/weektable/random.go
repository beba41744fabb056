package weektable

import (
	"math/rand/v2"
	"time"
)

// RandomSource produces values uniformly distributed in a range.
type RandomSource interface {
	// Between returns a value in [min, max]. When min == max it returns min.
	Between(min, max float64) float64
}

type pcgSource struct {
	r *rand.Rand
}

// NewRandomSource returns a PCG-backed source. A zero seed seeds from the clock.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *pcgSource) Between(min, max float64) float64 {
	v := s.r.Float64()*(max-min) + min
	if v > max {
		v = max
	}
	return v
}
