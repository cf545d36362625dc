package gif

import "math/rand/v2"

// Sampler picks candidate indices for random resolution.
type Sampler interface {
	// Intn returns an index in [0, n). n is always positive.
	Intn(n int) int
}

// RandomSampler draws uniformly with repetition, so the same candidate can
// be drawn more than once.
type RandomSampler struct{}

// Intn returns a uniform index in [0, n).
func (RandomSampler) Intn(n int) int {
	return rand.IntN(n)
}

// SequenceSampler replays a fixed list of indices, wrapping around when the
// list is exhausted. Indices are reduced modulo n.
type SequenceSampler struct {
	Indices []int
	next    int
}

// Intn returns the next index in the sequence.
func (s *SequenceSampler) Intn(n int) int {
	if len(s.Indices) == 0 {
		return 0
	}
	i := s.Indices[s.next%len(s.Indices)]
	s.next++
	return ((i % n) + n) % n
}
