package main

import (
	"errors"
	"math/rand/v2"

	"github.com/wricardo/bulls-and-cows/game/engine"
)

var ErrNoCandidates = errors.New("no candidate is consistent with the feedback")

// Strategy keeps every secret still consistent with the feedback seen so far
// and guesses one of them.
type Strategy struct {
	candidates []engine.Sequence
	rng        *rand.Rand // nil picks the first candidate
}

// NewStrategy enumerates every arrangement of length distinct symbols drawn
// from alphabet.
func NewStrategy(alphabet string, length int, rng *rand.Rand) *Strategy {
	symbols := engine.ParseSequence(alphabet)
	s := &Strategy{rng: rng}
	if length < 1 || length > len(symbols) {
		return s
	}

	used := make([]bool, len(symbols))
	current := make(engine.Sequence, 0, length)

	var build func()
	build = func() {
		if len(current) == length {
			s.candidates = append(s.candidates, current.Clone())
			return
		}
		for i, sym := range symbols {
			if used[i] {
				continue
			}
			used[i] = true
			current = append(current, sym)
			build()
			current = current[:len(current)-1]
			used[i] = false
		}
	}
	build()

	return s
}

// Remaining returns the number of candidates left
func (s *Strategy) Remaining() int {
	return len(s.candidates)
}

// Next returns the next guess
func (s *Strategy) Next() (engine.Sequence, error) {
	if len(s.candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if s.rng == nil {
		return s.candidates[0], nil
	}
	return s.candidates[s.rng.IntN(len(s.candidates))], nil
}

// Observe drops every candidate that would not have scored bulls and cows
// against guess.
func (s *Strategy) Observe(guess engine.Sequence, bulls, cows int) {
	kept := s.candidates[:0]
	for _, c := range s.candidates {
		b, k := engine.Score(c, guess)
		if b == bulls && k == cows {
			kept = append(kept, c)
		}
	}
	s.candidates = kept
}
