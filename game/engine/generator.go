package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// DigitAlphabet is the symbol set secrets are drawn from by default
const DigitAlphabet = "123456789"

var ErrInvalidAlphabet = errors.New("invalid alphabet")

// Generator produces secrets of pairwise distinct symbols
type Generator interface {
	Generate(length int) (Sequence, error)
}

// ShuffleGenerator draws secrets by shuffling a fixed alphabet and keeping
// a prefix of the requested length.
type ShuffleGenerator struct {
	alphabet Sequence

	mu  sync.Mutex
	rng *rand.Rand // nil uses the global source
}

// NewGenerator creates a generator over alphabet. Pass a nil r to use the
// process-wide random source.
func NewGenerator(alphabet string, r *rand.Rand) (*ShuffleGenerator, error) {
	seq := ParseSequence(alphabet)
	if len(seq) == 0 || !seq.Unique() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlphabet, alphabet)
	}
	return &ShuffleGenerator{alphabet: seq, rng: r}, nil
}

// NewDigitGenerator creates a generator over the digits 1-9
func NewDigitGenerator() *ShuffleGenerator {
	return &ShuffleGenerator{alphabet: ParseSequence(DigitAlphabet)}
}

// Generate returns length distinct symbols in random order
func (g *ShuffleGenerator) Generate(length int) (Sequence, error) {
	if length < 1 || length > len(g.alphabet) {
		return nil, fmt.Errorf("cannot draw %d symbols from an alphabet of %d", length, len(g.alphabet))
	}

	symbols := g.alphabet.Clone()
	swap := func(i, j int) { symbols[i], symbols[j] = symbols[j], symbols[i] }

	if g.rng == nil {
		rand.Shuffle(len(symbols), swap)
	} else {
		g.mu.Lock()
		g.rng.Shuffle(len(symbols), swap)
		g.mu.Unlock()
	}

	return symbols[:length], nil
}
