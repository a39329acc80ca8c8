package engine

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitGenerator(t *testing.T) {
	gen := NewDigitGenerator()

	for length := MinSequenceLength; length <= MaxSequenceLength; length++ {
		for i := 0; i < 50; i++ {
			secret, err := gen.Generate(length)
			require.NoError(t, err)
			require.Len(t, secret, length)
			assert.True(t, secret.Unique(), secret.String())
			for _, r := range secret {
				assert.True(t, strings.ContainsRune(DigitAlphabet, r), "unexpected symbol %q", r)
			}
		}
	}
}

func TestGeneratorRejectsBadLength(t *testing.T) {
	gen := NewDigitGenerator()

	_, err := gen.Generate(0)
	assert.Error(t, err)
	_, err = gen.Generate(10)
	assert.Error(t, err)
}

func TestNewGeneratorAlphabet(t *testing.T) {
	_, err := NewGenerator("", nil)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)

	_, err = NewGenerator("abca", nil)
	assert.ErrorIs(t, err, ErrInvalidAlphabet)

	gen, err := NewGenerator("abcdef", nil)
	require.NoError(t, err)
	secret, err := gen.Generate(6)
	require.NoError(t, err)
	assert.ElementsMatch(t, []rune("abcdef"), []rune(secret))
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	a, err := NewGenerator(DigitAlphabet, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	b, err := NewGenerator(DigitAlphabet, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		sa, err := a.Generate(5)
		require.NoError(t, err)
		sb, err := b.Generate(5)
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
	}
}

func TestSeededGeneratorConcurrentUse(t *testing.T) {
	gen, err := NewGenerator(DigitAlphabet, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				secret, err := gen.Generate(9)
				if assert.NoError(t, err) {
					assert.True(t, secret.Unique())
				}
			}
		}()
	}
	wg.Wait()
}
