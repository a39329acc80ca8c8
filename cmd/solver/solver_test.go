package main

import (
	"context"
	"math/rand/v2"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/bulls-and-cows/api"
	"github.com/wricardo/bulls-and-cows/game/config"
	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/service"
	"github.com/wricardo/bulls-and-cows/game/session"
)

func TestNewStrategy_Enumerates(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{length: 1, want: 9},
		{length: 2, want: 72},
		{length: 4, want: 3024},
		{length: 0, want: 0},
		{length: 10, want: 0},
	}
	for _, tt := range tests {
		s := NewStrategy(engine.DigitAlphabet, tt.length, nil)
		assert.Equal(t, tt.want, s.Remaining(), "length %d", tt.length)
	}

	s := NewStrategy("123", 3, nil)
	seen := map[string]bool{}
	for _, c := range s.candidates {
		assert.True(t, c.Unique())
		seen[c.String()] = true
	}
	assert.Len(t, seen, 6)
}

func TestStrategy_Observe(t *testing.T) {
	s := NewStrategy(engine.DigitAlphabet, 4, nil)
	s.Observe(engine.ParseSequence("1234"), 4, 0)
	require.Equal(t, 1, s.Remaining())

	guess, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "1234", guess.String())

	s.Observe(engine.ParseSequence("5678"), 1, 0)
	assert.Zero(t, s.Remaining())
	_, err = s.Next()
	assert.ErrorIs(t, err, ErrNoCandidates)
}

// solveLocally plays against secret without a server
func solveLocally(t *testing.T, secret string, rng *rand.Rand) int {
	t.Helper()
	target := engine.ParseSequence(secret)
	s := NewStrategy(engine.DigitAlphabet, len(target), rng)
	for guesses := 1; ; guesses++ {
		guess, err := s.Next()
		require.NoError(t, err, secret)
		bulls, cows := engine.Score(target, guess)
		if bulls == len(target) {
			return guesses
		}
		s.Observe(guess, bulls, cows)
	}
}

func TestStrategy_SolvesFourDigitSecrets(t *testing.T) {
	all := NewStrategy(engine.DigitAlphabet, 4, nil).candidates
	worst := 0
	for i := 0; i < len(all); i += 31 {
		n := solveLocally(t, all[i].String(), nil)
		if n > worst {
			worst = n
		}
	}
	assert.LessOrEqual(t, worst, 10)
}

func TestStrategy_SeededIsDeterministic(t *testing.T) {
	a := solveLocally(t, "9587", rand.New(rand.NewPCG(7, 7)))
	b := solveLocally(t, "9587", rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
}

type fixedGenerator string

func (g fixedGenerator) Generate(length int) (engine.Sequence, error) {
	return engine.ParseSequence(string(g))[:length], nil
}

func newTestServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	presets, err := config.NewManager("")
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(), presets, service.WithGenerator(fixedGenerator(secret)))
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestPlay_WinsOverHTTP(t *testing.T) {
	ts := newTestServer(t, "846213579")
	client := NewClient(ts.URL)
	ctx := context.Background()

	attempts := uint32(20)
	game, err := client.StartGame(ctx, service.StartOptions{Length: intPtr(5), MaxAttempts: &attempts})
	require.NoError(t, err)

	result, err := play(ctx, client, game, NewStrategy(engine.DigitAlphabet, game.Length, nil), 0)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeWin, result.Outcome)
	assert.Equal(t, "84621", result.Guess)
}

func TestPlay_ResumesFromHistory(t *testing.T) {
	ts := newTestServer(t, "4321")
	client := NewClient(ts.URL)
	ctx := context.Background()

	attempts := uint32(20)
	game, err := client.StartGame(ctx, service.StartOptions{Length: intPtr(4), MaxAttempts: &attempts})
	require.NoError(t, err)

	_, err = client.Guess(ctx, game.ID, "1234")
	require.NoError(t, err)

	game, err = client.GetGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, game.History, 1)

	strategy := NewStrategy(engine.DigitAlphabet, 4, nil)
	result, err := play(ctx, client, game, strategy, 0)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeWin, result.Outcome)
	assert.Equal(t, "4321", result.Guess)
}

func TestPlay_ReportsLoss(t *testing.T) {
	ts := newTestServer(t, "9876")
	client := NewClient(ts.URL)
	ctx := context.Background()

	attempts := uint32(0)
	game, err := client.StartGame(ctx, service.StartOptions{Length: intPtr(4), MaxAttempts: &attempts})
	require.NoError(t, err)

	result, err := play(ctx, client, game, NewStrategy(engine.DigitAlphabet, 4, nil), 0)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeLoss, result.Outcome)
	assert.Equal(t, "9876", result.Answer)
}

func TestClient_Errors(t *testing.T) {
	ts := newTestServer(t, "1234")
	client := NewClient(ts.URL)

	_, err := client.GetGame(context.Background(), 77)
	assert.ErrorContains(t, err, "Game with id 77 does not exist")

	_, err = client.StartGame(context.Background(), service.StartOptions{Length: intPtr(2)})
	assert.ErrorContains(t, err, "400")
}

func intPtr(v int) *int { return &v }
