package engine

import "fmt"

// Game holds the secret, the attempt budget and the guess history of one
// bulls and cows round. A Game is not safe for concurrent use; the session
// manager serializes access to it.
type Game struct {
	secret      Sequence
	maxAttempts uint32
	history     []HistoryEntry
	state       State
}

// NewGame creates a game in progress for the given secret
func NewGame(secret Sequence, maxAttempts uint32) (*Game, error) {
	if !secret.Unique() {
		return nil, fmt.Errorf("secret %q: %w", secret.String(), ErrNonUniqueSequence)
	}

	return &Game{
		secret:      secret.Clone(),
		maxAttempts: maxAttempts,
		history:     []HistoryEntry{},
		state:       InProgress,
	}, nil
}

// Guess validates and scores a candidate.
//
// Invalid candidates leave the game untouched. Once the game is won or lost
// every further valid guess replays the terminal result without recording
// anything. The loss check is len(history) > maxAttempts, so a player gets
// maxAttempts+1 guesses before losing.
func (g *Game) Guess(candidate Sequence) (Result, error) {
	if len(candidate) != len(g.secret) {
		return Result{}, ErrLengthMismatch
	}
	if !candidate.Unique() {
		return Result{}, ErrNonUniqueSequence
	}

	switch g.state {
	case Win:
		return Result{Outcome: OutcomeWin}, nil
	case Loss:
		return Result{Outcome: OutcomeLoss}, nil
	}

	bulls, cows := Score(g.secret, candidate)
	g.history = append(g.history, HistoryEntry{
		Guess: candidate.String(),
		Bulls: bulls,
		Cows:  cows,
	})

	if bulls == len(g.secret) {
		g.state = Win
		return Result{Outcome: OutcomeWin}, nil
	}
	if uint64(len(g.history)) > uint64(g.maxAttempts) {
		g.state = Loss
		return Result{Outcome: OutcomeLoss}, nil
	}

	return Result{Outcome: OutcomeFeedback, Bulls: bulls, Cows: cows}, nil
}

// Secret returns a copy of the hidden sequence
func (g *Game) Secret() Sequence {
	return g.secret.Clone()
}

// History returns a copy of the accepted guesses in the order they were made
func (g *Game) History() []HistoryEntry {
	out := make([]HistoryEntry, len(g.history))
	copy(out, g.history)
	return out
}

// Attempts returns the number of accepted guesses
func (g *Game) Attempts() int {
	return len(g.history)
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) MaxAttempts() uint32 {
	return g.maxAttempts
}

// Len returns the secret length every guess must match
func (g *Game) Len() int {
	return len(g.secret)
}
