package engine

import "errors"

var (
	ErrLengthMismatch    = errors.New("sequence is not the same length as the target")
	ErrNonUniqueSequence = errors.New("sequence contains non unique characters")
)

// State is the lifecycle state of a single game
type State string

const (
	InProgress State = "in_progress"
	Win        State = "win"
	Loss       State = "loss"

	// Secret length bounds accepted when starting a game
	MinSequenceLength = 4
	MaxSequenceLength = 9
)

// Terminal reports whether no further transitions can happen from s
func (s State) Terminal() bool {
	return s == Win || s == Loss
}

// Outcome tags the variant carried by a Result
type Outcome string

const (
	OutcomeFeedback Outcome = "feedback"
	OutcomeWin      Outcome = "win"
	OutcomeLoss     Outcome = "loss"
)

// Result is the answer to an accepted guess.
// Bulls and Cows are only meaningful when Outcome is OutcomeFeedback.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Bulls   int     `json:"bulls,omitempty"`
	Cows    int     `json:"cows,omitempty"`
}

// HistoryEntry records one accepted guess
type HistoryEntry struct {
	Guess string `json:"guess"`
	Bulls int    `json:"bulls"`
	Cows  int    `json:"cows"`
}
