package service

import (
	"time"

	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/session"
)

// StartOptions selects the shape of a new game. A preset supplies defaults
// that explicit fields override; with no preset the default preset is used.
// A nil Length or MaxAttempts takes the preset's value.
type StartOptions struct {
	Length      *int    `json:"length,omitempty"`
	MaxAttempts *uint32 `json:"attempts,omitempty"`
	Preset      string  `json:"preset,omitempty"`
}

// GameInfo provides information about a game session
type GameInfo struct {
	ID             session.ID            `json:"id"`
	Length         int                   `json:"length"`
	MaxAttempts    uint32                `json:"max_attempts"`
	Attempts       int                   `json:"attempts"`
	GuessesLeft    int64                 `json:"guesses_left"`
	State          engine.State          `json:"state"`
	History        []engine.HistoryEntry `json:"history"`
	Answer         string                `json:"answer,omitempty"` // Revealed once the game is lost
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
}

// GuessResult contains the result of a guess
type GuessResult struct {
	ID       session.ID     `json:"id"`
	Guess    string         `json:"guess"`
	Outcome  engine.Outcome `json:"outcome"`
	Bulls    int            `json:"bulls"`
	Cows     int            `json:"cows"`
	Attempts int            `json:"attempts"`
	State    engine.State   `json:"state"`
	Message  string         `json:"message"`
	Answer   string         `json:"answer,omitempty"` // Only set on loss
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryItem is a history entry with its 1-based guess number
type HistoryItem struct {
	Number int `json:"number"`
	engine.HistoryEntry
}

// HistoryResponse contains paginated guess history
type HistoryResponse struct {
	ID           session.ID    `json:"id"`
	Guesses      []HistoryItem `json:"guesses"`
	TotalGuesses int           `json:"total_guesses"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
	HasNext      bool          `json:"has_next"`
	HasPrevious  bool          `json:"has_previous"`
}

// Preset is a named game shape
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Length      int    `json:"length"`
	MaxAttempts uint32 `json:"max_attempts"`
}
