package service

import (
	"context"

	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/session"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	StartGame(ctx context.Context, opts StartOptions) (*GameInfo, error)
	GetGame(ctx context.Context, id session.ID) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)

	// Game Operations
	Guess(ctx context.Context, id session.ID, guess string) (*GuessResult, error)
	History(ctx context.Context, id session.ID, opts HistoryOptions) (*HistoryResponse, error)

	// Presets
	ListPresets(ctx context.Context) ([]*Preset, error)
}

// SessionStore defines session storage operations
type SessionStore interface {
	Create(secret engine.Sequence, maxAttempts uint32) (session.ID, error)
	WithGame(id session.ID, fn func(g *engine.Game) error) error
	HistoryOf(id session.ID) ([]engine.HistoryEntry, error)
	Info(id session.ID) (*session.Info, error)
	List() []*session.Info
}

// PresetCatalog resolves named presets
type PresetCatalog interface {
	LoadPreset(name string) (*Preset, error)
	ListPresets() ([]*Preset, error)
	GetDefault() *Preset
}

// Recorder receives gameplay events for instrumentation
type Recorder interface {
	GameStarted(length int)
	GuessAccepted(outcome engine.Outcome)
	GuessRejected(reason string)
	GameFinished(state engine.State)
}

type nopRecorder struct{}

func (nopRecorder) GameStarted(int)              {}
func (nopRecorder) GuessAccepted(engine.Outcome) {}
func (nopRecorder) GuessRejected(string)         {}
func (nopRecorder) GameFinished(engine.State)    {}
