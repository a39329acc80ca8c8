package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/session"
)

var (
	ErrInvalidLength  = fmt.Errorf("sequence length must be between %d and %d", engine.MinSequenceLength, engine.MaxSequenceLength)
	ErrPresetNotFound = errors.New("preset not found")
)

const (
	winMessage  = "You Win! :)"
	lossMessage = "You Lost :("

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionStore
	presets   PresetCatalog
	generator engine.Generator
	recorder  Recorder
}

// Option customizes a game service
type Option func(*gameServiceImpl)

// WithRecorder reports gameplay events to r
func WithRecorder(r Recorder) Option {
	return func(s *gameServiceImpl) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithGenerator replaces the default digit secret generator
func WithGenerator(g engine.Generator) Option {
	return func(s *gameServiceImpl) {
		if g != nil {
			s.generator = g
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionStore, presets PresetCatalog, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:  sessions,
		presets:   presets,
		generator: engine.NewDigitGenerator(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartGame creates a new game session
func (s *gameServiceImpl) StartGame(ctx context.Context, opts StartOptions) (*GameInfo, error) {
	length, maxAttempts, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	secret, err := s.generator.Generate(length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}

	id, err := s.sessions.Create(secret, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recorder.GameStarted(length)
	log.Info().
		Stringer("game_id", id).
		Int("length", length).
		Uint32("max_attempts", maxAttempts).
		Str("preset", opts.Preset).
		Msg("game started")

	return s.GetGame(ctx, id)
}

// resolve merges explicit options over the selected preset
func (s *gameServiceImpl) resolve(opts StartOptions) (int, uint32, error) {
	var preset *Preset
	if opts.Preset != "" {
		p, err := s.presets.LoadPreset(opts.Preset)
		if err != nil {
			return 0, 0, fmt.Errorf("preset %q: %w", opts.Preset, err)
		}
		preset = p
	} else {
		preset = s.presets.GetDefault()
	}

	var length int
	switch {
	case opts.Length != nil:
		length = *opts.Length
	case preset != nil:
		length = preset.Length
	}
	if length < engine.MinSequenceLength || length > engine.MaxSequenceLength {
		return 0, 0, ErrInvalidLength
	}

	var maxAttempts uint32
	switch {
	case opts.MaxAttempts != nil:
		maxAttempts = *opts.MaxAttempts
	case preset != nil:
		maxAttempts = preset.MaxAttempts
	}

	return length, maxAttempts, nil
}

// GetGame retrieves session information
func (s *gameServiceImpl) GetGame(ctx context.Context, id session.ID) (*GameInfo, error) {
	info, err := s.sessions.Info(id)
	if err != nil {
		return nil, err
	}
	return newGameInfo(info), nil
}

// ListGames returns all sessions ordered by ID
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	infos := s.sessions.List()
	result := make([]*GameInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, newGameInfo(info))
	}
	return result, nil
}

// Guess submits a guess to a session
func (s *gameServiceImpl) Guess(ctx context.Context, id session.ID, guess string) (*GuessResult, error) {
	var (
		res      engine.Result
		before   engine.State
		after    engine.State
		attempts int
		secret   engine.Sequence
	)

	err := s.sessions.WithGame(id, func(g *engine.Game) error {
		before = g.State()
		var err error
		res, err = g.Guess(engine.ParseSequence(guess))
		if err != nil {
			return err
		}
		after = g.State()
		attempts = g.Attempts()
		if res.Outcome == engine.OutcomeLoss {
			secret = g.Secret()
		}
		return nil
	})
	if err != nil {
		s.recorder.GuessRejected(rejectReason(err))
		log.Debug().Err(err).Stringer("game_id", id).Str("guess", guess).Msg("guess rejected")
		return nil, err
	}

	s.recorder.GuessAccepted(res.Outcome)
	if before != after {
		s.recorder.GameFinished(after)
		log.Info().Stringer("game_id", id).Str("state", string(after)).Int("attempts", attempts).Msg("game finished")
	}

	result := &GuessResult{
		ID:       id,
		Guess:    guess,
		Outcome:  res.Outcome,
		Bulls:    res.Bulls,
		Cows:     res.Cows,
		Attempts: attempts,
		State:    after,
	}

	switch res.Outcome {
	case engine.OutcomeWin:
		result.Message = winMessage
	case engine.OutcomeLoss:
		result.Message = lossMessage
		result.Answer = secret.String()
	default:
		result.Message = fmt.Sprintf("%d bulls, %d cows", res.Bulls, res.Cows)
	}

	log.Debug().
		Stringer("game_id", id).
		Str("guess", guess).
		Str("outcome", string(res.Outcome)).
		Int("bulls", result.Bulls).
		Int("cows", result.Cows).
		Msg("guess accepted")

	return result, nil
}

// History returns paginated guess history
func (s *gameServiceImpl) History(ctx context.Context, id session.ID, opts HistoryOptions) (*HistoryResponse, error) {
	history, err := s.sessions.HistoryOf(id)
	if err != nil {
		return nil, err
	}

	resp := paginate(history, opts)
	resp.ID = id
	return resp, nil
}

// ListPresets returns the available presets
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*Preset, error) {
	return s.presets.ListPresets()
}

func newGameInfo(info *session.Info) *GameInfo {
	gi := &GameInfo{
		ID:             info.ID,
		Length:         info.Length,
		MaxAttempts:    info.MaxAttempts,
		Attempts:       info.Attempts,
		State:          info.State,
		History:        info.History,
		CreatedAt:      info.CreatedAt,
		LastAccessedAt: info.LastAccessedAt,
	}

	// A game accepts MaxAttempts+1 guesses before it is lost.
	if info.State == engine.InProgress {
		gi.GuessesLeft = int64(info.MaxAttempts) + 1 - int64(info.Attempts)
	}
	if info.State == engine.Loss {
		gi.Answer = info.Secret.String()
	}
	return gi
}

func paginate(history []engine.HistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order != "desc" {
		opts.Order = "asc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	items := []HistoryItem{}
	for i := start; i < end; i++ {
		idx := i
		if opts.Order == "desc" {
			idx = total - 1 - i
		}
		items = append(items, HistoryItem{Number: idx + 1, HistoryEntry: history[idx]})
	}

	return &HistoryResponse{
		Guesses:      items,
		TotalGuesses: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, engine.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, engine.ErrNonUniqueSequence):
		return "non_unique"
	case errors.Is(err, session.ErrUnknownSession):
		return "unknown_session"
	default:
		return "other"
	}
}
