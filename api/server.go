package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/service"
	"github.com/wricardo/bulls-and-cows/game/session"
	"github.com/wricardo/bulls-and-cows/transport/websocket"
)

const indexText = `Commands:
    * GET / - display this page
    * POST / { length: u8, attempts: u32 } - start a game
    * GET /<id> - retrieve history for a game
    * POST /<id> { guess: String } - guess for a started game

JSON API:
    * POST /api/games { length?, attempts?, preset? } - start a game
    * GET /api/games - list games
    * GET /api/games/<id> - game details
    * POST /api/games/<id>/guess { guess } - submit a guess
    * GET /api/games/<id>/history?page=&limit=&order= - paginated history
    * GET /api/presets - list presets
    * GET /ws?game=<id> - live guess updates
`

// compactEntry is a history entry as the compact routes report it
type compactEntry struct {
	Sequence string `json:"sequence"`
	Bulls    int    `json:"bulls"`
	Cows     int    `json:"cows"`
}

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil to disable live updates.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Compact routes
	s.router.HandleFunc("/", s.handleCompactStart).Methods("POST")
	s.router.HandleFunc("/{id:[0-9]+}", s.handleCompactHistory).Methods("GET")
	s.router.HandleFunc("/{id:[0-9]+}", s.handleCompactGuess).Methods("POST")

	api := s.router.PathPrefix("/api").Subrouter()

	// Games
	api.HandleFunc("/games", s.handleStartGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id:[0-9]+}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id:[0-9]+}/guess", s.handleGuess).Methods("POST")
	api.HandleFunc("/games/{id:[0-9]+}/history", s.handleGetHistory).Methods("GET")

	// Presets
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Resource was not found.")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and domain errors to status codes and
// player-facing messages
func respondServiceError(w http.ResponseWriter, id session.ID, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidLength):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Sequence length must be between %d and %d.",
			engine.MinSequenceLength, engine.MaxSequenceLength))
	case errors.Is(err, engine.ErrLengthMismatch):
		respondError(w, http.StatusBadRequest, "Sequence is not the same length as the target.")
	case errors.Is(err, engine.ErrNonUniqueSequence):
		respondError(w, http.StatusBadRequest, "Sequence contains non unique characters.")
	case errors.Is(err, session.ErrUnknownSession):
		respondError(w, http.StatusNotFound, fmt.Sprintf("Game with id %d does not exist", id))
	case errors.Is(err, service.ErrPresetNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeBody(r *http.Request, v interface{}, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return io.EOF
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

func pathID(r *http.Request) (session.ID, error) {
	return session.ParseID(mux.Vars(r)["id"])
}

// General Handlers

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, indexText)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Game Handlers

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var opts service.StartOptions
	if err := decodeBody(r, &opts, true); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	game, err := s.service.StartGame(r.Context(), opts)
	if err != nil {
		respondServiceError(w, 0, err)
		return
	}

	respondJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := s.service.GetGame(r.Context(), id)
	if err != nil {
		respondServiceError(w, id, err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Guess string `json:"guess"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.guess(r, id, req.Guess)
	if err != nil {
		respondServiceError(w, id, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) guess(r *http.Request, id session.ID, text string) (*service.GuessResult, error) {
	result, err := s.service.Guess(r.Context(), id, text)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastGuess(id.String(), result)
	}
	return result, nil
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var opts service.HistoryOptions
	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.History(r.Context(), id, opts)
	if err != nil {
		respondServiceError(w, id, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondServiceError(w, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, presets)
}

// Compact Handlers

func (s *Server) handleCompactStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Length   *int    `json:"length"`
		Attempts *uint32 `json:"attempts"`
	}
	if err := decodeBody(r, &req, false); err != nil || req.Length == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	game, err := s.service.StartGame(r.Context(), service.StartOptions{
		Length:      req.Length,
		MaxAttempts: req.Attempts,
	})
	if err != nil {
		respondServiceError(w, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"details": fmt.Sprintf("Game started with id %d", game.ID),
	})
}

func (s *Server) handleCompactGuess(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Guess string `json:"guess"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.guess(r, id, req.Guess)
	if err != nil {
		respondServiceError(w, id, err)
		return
	}

	switch result.Outcome {
	case engine.OutcomeFeedback:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"details": map[string]int{"bulls": result.Bulls, "cows": result.Cows},
		})
	case engine.OutcomeLoss:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"details": map[string]string{"message": result.Message},
			"answer":  result.Answer,
		})
	default:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"details": map[string]string{"message": result.Message},
		})
	}
}

func (s *Server) handleCompactHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := s.service.GetGame(r.Context(), id)
	if err != nil {
		respondServiceError(w, id, err)
		return
	}

	history := make([]compactEntry, 0, len(game.History))
	for _, h := range game.History {
		history = append(history, compactEntry{Sequence: h.Guess, Bulls: h.Bulls, Cows: h.Cows})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotFound, "Resource was not found.")
		return
	}

	id, err := session.ParseID(r.URL.Query().Get("game"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "game parameter required")
		return
	}

	if _, err := s.service.GetGame(r.Context(), id); err != nil {
		respondServiceError(w, id, err)
		return
	}

	s.hub.ServeWS(w, r, id.String())
}
