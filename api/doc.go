// Package api provides the HTTP handlers for the bulls and cows server.
//
// Endpoints:
//
// JSON API:
//   - POST /api/games - Start a game ({length, attempts, preset}, all optional)
//   - GET /api/games - List games
//   - GET /api/games/{id} - Game details
//   - POST /api/games/{id}/guess - Submit a guess ({guess})
//   - GET /api/games/{id}/history - Paginated history (page, limit, order)
//   - GET /api/presets - List presets
//
// Compact routes:
//   - GET / - Plain text command index
//   - POST / - Start a game ({length, attempts}), replies {"details": "Game started with id N"}
//   - POST /{id} - Guess, replies {"details": {"bulls", "cows"}} or {"details": {"message"}}
//   - GET /{id} - Guess history, replies {"history": [{"sequence", "bulls", "cows"}]}
//
// Other:
//   - GET /health - Liveness probe
//   - GET /ws?game={id} - WebSocket stream of accepted guesses
//
// Errors:
//
// Every error response is {"error": "..."}. Bad input (wrong length, repeated
// symbols, malformed JSON) is 400, unknown games and presets are 404 and
// anything else is 500. Unknown routes return a JSON 404.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
