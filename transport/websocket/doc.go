// Package websocket pushes live game updates to browser and CLI watchers.
//
// Clients connect with the game ID as a query parameter (/ws?game=12) and
// receive a JSON message after every accepted guess on that game:
//
//	{"game_id": "12", "event": "guess", "data": {...}}
//
// The connection is receive-only; inbound frames are read and discarded so
// that ping, pong and close handling keep working.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("game"))
//	})
//
//	hub.BroadcastGuess("12", result)
//
// Concurrency:
//
// The Hub owns its client map on the Run goroutine. Registration,
// unregistration, broadcasts and client counts are all requests sent to that
// loop over channels.
package websocket
