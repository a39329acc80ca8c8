// Package session provides session management for bulls and cows games.
//
// The session package implements:
//   - Thread-safe game storage keyed by session ID
//   - Monotonic session ID allocation
//   - Per-session mutual exclusion for game mutation
//   - Read-only snapshots of game state and history
//
// Core Types:
//
// Manager owns every game and is the only way to reach one. IDPool hands out
// session IDs; Info is a snapshot of a session returned to callers.
//
// Session Identifiers:
//
// IDs are unsigned integers starting at 1 and strictly increasing in
// allocation order. They are never reused, even after a game has ended.
//
// Concurrency:
//
// The session map is guarded by a read-write mutex that is held only while
// looking up or inserting an entry. Each game has its own mutex, so guesses
// on different sessions proceed in parallel while guesses on the same
// session are linearized.
//
// Usage:
//
//	manager := session.NewManager()
//
//	id, err := manager.Create(secret, 10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var res engine.Result
//	err = manager.WithGame(id, func(g *engine.Game) error {
//		var err error
//		res, err = g.Guess(engine.ParseSequence("1234"))
//		return err
//	})
//
// Lifetime:
//
// Sessions are never removed; they live for the lifetime of the process.
package session
