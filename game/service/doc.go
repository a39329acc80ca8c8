// Package service provides the business logic layer for the bulls and cows server.
//
// The service package implements:
//   - Game creation from presets and explicit options
//   - Guess submission with win/loss messaging
//   - Paginated guess history
//   - Gameplay event reporting through a Recorder
//
// Core Interfaces:
//
// GameService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionStore is satisfied by *session.Manager and
// PresetCatalog by *config.Manager.
//
// Usage:
//
//	sessions := session.NewManager()
//	presets := config.NewManager("presets")
//	svc := service.NewGameService(sessions, presets)
//
//	game, err := svc.StartGame(ctx, service.StartOptions{Preset: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Guess(ctx, game.ID, "1234")
//
// Attempts:
//
// A game accepts MaxAttempts+1 scored guesses. The guess that pushes the
// history past MaxAttempts without matching the secret loses the game and
// reveals the answer.
package service
