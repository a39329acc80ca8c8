// Package engine provides the core game logic for bulls and cows.
//
// The engine package implements:
//   - Scoring a guess against a secret (bulls and cows)
//   - The per-game state machine (in progress, win, loss)
//   - Guess validation (length and symbol uniqueness)
//   - Secret generation from a fixed alphabet
//
// Core Types:
//
// Game owns one secret, one attempt budget and the history of accepted
// guesses. Guess is its only mutating operation and returns a Result tagged
// with an Outcome. Sequence is the symbol list shared by secrets and guesses.
//
// Usage:
//
//	secret, err := engine.NewDigitGenerator().Generate(4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGame(secret, 10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := game.Guess(engine.ParseSequence("1243"))
//
// Game Rules:
//
// A bull is a guessed symbol in the right position, a cow is a guessed symbol
// present in the secret at another position. The game is won when every
// position is a bull. It is lost once the number of recorded guesses exceeds
// the attempt budget, which lets a player make budget+1 guesses in total.
package engine
