// Command solver plays bulls and cows against a running server by keeping
// the set of secrets consistent with every answer and guessing from it.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/bulls-and-cows/game/engine"
	"github.com/wricardo/bulls-and-cows/game/service"
	"github.com/wricardo/bulls-and-cows/game/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("solver failed")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "solver",
		Usage: "Play a bulls and cows game over the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("API_URL"),
			},
			&cli.IntFlag{
				Name:  "length",
				Usage: "Secret length for a new game (preset default when unset)",
			},
			&cli.IntFlag{
				Name:  "attempts",
				Value: -1,
				Usage: "Attempt allowance for a new game (preset default when negative)",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Preset for a new game",
			},
			&cli.IntFlag{
				Name:  "continue",
				Usage: "Resume an existing game by ID",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Pick random candidates from this seed (first candidate when 0)",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Pause between guesses",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every guess",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cmd.Bool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	client := NewClient(cmd.String("url"))
	log.Info().Str("url", cmd.String("url")).Msg("connecting to game server")

	var game *service.GameInfo
	var err error
	if id := cmd.Int("continue"); id > 0 {
		game, err = client.GetGame(ctx, session.ID(id))
		if err != nil {
			return err
		}
		log.Info().Stringer("game_id", game.ID).Int("guesses", game.Attempts).Msg("resuming game")
	} else {
		opts := service.StartOptions{
			Preset: cmd.String("preset"),
		}
		if cmd.IsSet("length") {
			length := cmd.Int("length")
			opts.Length = &length
		}
		if attempts := cmd.Int("attempts"); attempts >= 0 {
			a := uint32(attempts)
			opts.MaxAttempts = &a
		}
		game, err = client.StartGame(ctx, opts)
		if err != nil {
			return err
		}
		log.Info().Stringer("game_id", game.ID).Int("length", game.Length).Int64("guesses_left", game.GuessesLeft).Msg("game started")
	}

	var rng *rand.Rand
	if seed := cmd.Int("seed"); seed != 0 {
		rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}

	result, err := play(ctx, client, game, NewStrategy(engine.DigitAlphabet, game.Length, rng), cmd.Duration("delay"))
	if err != nil {
		return err
	}

	switch result.Outcome {
	case engine.OutcomeWin:
		log.Info().Stringer("game_id", game.ID).Int("guesses", result.Attempts).Str("secret", result.Guess).Msg(result.Message)
	default:
		log.Warn().Stringer("game_id", game.ID).Int("guesses", result.Attempts).Str("answer", result.Answer).Msg(result.Message)
	}
	return nil
}

// play replays the game's history into strategy and keeps guessing until the
// game is won or lost.
func play(ctx context.Context, client *Client, game *service.GameInfo, strategy *Strategy, delay time.Duration) (*service.GuessResult, error) {
	for _, h := range game.History {
		strategy.Observe(engine.ParseSequence(h.Guess), h.Bulls, h.Cows)
	}
	log.Debug().Int("candidates", strategy.Remaining()).Msg("strategy ready")

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		guess, err := strategy.Next()
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", game.ID, err)
		}

		result, err := client.Guess(ctx, game.ID, guess.String())
		if err != nil {
			return nil, err
		}

		log.Debug().
			Str("guess", result.Guess).
			Int("bulls", result.Bulls).
			Int("cows", result.Cows).
			Int("candidates", strategy.Remaining()).
			Msg("guessed")

		if result.State.Terminal() {
			return result, nil
		}
		if result.Outcome != engine.OutcomeFeedback {
			return nil, errors.New("unexpected outcome " + string(result.Outcome))
		}

		strategy.Observe(guess, result.Bulls, result.Cows)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}
