// Package metrics exposes gameplay counters for Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wricardo/bulls-and-cows/game/engine"
)

const namespace = "bullscows"

// Recorder counts gameplay events. It satisfies service.Recorder.
// A nil *Recorder records nothing.
type Recorder struct {
	gamesStarted  *prometheus.CounterVec
	guesses       *prometheus.CounterVec
	guessErrors   *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
}

// NewRecorder creates a recorder and registers its collectors with reg.
// activeGames, when non-nil, backs the gauge of games still in progress.
func NewRecorder(reg prometheus.Registerer, activeGames func() int) (*Recorder, error) {
	r := &Recorder{
		gamesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_started_total",
				Help:      "Count of games started, by secret length.",
			},
			[]string{"length"},
		),
		guesses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guesses_total",
				Help:      "Count of accepted guesses, by outcome.",
			},
			[]string{"outcome"},
		),
		guessErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guess_errors_total",
				Help:      "Count of rejected guesses, by reason.",
			},
			[]string{"reason"},
		),
		gamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_finished_total",
				Help:      "Count of games that reached a terminal state.",
			},
			[]string{"state"},
		),
	}

	collectors := []prometheus.Collector{r.gamesStarted, r.guesses, r.guessErrors, r.gamesFinished}
	if activeGames != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_games",
				Help:      "Number of games still in progress.",
			},
			func() float64 { return float64(activeGames()) },
		))
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) GameStarted(length int) {
	if r == nil {
		return
	}
	r.gamesStarted.WithLabelValues(strconv.Itoa(length)).Inc()
}

func (r *Recorder) GuessAccepted(outcome engine.Outcome) {
	if r == nil {
		return
	}
	r.guesses.WithLabelValues(string(outcome)).Inc()
}

func (r *Recorder) GuessRejected(reason string) {
	if r == nil {
		return
	}
	r.guessErrors.WithLabelValues(reason).Inc()
}

func (r *Recorder) GameFinished(state engine.State) {
	if r == nil {
		return
	}
	r.gamesFinished.WithLabelValues(string(state)).Inc()
}
