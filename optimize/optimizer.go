package optimize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/tradebt/internal/id"
	"github.com/rustyeddy/tradebt/strategies"
)

// Trial is one scored parameter set. A failed trial has Err set and a NaN
// score.
type Trial struct {
	Number   int
	Params   strategies.Params
	Score    float64
	Err      error
	Duration time.Duration
}

func (t Trial) OK() bool { return t.Err == nil && !math.IsNaN(t.Score) }

// Study is the outcome of one search.
type Study struct {
	ID       string
	Seed     int64
	Started  time.Time
	Finished time.Time

	Best   Trial   // zero value with Number -1 when no trial succeeded
	Trials []Trial // in trial-number order
}

// Failed counts trials that returned an error.
func (s Study) Failed() int {
	var n int
	for _, t := range s.Trials {
		if !t.OK() {
			n++
		}
	}
	return n
}

// Optimizer draws Trials parameter sets from Space and scores them on up to
// Workers goroutines.
type Optimizer struct {
	Space   Space
	Trials  int
	Workers int // <= 0 uses GOMAXPROCS
	Seed    int64
	Logger  *slog.Logger
}

// Optimize runs the search. Every parameter set is drawn up front from a
// rand source seeded with Seed, so the trial list, and therefore the best
// trial, does not depend on scheduling. Ties keep the lowest trial number.
//
// Cancelling ctx stops new trials from starting; the trials that finished
// are returned along with the context error.
func (o Optimizer) Optimize(ctx context.Context, objective Objective) (Study, error) {
	if o.Trials < 1 {
		return Study{}, fmt.Errorf("optimize: trials must be positive (got %d)", o.Trials)
	}
	if err := o.Space.Validate(); err != nil {
		return Study{}, err
	}
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	study := Study{
		ID:      id.New(id.Study),
		Seed:    o.Seed,
		Started: time.Now(),
		Best:    Trial{Number: -1, Score: math.NaN()},
	}
	log = log.With("study", study.ID)

	rng := rand.New(rand.NewSource(o.Seed))
	trials := make([]Trial, o.Trials)
	for i := range trials {
		trials[i] = Trial{Number: i, Params: o.Space.Sample(rng), Score: math.NaN()}
	}

	log.Info("optimize start", "trials", o.Trials, "workers", workers, "seed", o.Seed)

	done := make([]bool, len(trials))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trials {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// trials queued behind the limit skip once ctx is cancelled
			if err := gctx.Err(); err != nil {
				return err
			}
			t := &trials[i]
			start := time.Now()
			score, err := objective(gctx, t.Params)
			t.Duration = time.Since(start)
			if err != nil {
				t.Err = err
				log.Warn("trial failed", "trial", t.Number, "err", err)
			} else {
				t.Score = score
				log.Debug("trial", "trial", t.Number, "score", score, "params", t.Params.String())
			}
			done[i] = true
			return nil
		})
	}
	// trial errors are recorded on the trial; Wait reports only cancellation
	err := g.Wait()

	for i, t := range trials {
		if !done[i] {
			continue
		}
		study.Trials = append(study.Trials, t)
		if t.OK() && (study.Best.Number < 0 || t.Score > study.Best.Score) {
			study.Best = t
		}
	}
	study.Finished = time.Now()

	log.Info("optimize done",
		"completed", len(study.Trials),
		"failed", study.Failed(),
		"best_trial", study.Best.Number,
		"best_score", study.Best.Score,
		"elapsed", study.Finished.Sub(study.Started).Round(time.Millisecond))

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return study, fmt.Errorf("optimize: %w", err)
	}
	if study.Best.Number < 0 {
		return study, ErrNoSuccess
	}
	return study, nil
}

// ErrNoSuccess reports a study in which every trial failed.
var ErrNoSuccess = errors.New("optimize: no trial succeeded")
