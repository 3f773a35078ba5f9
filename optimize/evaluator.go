// Package optimize scores parameter sets against price history and searches
// a parameter space for the set with the best Calmar ratio.
package optimize

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/tradebt/backtest"
	"github.com/rustyeddy/tradebt/market"
	"github.com/rustyeddy/tradebt/metrics"
	"github.com/rustyeddy/tradebt/strategies"
)

// Evaluator runs one parameter set through signals, the engine and the
// metrics. The zero value is not usable; see NewEvaluator.
type Evaluator struct {
	InitialCash    float64
	Commission     float64
	PeriodsPerYear float64
	Rule           string // registered rule name; empty selects the vote
}

func NewEvaluator() Evaluator {
	return Evaluator{
		InitialCash:    1_000_000,
		Commission:     backtest.DefaultCommission,
		PeriodsPerYear: metrics.HourlyPeriods,
	}
}

// Run is the full diagnostic output of one evaluation.
type Run struct {
	Params     strategies.Params
	Rule       string
	Commission float64
	Start      time.Time // first bar after warm-up
	End        time.Time
	Result     backtest.Result
	Summary    metrics.Summary
}

func (r Run) Bars() int { return len(r.Result.Values) }

// Run evaluates p over bars.
func (e Evaluator) Run(bars market.Bars, p strategies.Params) (Run, error) {
	if err := p.Validate(); err != nil {
		return Run{}, fmt.Errorf("optimize: params: %w", err)
	}
	rule, err := strategies.RuleByName(e.Rule, p)
	if err != nil {
		return Run{}, fmt.Errorf("optimize: %w", err)
	}
	eng, err := backtest.NewEngine(backtest.ConfigFor(e.InitialCash, e.Commission, p))
	if err != nil {
		return Run{}, err
	}

	frame := strategies.Build(bars, rule)
	res, err := eng.Run(frame)
	if err != nil {
		return Run{}, err
	}

	return Run{
		Params:     p,
		Rule:       rule.Name(),
		Commission: e.Commission,
		Start:      frame.Bars.Start(),
		End:        frame.Bars.End(),
		Result:     res,
		Summary:    metrics.Evaluate(res.Values, e.PeriodsPerYear),
	}, nil
}

// Score is the Calmar ratio of p over bars.
func (e Evaluator) Score(bars market.Bars, p strategies.Params) (float64, error) {
	r, err := e.Run(bars, p)
	if err != nil {
		return math.NaN(), err
	}
	return r.Summary.Calmar, nil
}

// WalkForward is the mean Calmar ratio of p over the k test windows of
// Folds(len(bars), k). Each window is simulated on its own from the initial
// cash, warm-up included.
func (e Evaluator) WalkForward(bars market.Bars, p strategies.Params, k int) (float64, error) {
	scores, err := e.FoldScores(bars, p, k)
	if err != nil {
		return math.NaN(), err
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// FoldScores returns the per-fold test-window Calmar ratios.
func (e Evaluator) FoldScores(bars market.Bars, p strategies.Params, k int) ([]float64, error) {
	folds, err := Folds(len(bars), k)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, len(folds))
	for i, f := range folds {
		s, err := e.Score(bars.Window(f.TestStart, f.TestEnd), p)
		if err != nil {
			return nil, fmt.Errorf("fold %d (%s): %w", i, f, err)
		}
		scores[i] = s
	}
	return scores, nil
}

// Objective scores one parameter set. It must be safe for concurrent use.
type Objective func(ctx context.Context, p strategies.Params) (float64, error)

// Objective returns the Calmar objective over bars, averaged over k
// walk-forward folds when k > 0.
func (e Evaluator) Objective(bars market.Bars, k int) Objective {
	return func(ctx context.Context, p strategies.Params) (float64, error) {
		if err := ctx.Err(); err != nil {
			return math.NaN(), err
		}
		if k > 0 {
			return e.WalkForward(bars, p, k)
		}
		return e.Score(bars, p)
	}
}
