// Package backtest is the bar-by-bar long/short simulator.
//
// The engine is a pure sequential scan: it reads bars and signal flags,
// mutates a fresh Ledger per run and never touches its inputs or any
// package-level state, so independent runs may execute concurrently.
package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradebt/risk"
	"github.com/rustyeddy/tradebt/strategies"
)

// ErrLengthMismatch reports signal flags that do not line up with the bars.
var ErrLengthMismatch = errors.New("backtest: bars and signals differ in length")

// DefaultCommission is 0.125% per leg.
const DefaultCommission = 0.125 / 100

type Config struct {
	InitialCash float64
	Commission  float64 // fraction of notional, charged on entry and exit

	StopLoss   float64 // fraction below (long) / above (short) entry
	TakeProfit float64 // fraction above (long) / below (short) entry
	Sizer      risk.Sizer
}

// ConfigFor combines account settings with a strategy parameter set.
func ConfigFor(cash, commission float64, p strategies.Params) Config {
	return Config{
		InitialCash: cash,
		Commission:  commission,
		StopLoss:    p.StopLoss,
		TakeProfit:  p.TakeProfit,
		Sizer:       p.Sizer(),
	}
}

func (c Config) Validate() error {
	if c.InitialCash <= 0 {
		return fmt.Errorf("backtest: initial cash must be positive (got %v)", c.InitialCash)
	}
	if c.Commission < 0 || c.Commission >= 1 {
		return fmt.Errorf("backtest: commission must be in [0,1) (got %v)", c.Commission)
	}
	if c.StopLoss <= 0 || c.StopLoss >= 1 {
		return fmt.Errorf("backtest: stop loss must be in (0,1) (got %v)", c.StopLoss)
	}
	if c.TakeProfit <= 0 || c.TakeProfit >= 1 {
		return fmt.Errorf("backtest: take profit must be in (0,1) (got %v)", c.TakeProfit)
	}
	if c.Sizer == nil {
		return fmt.Errorf("backtest: sizer is required")
	}
	return nil
}

// Result is the output of one engine run.
type Result struct {
	InitialCash float64
	FinalCash   float64

	// Values holds one portfolio value per bar, Times the matching bar times.
	Values []float64
	Times  []time.Time

	Trades  []Trade
	Wins    int
	Losses  int
	WinRate float64
}

// Final returns the last recorded portfolio value, or the initial cash when
// no bars were processed.
func (r Result) Final() float64 {
	if len(r.Values) == 0 {
		return r.InitialCash
	}
	return r.Values[len(r.Values)-1]
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Run simulates the frame bar by bar. For each bar, in this order:
//
//  1. close longs whose bracket the close has left
//  2. close shorts whose bracket the close has left
//  3. open a long on a buy flag, if affordable
//  4. open a short on a sell flag, if affordable
//  5. record cash plus liquidation value of open positions
//
// Exits run first so the cash they free is available to the same bar's
// entries. A bar flagged both ways opens the long before the short. After
// the last bar every remaining position is closed at that bar's close.
func (e *Engine) Run(f strategies.Frame) (Result, error) {
	if len(f.Buy) != len(f.Bars) || len(f.Sell) != len(f.Bars) {
		return Result{}, fmt.Errorf("%w: bars=%d buy=%d sell=%d",
			ErrLengthMismatch, len(f.Bars), len(f.Buy), len(f.Sell))
	}

	cfg := e.cfg
	ledger := NewLedger(cfg.InitialCash, cfg.Commission)

	values := make([]float64, 0, len(f.Bars))
	times := make([]time.Time, 0, len(f.Bars))

	for i, bar := range f.Bars {
		price := bar.Close

		ledger.CloseEligible(bar.Time, price)

		if f.Buy[i] {
			shares := cfg.Sizer.Shares(ledger.Cash(), price)
			ledger.Open(Long, bar.Time, price, shares, cfg.StopLoss, cfg.TakeProfit)
		}
		if f.Sell[i] {
			shares := cfg.Sizer.Shares(ledger.Cash(), price)
			ledger.Open(Short, bar.Time, price, shares, cfg.StopLoss, cfg.TakeProfit)
		}

		values = append(values, ledger.Value(price))
		times = append(times, bar.Time)
	}

	if n := len(f.Bars); n > 0 {
		last := f.Bars[n-1]
		lastTime, lastClose := last.Time, last.Close
		ledger.Finalize(lastTime, lastClose)
	}

	return Result{
		InitialCash: cfg.InitialCash,
		FinalCash:   ledger.Cash(),
		Values:      values,
		Times:       times,
		Trades:      ledger.Trades(),
		Wins:        ledger.Wins(),
		Losses:      ledger.Losses(),
		WinRate:     ledger.WinRate(),
	}, nil
}
