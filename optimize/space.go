package optimize

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rustyeddy/tradebt/strategies"
)

// Sizing modes a search can draw from.
const (
	SizingCash  = "cash"
	SizingFixed = "fixed"
)

type IntRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

func (r IntRange) sample(rng *rand.Rand) int {
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

type FloatRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r FloatRange) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Space is the inclusive range searched for each parameter.
type Space struct {
	RSIWindow IntRange `json:"rsi_window" yaml:"rsi_window"`
	RSILower  IntRange `json:"rsi_lower" yaml:"rsi_lower"`
	RSIUpper  IntRange `json:"rsi_upper" yaml:"rsi_upper"`

	EMAShortWindow IntRange `json:"ema_short_window" yaml:"ema_short_window"`
	EMALongWindow  IntRange `json:"ema_long_window" yaml:"ema_long_window"`

	MACDShortWindow  IntRange `json:"macd_short_window" yaml:"macd_short_window"`
	MACDLongWindow   IntRange `json:"macd_long_window" yaml:"macd_long_window"`
	MACDSignalWindow IntRange `json:"macd_signal_window" yaml:"macd_signal_window"`

	StopLoss   FloatRange `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit FloatRange `json:"take_profit" yaml:"take_profit"`

	Sizing  string     `json:"sizing" yaml:"sizing"` // cash | fixed
	CashPct FloatRange `json:"available_cash_pct" yaml:"available_cash_pct"`
	NShares IntRange   `json:"n_shares" yaml:"n_shares"`
}

func DefaultSpace() Space {
	return Space{
		RSIWindow:        IntRange{5, 50},
		RSILower:         IntRange{5, 35},
		RSIUpper:         IntRange{65, 95},
		EMAShortWindow:   IntRange{5, 50},
		EMALongWindow:    IntRange{100, 300},
		MACDShortWindow:  IntRange{5, 50},
		MACDLongWindow:   IntRange{100, 300},
		MACDSignalWindow: IntRange{5, 50},
		StopLoss:         FloatRange{0.01, 0.15},
		TakeProfit:       FloatRange{0.01, 0.15},
		Sizing:           SizingCash,
		CashPct:          FloatRange{0.01, 0.1},
		NShares:          IntRange{1, 100},
	}
}

// Validate checks that every range is non-empty and that any draw yields a
// valid parameter set.
func (s Space) Validate() error {
	var errs []error
	ints := []struct {
		key string
		r   IntRange
	}{
		{strategies.KeyRSIWindow, s.RSIWindow},
		{strategies.KeyRSILower, s.RSILower},
		{strategies.KeyRSIUpper, s.RSIUpper},
		{strategies.KeyEMAShortWindow, s.EMAShortWindow},
		{strategies.KeyEMALongWindow, s.EMALongWindow},
		{strategies.KeyMACDShortWindow, s.MACDShortWindow},
		{strategies.KeyMACDLongWindow, s.MACDLongWindow},
		{strategies.KeyMACDSignalWindow, s.MACDSignalWindow},
	}
	for _, it := range ints {
		if it.r.Min < 1 || it.r.Max < it.r.Min {
			errs = append(errs, fmt.Errorf("search.%s: need 1 <= min <= max (got %d..%d)", it.key, it.r.Min, it.r.Max))
		}
	}
	if s.RSIUpper.Max > 100 {
		errs = append(errs, fmt.Errorf("search.%s: max must be <= 100", strategies.KeyRSIUpper))
	}
	if s.RSILower.Max >= s.RSIUpper.Min {
		errs = append(errs, fmt.Errorf("search: rsi_lower range must lie below rsi_upper range"))
	}
	if s.EMAShortWindow.Max >= s.EMALongWindow.Min {
		errs = append(errs, fmt.Errorf("search: ema_short_window range must lie below ema_long_window range"))
	}
	if s.MACDShortWindow.Max >= s.MACDLongWindow.Min {
		errs = append(errs, fmt.Errorf("search: macd_short_window range must lie below macd_long_window range"))
	}

	type keyed struct {
		key string
		r   FloatRange
	}
	fracs := []keyed{
		{strategies.KeyStopLoss, s.StopLoss},
		{strategies.KeyTakeProfit, s.TakeProfit},
	}
	if s.Sizing == SizingCash || s.Sizing == "" {
		fracs = append(fracs, keyed{strategies.KeyCashPct, s.CashPct})
	}
	for _, f := range fracs {
		if f.r.Min <= 0 || f.r.Max >= 1 || f.r.Max < f.r.Min {
			errs = append(errs, fmt.Errorf("search.%s: need 0 < min <= max < 1 (got %v..%v)", f.key, f.r.Min, f.r.Max))
		}
	}

	switch s.Sizing {
	case SizingCash, "":
	case SizingFixed:
		if s.NShares.Min < 1 || s.NShares.Max < s.NShares.Min {
			errs = append(errs, fmt.Errorf("search.%s: need 1 <= min <= max (got %d..%d)", strategies.KeyNShares, s.NShares.Min, s.NShares.Max))
		}
	default:
		errs = append(errs, fmt.Errorf("search.sizing must be %q or %q (got %q)", SizingCash, SizingFixed, s.Sizing))
	}
	return errors.Join(errs...)
}

// Sample draws one parameter set. Draw order is fixed so a given rng state
// always produces the same set.
func (s Space) Sample(rng *rand.Rand) strategies.Params {
	p := strategies.Params{
		RSIWindow:        s.RSIWindow.sample(rng),
		RSILower:         float64(s.RSILower.sample(rng)),
		RSIUpper:         float64(s.RSIUpper.sample(rng)),
		EMAShortWindow:   s.EMAShortWindow.sample(rng),
		EMALongWindow:    s.EMALongWindow.sample(rng),
		MACDShortWindow:  s.MACDShortWindow.sample(rng),
		MACDLongWindow:   s.MACDLongWindow.sample(rng),
		MACDSignalWindow: s.MACDSignalWindow.sample(rng),
		StopLoss:         s.StopLoss.sample(rng),
		TakeProfit:       s.TakeProfit.sample(rng),
	}
	if s.Sizing == SizingFixed {
		p.NShares = float64(s.NShares.sample(rng))
	} else {
		p.CashPct = s.CashPct.sample(rng)
	}
	return p
}
