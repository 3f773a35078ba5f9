package strategies

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rustyeddy/tradebt/risk"
)

// Parameter keys as they appear in config files and the journal.
const (
	KeyRSIWindow        = "rsi_window"
	KeyRSILower         = "rsi_lower"
	KeyRSIUpper         = "rsi_upper"
	KeyEMAShortWindow   = "ema_short_window"
	KeyEMALongWindow    = "ema_long_window"
	KeyMACDShortWindow  = "macd_short_window"
	KeyMACDLongWindow   = "macd_long_window"
	KeyMACDSignalWindow = "macd_signal_window"
	KeyStopLoss         = "stop_loss"
	KeyTakeProfit       = "take_profit"
	KeyCashPct          = "available_cash_pct"
	KeyNShares          = "n_shares"
)

// Keys lists every parameter key in declaration order.
func Keys() []string {
	return []string{
		KeyRSIWindow, KeyRSILower, KeyRSIUpper,
		KeyEMAShortWindow, KeyEMALongWindow,
		KeyMACDShortWindow, KeyMACDLongWindow, KeyMACDSignalWindow,
		KeyStopLoss, KeyTakeProfit, KeyCashPct, KeyNShares,
	}
}

// Params is one immutable strategy parameter set: indicator windows,
// thresholds, the stop-loss/take-profit bracket and the sizing policy.
//
// Exactly one of CashPct and NShares is non-zero.
type Params struct {
	RSIWindow int     `json:"rsi_window" yaml:"rsi_window"`
	RSILower  float64 `json:"rsi_lower" yaml:"rsi_lower"`
	RSIUpper  float64 `json:"rsi_upper" yaml:"rsi_upper"`

	EMAShortWindow int `json:"ema_short_window" yaml:"ema_short_window"`
	EMALongWindow  int `json:"ema_long_window" yaml:"ema_long_window"`

	MACDShortWindow  int `json:"macd_short_window" yaml:"macd_short_window"`
	MACDLongWindow   int `json:"macd_long_window" yaml:"macd_long_window"`
	MACDSignalWindow int `json:"macd_signal_window" yaml:"macd_signal_window"`

	StopLoss   float64 `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit float64 `json:"take_profit" yaml:"take_profit"`

	CashPct float64 `json:"available_cash_pct,omitempty" yaml:"available_cash_pct,omitempty"`
	NShares float64 `json:"n_shares,omitempty" yaml:"n_shares,omitempty"`
}

// DefaultParams returns a middle-of-the-range parameter set with cash
// fraction sizing.
func DefaultParams() Params {
	return Params{
		RSIWindow:        14,
		RSILower:         30,
		RSIUpper:         70,
		EMAShortWindow:   20,
		EMALongWindow:    150,
		MACDShortWindow:  12,
		MACDLongWindow:   120,
		MACDSignalWindow: 9,
		StopLoss:         0.02,
		TakeProfit:       0.05,
		CashPct:          0.1,
	}
}

// Validate checks every field against its valid range.
func (p Params) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(p.RSIWindow > 0, "%s must be positive (got %d)", KeyRSIWindow, p.RSIWindow)
	check(p.RSILower >= 0 && p.RSILower < p.RSIUpper && p.RSIUpper <= 100,
		"require 0 <= %s < %s <= 100 (got %v/%v)", KeyRSILower, KeyRSIUpper, p.RSILower, p.RSIUpper)

	check(p.EMAShortWindow > 0 && p.EMAShortWindow < p.EMALongWindow,
		"require 0 < %s < %s (got %d/%d)", KeyEMAShortWindow, KeyEMALongWindow, p.EMAShortWindow, p.EMALongWindow)

	check(p.MACDShortWindow > 0 && p.MACDShortWindow < p.MACDLongWindow,
		"require 0 < %s < %s (got %d/%d)", KeyMACDShortWindow, KeyMACDLongWindow, p.MACDShortWindow, p.MACDLongWindow)
	check(p.MACDSignalWindow > 0, "%s must be positive (got %d)", KeyMACDSignalWindow, p.MACDSignalWindow)

	check(p.StopLoss > 0 && p.StopLoss < 1, "%s must be in (0,1) (got %v)", KeyStopLoss, p.StopLoss)
	check(p.TakeProfit > 0 && p.TakeProfit < 1, "%s must be in (0,1) (got %v)", KeyTakeProfit, p.TakeProfit)

	switch {
	case p.CashPct != 0 && p.NShares != 0:
		errs = append(errs, fmt.Errorf("only one of %s and %s may be set", KeyCashPct, KeyNShares))
	case p.CashPct == 0 && p.NShares == 0:
		errs = append(errs, fmt.Errorf("one of %s or %s is required", KeyCashPct, KeyNShares))
	case p.CashPct != 0:
		check(p.CashPct > 0 && p.CashPct <= 1, "%s must be in (0,1] (got %v)", KeyCashPct, p.CashPct)
	default:
		check(p.NShares > 0, "%s must be positive (got %v)", KeyNShares, p.NShares)
	}

	return errors.Join(errs...)
}

// Sizer returns the sizing policy selected by the parameter set.
func (p Params) Sizer() risk.Sizer {
	if p.NShares != 0 {
		return risk.FixedShares{N: p.NShares}
	}
	return risk.CashFraction{Pct: p.CashPct}
}

// Warmup returns the number of leading bars consumed before every indicator
// is defined.
func (p Params) Warmup() int {
	macd := max(p.MACDShortWindow, p.MACDLongWindow) + p.MACDSignalWindow - 1
	return max(p.RSIWindow, p.EMALongWindow, p.EMAShortWindow, macd)
}

// Map returns the parameter set as a string-keyed mapping. Only the active
// sizing key is present.
func (p Params) Map() map[string]float64 {
	m := map[string]float64{
		KeyRSIWindow:        float64(p.RSIWindow),
		KeyRSILower:         p.RSILower,
		KeyRSIUpper:         p.RSIUpper,
		KeyEMAShortWindow:   float64(p.EMAShortWindow),
		KeyEMALongWindow:    float64(p.EMALongWindow),
		KeyMACDShortWindow:  float64(p.MACDShortWindow),
		KeyMACDLongWindow:   float64(p.MACDLongWindow),
		KeyMACDSignalWindow: float64(p.MACDSignalWindow),
		KeyStopLoss:         p.StopLoss,
		KeyTakeProfit:       p.TakeProfit,
	}
	if p.NShares != 0 {
		m[KeyNShares] = p.NShares
	} else {
		m[KeyCashPct] = p.CashPct
	}
	return m
}

// ParamsFromMap builds a validated parameter set from a string-keyed
// mapping. Unknown keys and non-integral window values are errors.
func ParamsFromMap(m map[string]float64) (Params, error) {
	var p Params
	ints := map[string]*int{
		KeyRSIWindow:        &p.RSIWindow,
		KeyEMAShortWindow:   &p.EMAShortWindow,
		KeyEMALongWindow:    &p.EMALongWindow,
		KeyMACDShortWindow:  &p.MACDShortWindow,
		KeyMACDLongWindow:   &p.MACDLongWindow,
		KeyMACDSignalWindow: &p.MACDSignalWindow,
	}
	floats := map[string]*float64{
		KeyRSILower:   &p.RSILower,
		KeyRSIUpper:   &p.RSIUpper,
		KeyStopLoss:   &p.StopLoss,
		KeyTakeProfit: &p.TakeProfit,
		KeyCashPct:    &p.CashPct,
		KeyNShares:    &p.NShares,
	}

	var unknown []string
	for k, v := range m {
		if dst, ok := ints[k]; ok {
			if v != math.Trunc(v) {
				return Params{}, fmt.Errorf("%s must be an integer (got %v)", k, v)
			}
			*dst = int(v)
			continue
		}
		if dst, ok := floats[k]; ok {
			*dst = v
			continue
		}
		unknown = append(unknown, k)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Params{}, fmt.Errorf("unknown parameter(s): %s", strings.Join(unknown, ", "))
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) String() string {
	sizing := fmt.Sprintf("%s=%.4f", KeyCashPct, p.CashPct)
	if p.NShares != 0 {
		sizing = fmt.Sprintf("%s=%g", KeyNShares, p.NShares)
	}
	return fmt.Sprintf("rsi(%d,%g,%g) ema(%d,%d) macd(%d,%d,%d) sl=%.4f tp=%.4f %s",
		p.RSIWindow, p.RSILower, p.RSIUpper,
		p.EMAShortWindow, p.EMALongWindow,
		p.MACDShortWindow, p.MACDLongWindow, p.MACDSignalWindow,
		p.StopLoss, p.TakeProfit, sizing)
}
