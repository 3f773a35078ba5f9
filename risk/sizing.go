// Package risk holds position sizing policies and the cost arithmetic the
// backtest engine uses to gate entries.
package risk

import "fmt"

// Sizer decides how many shares an entry should take.
type Sizer interface {
	Name() string
	Shares(cash, price float64) float64
}

// CashFraction sizes each entry as a fraction of the cash available at
// signal time.
type CashFraction struct {
	Pct float64 // 0.1 = 10% of cash
}

func (s CashFraction) Name() string { return fmt.Sprintf("cash_fraction(%.4f)", s.Pct) }

func (s CashFraction) Shares(cash, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return cash * s.Pct / price
}

// FixedShares always sizes entries at N shares.
type FixedShares struct {
	N float64
}

func (s FixedShares) Name() string { return fmt.Sprintf("fixed_shares(%g)", s.N) }

func (s FixedShares) Shares(cash, price float64) float64 {
	return s.N
}
