package backtest

import (
	"time"

	"github.com/rustyeddy/tradebt/risk"
)

// Ledger tracks cash and the open long and short positions of one run.
//
// Every entry is gated on cash strictly exceeding its cost, so no entry
// takes cash below zero. Settling a short whose price has more than doubled
// since entry credits less than nothing, and that is not clamped.
//
// Positions are kept in insertion order so iteration is deterministic;
// order carries no other meaning.
type Ledger struct {
	cash       float64
	commission float64

	longs  []Position
	shorts []Position
	trades []Trade

	wins, losses int
	finalized    bool
}

func NewLedger(cash, commission float64) *Ledger {
	return &Ledger{cash: cash, commission: commission}
}

func (l *Ledger) Cash() float64       { return l.cash }
func (l *Ledger) Commission() float64 { return l.commission }
func (l *Ledger) Finalized() bool     { return l.finalized }
func (l *Ledger) Wins() int           { return l.wins }
func (l *Ledger) Losses() int         { return l.losses }

// Longs returns a copy of the open long positions.
func (l *Ledger) Longs() []Position { return append([]Position(nil), l.longs...) }

// Shorts returns a copy of the open short positions.
func (l *Ledger) Shorts() []Position { return append([]Position(nil), l.shorts...) }

// Trades returns a copy of the closed trades in close order.
func (l *Ledger) Trades() []Trade { return append([]Trade(nil), l.trades...) }

// OpenCount is the number of open positions on both sides.
func (l *Ledger) OpenCount() int { return len(l.longs) + len(l.shorts) }

// WinRate is wins/(wins+losses), or 0 when nothing has closed.
func (l *Ledger) WinRate() float64 {
	n := l.wins + l.losses
	if n == 0 {
		return 0
	}
	return float64(l.wins) / float64(n)
}

// Open debits the entry cost and records a new position with the bracket
// placed at price*(1±tp) and price*(1∓sl) for the side. It returns false,
// leaving the ledger untouched, when cash does not strictly exceed the cost.
func (l *Ledger) Open(side Side, t time.Time, price, shares, stopLoss, takeProfit float64) bool {
	if l.finalized {
		return false
	}
	if !risk.Affordable(l.cash, price, shares, l.commission) {
		return false
	}

	p := Position{
		EntryTime:  t,
		EntryPrice: price,
		Shares:     shares,
		Side:       side,
	}
	if side == Long {
		p.TakeProfit = price * (1 + takeProfit)
		p.StopLoss = price * (1 - stopLoss)
	} else {
		p.TakeProfit = price * (1 - takeProfit)
		p.StopLoss = price * (1 + stopLoss)
	}

	l.cash -= p.EntryDebit(l.commission)
	if side == Long {
		l.longs = append(l.longs, p)
	} else {
		l.shorts = append(l.shorts, p)
	}
	return true
}

// CloseEligible closes every long, then every short, whose bracket the
// price has left. It returns the number of positions closed.
func (l *Ledger) CloseEligible(t time.Time, price float64) int {
	var n int
	l.longs, n = l.closeWhere(l.longs, t, price, false)
	closed := n
	l.shorts, n = l.closeWhere(l.shorts, t, price, false)
	return closed + n
}

// Finalize force-closes every open position at price. It runs once; later
// calls change nothing and return false.
func (l *Ledger) Finalize(t time.Time, price float64) bool {
	if l.finalized {
		return false
	}
	l.longs, _ = l.closeWhere(l.longs, t, price, true)
	l.shorts, _ = l.closeWhere(l.shorts, t, price, true)
	l.finalized = true
	return true
}

// Value is cash plus the liquidation value of every open position at price.
func (l *Ledger) Value(price float64) float64 {
	v := l.cash
	for _, p := range l.longs {
		v += p.ExitCredit(price, l.commission)
	}
	for _, p := range l.shorts {
		v += p.ExitCredit(price, l.commission)
	}
	return v
}

// closeWhere settles positions that exit at price (all of them when force
// is set) and returns the survivors as a new slice. The input slice is only
// read, never modified in place.
func (l *Ledger) closeWhere(open []Position, t time.Time, price float64, force bool) ([]Position, int) {
	if len(open) == 0 {
		return open, 0
	}

	kept := make([]Position, 0, len(open))
	closed := 0
	for _, p := range open {
		reason, hit := p.checkExit(price)
		if force {
			reason, hit = ReasonEnd, true
		}
		if !hit {
			kept = append(kept, p)
			continue
		}
		l.settle(p, t, price, reason)
		closed++
	}
	return kept, closed
}

func (l *Ledger) settle(p Position, t time.Time, price float64, reason string) {
	l.cash += p.ExitCredit(price, l.commission)
	pnl := p.PnL(price, l.commission)
	if pnl >= 0 {
		l.wins++
	} else {
		l.losses++
	}
	l.trades = append(l.trades, Trade{
		Side:       p.Side,
		EntryTime:  p.EntryTime,
		ExitTime:   t,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		Shares:     p.Shares,
		PnL:        pnl,
		NetPnL:     p.NetPnL(price, l.commission),
		RR:         p.RR(),
		Reason:     reason,
	})
}
