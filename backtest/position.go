package backtest

import (
	"time"

	"github.com/rustyeddy/tradebt/risk"
)

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "UNKNOWN"
}

// Close reasons recorded on trades.
const (
	ReasonTake = "TAKE"
	ReasonStop = "STOP"
	ReasonEnd  = "END"
)

// Position is the entry terms of one open trade. Positions are created by
// the ledger on entry and never modified afterwards.
type Position struct {
	EntryTime  time.Time
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Shares     float64
	Side       Side
}

// Valid reports whether the exit thresholds bracket the entry price for the
// position's side.
func (p Position) Valid() bool {
	switch p.Side {
	case Long:
		return p.StopLoss < p.EntryPrice && p.EntryPrice < p.TakeProfit
	case Short:
		return p.TakeProfit < p.EntryPrice && p.EntryPrice < p.StopLoss
	}
	return false
}

// checkExit compares a close against the bracket. Thresholds are strict: a
// close exactly at the take-profit or stop-loss keeps the position open.
func (p Position) checkExit(price float64) (reason string, hit bool) {
	switch p.Side {
	case Long:
		if price > p.TakeProfit {
			return ReasonTake, true
		}
		if price < p.StopLoss {
			return ReasonStop, true
		}
	case Short:
		if price < p.TakeProfit {
			return ReasonTake, true
		}
		if price > p.StopLoss {
			return ReasonStop, true
		}
	}
	return "", false
}

// EntryDebit is the cash the position took out of the ledger when opened.
func (p Position) EntryDebit(commission float64) float64 {
	return risk.EntryCost(p.EntryPrice, p.Shares, commission)
}

// ExitCredit is the cash the position returns to the ledger if closed at
// price. It is also the position's mark-to-market value.
//
// Longs sell the shares: price*shares*(1-c).
// Shorts get back the escrowed notional plus the sale proceeds net of the
// buy-back cost: entry*shares + (entry*shares - price*shares*(1+c)).
func (p Position) ExitCredit(price, commission float64) float64 {
	if p.Side == Short {
		escrow := p.EntryPrice * p.Shares
		proceeds := p.EntryPrice * p.Shares
		buyBack := risk.EntryCost(price, p.Shares, commission)
		return escrow + (proceeds - buyBack)
	}
	return risk.ExitProceeds(price, p.Shares, commission)
}

// PnL is the price move over the position's life in its favor, scaled by
// (1-c): side*(price-entry)*shares*(1-c). It decides whether a close counts
// as a win.
func (p Position) PnL(price, commission float64) float64 {
	return float64(p.Side) * (price - p.EntryPrice) * p.Shares * (1 - commission)
}

// NetPnL is the change in cash from opening and closing at price, with the
// commission of both legs deducted.
func (p Position) NetPnL(price, commission float64) float64 {
	return p.ExitCredit(price, commission) - p.EntryDebit(commission)
}

// RR is the reward-to-risk ratio of the position's bracket.
func (p Position) RR() float64 {
	return risk.RewardToRisk(p.EntryPrice, p.StopLoss, p.TakeProfit)
}

// Trade is a closed position.
type Trade struct {
	Side       Side
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Shares     float64
	PnL        float64 // see Position.PnL
	NetPnL     float64 // cash delta, both commissions deducted
	RR         float64
	Reason     string
}
