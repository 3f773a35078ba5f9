package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestLedgerShortProfitIsWin(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, 0.00125)
	require.True(t, l.Open(Short, t0, 100, 10, 0.02, 0.05))
	assert.InDelta(t, 10_000-1001.25, l.Cash(), 1e-9)

	s := l.Shorts()
	require.Len(t, s, 1)
	assert.InDelta(t, 95.0, s[0].TakeProfit, 1e-9)
	assert.InDelta(t, 102.0, s[0].StopLoss, 1e-9)

	n := l.CloseEligible(t0.Add(time.Hour), 90)
	require.Equal(t, 1, n)

	trades := l.Trades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, Short, tr.Side)
	assert.Equal(t, ReasonTake, tr.Reason)
	assert.Greater(t, tr.PnL, 0.0)
	assert.InDelta(t, 10*10*(1-0.00125), tr.PnL, 1e-9)
	// 1000 escrow + 1000 proceeds - 901.125 buy-back - 1001.25 debit
	assert.InDelta(t, 97.625, tr.NetPnL, 1e-9)
	assert.InDelta(t, 2.5, tr.RR, 1e-9)
	assert.Equal(t, 1, l.Wins())
	assert.Equal(t, 0, l.Losses())
	assert.InDelta(t, 10_000+97.625, l.Cash(), 1e-9)
}

func TestLedgerSmallMoveInsideCommissionIsWin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		side Side
		exit float64
	}{
		{Long, 100.1},
		{Short, 99.9},
	}
	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			l := NewLedger(10_000, 0.00125)
			require.True(t, l.Open(tt.side, t0, 100, 10, 0.02, 0.05))
			require.True(t, l.Finalize(t0.Add(time.Hour), tt.exit))

			tr := l.Trades()[0]
			assert.InDelta(t, 0.1*10*(1-0.00125), tr.PnL, 1e-9)
			// the cash delta still pays both commissions
			assert.Less(t, tr.NetPnL, 0.0)
			assert.InDelta(t, 10_000+tr.NetPnL, l.Cash(), 1e-9)
			assert.Equal(t, 1, l.Wins())
			assert.Equal(t, 0, l.Losses())
			assert.Equal(t, 1.0, l.WinRate())
		})
	}
}

func TestLedgerShortGapCanTakeCashNegative(t *testing.T) {
	t.Parallel()

	l := NewLedger(1_100, 0)
	require.True(t, l.Open(Short, t0, 100, 10, 0.02, 0.05))
	assert.InDelta(t, 100.0, l.Cash(), 1e-9)

	// escrow 1000 + proceeds 1000 - buy-back 2500 is a negative credit;
	// settlement is not clamped
	require.Equal(t, 1, l.CloseEligible(t0.Add(time.Hour), 250))
	assert.InDelta(t, -400.0, l.Cash(), 1e-9)
	assert.Equal(t, ReasonStop, l.Trades()[0].Reason)
	assert.Equal(t, 1, l.Losses())

	// with negative cash every later entry is refused
	assert.False(t, l.Open(Long, t0.Add(time.Hour), 250, 0, 0.02, 0.05))
}

func TestLedgerZeroCommissionRoundTripConservesCash(t *testing.T) {
	t.Parallel()

	for _, side := range []Side{Long, Short} {
		l := NewLedger(5_000, 0)
		require.True(t, l.Open(side, t0, 42.5, 17, 0.1, 0.1))
		require.True(t, l.Finalize(t0.Add(time.Hour), 42.5))
		assert.Equal(t, 5_000.0, l.Cash(), side.String())
		assert.Equal(t, 0, l.OpenCount())
	}
}

func TestShortSettlementFormulasAgree(t *testing.T) {
	t.Parallel()

	cases := []struct{ entry, exit, shares, c float64 }{
		{100, 90, 10, 0.00125},
		{100, 110, 3.5, 0.00125},
		{57.25, 57.25, 1000, 0},
		{12, 9.75, 0.4, 0.01},
	}
	for _, tc := range cases {
		p := Position{EntryPrice: tc.entry, Shares: tc.shares, Side: Short}
		got := p.ExitCredit(tc.exit, tc.c)
		// collateral back, plus price move, minus buy-back commission
		want := tc.entry*tc.shares + (tc.entry-tc.exit)*tc.shares - tc.exit*tc.shares*tc.c
		assert.InDelta(t, want, got, 1e-9)
	}
}

func TestLedgerRejectsUnaffordable(t *testing.T) {
	t.Parallel()

	l := NewLedger(1_000, 0.00125)
	assert.False(t, l.Open(Long, t0, 100, 10, 0.02, 0.05), "1001.25 > 1000")
	assert.Equal(t, 1_000.0, l.Cash())
	assert.Equal(t, 0, l.OpenCount())

	// exactly equal cost is still rejected
	l = NewLedger(1_000, 0)
	assert.False(t, l.Open(Short, t0, 100, 10, 0.02, 0.05))

	// zero shares against empty cash
	l = NewLedger(0, 0)
	assert.False(t, l.Open(Long, t0, 100, 0, 0.02, 0.05))
}

func TestLedgerCashNeverNegative(t *testing.T) {
	t.Parallel()

	l := NewLedger(1_000, 0.00125)
	prices := []float64{100, 101, 99, 103, 98, 104, 97, 100, 102, 99}
	for i, px := range prices {
		ts := t0.Add(time.Duration(i) * time.Hour)
		l.CloseEligible(ts, px)
		l.Open(Long, ts, px, l.Cash()*0.9/px, 0.02, 0.05)
		l.Open(Short, ts, px, l.Cash()*0.9/px, 0.02, 0.05)
		assert.GreaterOrEqual(t, l.Cash(), 0.0, "bar %d", i)

		for _, p := range append(l.Longs(), l.Shorts()...) {
			assert.True(t, p.Valid(), "bar %d: %+v", i, p)
		}
	}
}

func TestLedgerStrictThresholds(t *testing.T) {
	t.Parallel()

	long := NewLedger(10_000, 0)
	require.True(t, long.Open(Long, t0, 100, 10, 0.02, 0.05))
	assert.Equal(t, 0, long.CloseEligible(t0, 105))
	assert.Equal(t, 0, long.CloseEligible(t0, 98))
	assert.Equal(t, 1, long.CloseEligible(t0, 105.01))
	assert.Equal(t, ReasonTake, long.Trades()[0].Reason)
	assert.Equal(t, 1, long.Wins())

	short := NewLedger(10_000, 0)
	require.True(t, short.Open(Short, t0, 100, 10, 0.02, 0.05))
	assert.Equal(t, 0, short.CloseEligible(t0, 95))
	assert.Equal(t, 0, short.CloseEligible(t0, 102))
	assert.Equal(t, 1, short.CloseEligible(t0, 102.5))
	trades := short.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, Short, trades[0].Side)
	assert.Equal(t, ReasonStop, trades[0].Reason)
	assert.Equal(t, 0, short.Wins())
	assert.Equal(t, 1, short.Losses())
	assert.Equal(t, 0, short.OpenCount())
}

func TestLedgerClosesAllEligibleInOnePass(t *testing.T) {
	t.Parallel()

	l := NewLedger(100_000, 0)
	for i := 0; i < 5; i++ {
		require.True(t, l.Open(Long, t0, 100, 10, 0.02, 0.05))
	}
	require.True(t, l.Open(Long, t0, 105, 10, 0.02, 0.05))

	// 106 exits the five 100-entries, not the 105 entry
	assert.Equal(t, 5, l.CloseEligible(t0.Add(time.Hour), 106))
	left := l.Longs()
	require.Len(t, left, 1)
	assert.Equal(t, 105.0, left[0].EntryPrice)
}

func TestLedgerFinalizeOnce(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, 0.00125)
	require.True(t, l.Open(Long, t0, 100, 10, 0.02, 0.05))
	require.True(t, l.Open(Short, t0, 100, 10, 0.02, 0.05))

	end := t0.Add(24 * time.Hour)
	require.True(t, l.Finalize(end, 101))
	cash := l.Cash()
	trades := l.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, Long, trades[0].Side)
	assert.Equal(t, Short, trades[1].Side)
	for _, tr := range trades {
		assert.Equal(t, ReasonEnd, tr.Reason)
		assert.Equal(t, end, tr.ExitTime)
	}

	assert.False(t, l.Finalize(end, 500))
	assert.Equal(t, cash, l.Cash())
	assert.Len(t, l.Trades(), 2)
	assert.False(t, l.Open(Long, end, 100, 1, 0.02, 0.05))
	assert.True(t, l.Finalized())
}

func TestLedgerValueMatchesLiquidation(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, 0.00125)
	require.True(t, l.Open(Long, t0, 100, 10, 0.02, 0.05))
	require.True(t, l.Open(Short, t0, 100, 5, 0.02, 0.05))

	v := l.Value(101)
	l.Finalize(t0.Add(time.Hour), 101)
	assert.InDelta(t, v, l.Cash(), 1e-9)
}

func TestLedgerAccessorsCopy(t *testing.T) {
	t.Parallel()

	l := NewLedger(10_000, 0)
	require.True(t, l.Open(Long, t0, 100, 10, 0.02, 0.05))
	longs := l.Longs()
	longs[0].Shares = 0
	assert.Equal(t, 10.0, l.Longs()[0].Shares)
	assert.Equal(t, 0.0, l.WinRate())
}
