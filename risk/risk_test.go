package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCashFraction(t *testing.T) {
	t.Parallel()

	s := CashFraction{Pct: 0.1}
	assert.InDelta(t, 1000.0, s.Shares(1_000_000, 100), 1e-9)
	assert.Equal(t, 0.0, s.Shares(0, 100))
	assert.Equal(t, 0.0, s.Shares(1000, 0))
	assert.Equal(t, "cash_fraction(0.1000)", s.Name())
}

func TestFixedShares(t *testing.T) {
	t.Parallel()

	s := FixedShares{N: 25}
	assert.Equal(t, 25.0, s.Shares(0, 100))
	assert.Equal(t, 25.0, s.Shares(1e9, 1))
	assert.Equal(t, "fixed_shares(25)", s.Name())
}

func TestAffordable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cash   float64
		price  float64
		shares float64
		com    float64
		want   bool
	}{
		{"plenty of cash", 1000, 10, 10, 0.01, true},
		{"exact cost is not enough", 101, 10, 10, 0.01, false},
		{"short by commission", 100.5, 10, 10, 0.01, false},
		{"zero shares with cash", 1, 10, 0, 0.01, true},
		{"zero shares without cash", 0, 10, 0, 0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Affordable(tt.cash, tt.price, tt.shares, tt.com))
		})
	}
}

func TestEntryCostAndExitProceeds(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1001.25, EntryCost(100, 10, 0.00125), 1e-9)
	assert.InDelta(t, 998.75, ExitProceeds(100, 10, 0.00125), 1e-9)
	assert.Equal(t, EntryCost(100, 10, 0), ExitProceeds(100, 10, 0))
}

func TestRewardToRisk(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.5, RewardToRisk(100, 98, 105), 1e-9)
	assert.InDelta(t, 2.5, RewardToRisk(100, 102, 95), 1e-9)
	assert.Equal(t, 0.0, RewardToRisk(100, 100, 105))
}
