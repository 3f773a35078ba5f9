package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Returns(nil))
	assert.Nil(t, Returns([]float64{5}))

	r := Returns([]float64{100, 110, 99, 0, 50})
	// the step out of zero is dropped
	require.Len(t, r, 3)
	assert.InDelta(t, 0.1, r[0], 1e-12)
	assert.InDelta(t, -0.1, r[1], 1e-12)
	assert.InDelta(t, -1.0, r[2], 1e-12)
}

func TestConstantSeriesIsZero(t *testing.T) {
	t.Parallel()

	values := make([]float64, 50)
	for i := range values {
		values[i] = 1_000_000
	}
	s := Evaluate(values, HourlyPeriods)
	assert.Equal(t, Summary{}, s)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"rising", []float64{1, 2, 3, 4}, 0},
		{"single dip", []float64{100, 110, 99, 121}, 0.1},
		{"deepest wins", []float64{100, 80, 120, 60, 130}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdown(tt.values), 1e-12)
		})
	}
}

func TestSharpeSortinoCalmar(t *testing.T) {
	t.Parallel()

	values := []float64{100, 101, 100, 102, 101.5}
	r := Returns(values)

	var m float64
	for _, x := range r {
		m += x
	}
	m /= float64(len(r))

	var ss, dss, dm float64
	for _, x := range r {
		ss += (x - m) * (x - m)
		dm += math.Min(x, 0)
	}
	dm /= float64(len(r))
	for _, x := range r {
		d := math.Min(x, 0) - dm
		dss += d * d
	}
	sd := math.Sqrt(ss / float64(len(r)-1))
	dsd := math.Sqrt(dss / float64(len(r)-1))

	// one period per year leaves the raw ratios
	assert.InDelta(t, m/sd, Sharpe(values, 1), 1e-12)
	assert.InDelta(t, m/dsd, Sortino(values, 1), 1e-12)
	assert.InDelta(t, m/MaxDrawdown(values), Calmar(values, 1), 1e-12)

	// annualizing scales Sharpe by sqrt(P) and Calmar by P
	assert.InDelta(t, m/sd*math.Sqrt(HourlyPeriods), Sharpe(values, HourlyPeriods), 1e-9)
	assert.InDelta(t, Calmar(values, 1)*HourlyPeriods, Calmar(values, HourlyPeriods), 1e-9)
	assert.Equal(t, Sharpe(values, HourlyPeriods), Sharpe(values, 0), "non-positive periods default to hourly")
}

func TestZeroDenominators(t *testing.T) {
	t.Parallel()

	rising := []float64{100, 110, 125, 130}
	assert.Equal(t, 0.0, Sortino(rising, 1), "no downside")
	assert.Equal(t, 0.0, Calmar(rising, 1), "no drawdown")
	assert.Greater(t, Sharpe(rising, 1), 0.0)

	steady := []float64{1, 2, 4}
	assert.Equal(t, 0.0, Sharpe(steady, 1), "identical returns have no variance")
	assert.Equal(t, 0.0, Sharpe([]float64{1, 2}, 1), "one return")
	assert.Equal(t, 0.0, Sortino([]float64{2, 1}, 1), "one return")

	// no returns at all: the mean is undefined, never NaN out
	for _, vs := range [][]float64{nil, {5}, {0, 3}} {
		assert.Equal(t, Summary{}, Evaluate(vs, 1), "%v", vs)
	}
}

func TestTotalReturn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, TotalReturn(nil))
	assert.InDelta(t, 0.21, TotalReturn([]float64{100, 90, 121}), 1e-12)
}

func TestPeriodReturns(t *testing.T) {
	t.Parallel()

	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 12, 0, 0, 0, time.UTC) }
	times := []time.Time{day(1, 30), day(1, 31), day(2, 1), day(2, 2), day(4, 1)}
	values := []float64{100, 110, 121, 110, 132}

	tbl := ReturnsTable(times, values)

	require.Len(t, tbl.Monthly, 3)
	assert.Equal(t, "2024-01", tbl.Monthly[0].Label)
	assert.InDelta(t, 0.1, tbl.Monthly[0].Return, 1e-12)
	assert.Equal(t, "2024-02", tbl.Monthly[1].Label)
	assert.InDelta(t, 0.0, tbl.Monthly[1].Return, 1e-12)
	assert.Equal(t, "2024-04", tbl.Monthly[2].Label)
	assert.InDelta(t, 0.2, tbl.Monthly[2].Return, 1e-12)

	require.Len(t, tbl.Quarterly, 2)
	assert.Equal(t, "2024-Q1", tbl.Quarterly[0].Label)
	assert.InDelta(t, 0.1, tbl.Quarterly[0].Return, 1e-12)
	assert.Equal(t, "2024-Q2", tbl.Quarterly[1].Label)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), tbl.Quarterly[1].Start)

	require.Len(t, tbl.Annual, 1)
	assert.Equal(t, "2024", tbl.Annual[0].Label)
	assert.InDelta(t, 0.32, tbl.Annual[0].Return, 1e-12)

	assert.Nil(t, PeriodReturns(nil, nil, Monthly))
}
