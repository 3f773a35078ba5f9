package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var closes = []float64{102, 105, 106, 108, 110, 111, 113, 114, 116, 118}

func TestExponentialMAStreaming(t *testing.T) {
	t.Run("seeded with first value", func(t *testing.T) {
		ema := NewEMA(3)
		assert.Equal(t, "EMA(3)", ema.Name())
		assert.Equal(t, 3, ema.Warmup())

		ema.Update(closes[0])
		ema.Update(closes[1])
		assert.False(t, ema.Ready())
		assert.Equal(t, 0.0, ema.Value())

		ema.Update(closes[2])
		require.True(t, ema.Ready())

		// alpha = 2/(3+1) = 0.5
		want := 102.0
		want = 0.5*105 + 0.5*want
		want = 0.5*106 + 0.5*want
		assert.InDelta(t, want, ema.Value(), 1e-9)
	})

	t.Run("constant input stays constant", func(t *testing.T) {
		ema := NewEMA(5)
		for i := 0; i < 20; i++ {
			ema.Update(42)
		}
		assert.InDelta(t, 42.0, ema.Value(), 1e-12)
	})

	t.Run("reset functionality", func(t *testing.T) {
		ema := NewEMA(2)
		ema.Update(closes[0])
		ema.Update(closes[1])
		assert.True(t, ema.Ready())

		ema.Reset()
		assert.False(t, ema.Ready())
		assert.Equal(t, 0.0, ema.Value())
	})
}

func TestRSI(t *testing.T) {
	t.Run("only gains reads 100", func(t *testing.T) {
		rsi := NewRSI(3)
		for _, c := range closes {
			rsi.Update(c)
		}
		require.True(t, rsi.Ready())
		assert.Equal(t, 100.0, rsi.Value())
	})

	t.Run("only losses reads 0", func(t *testing.T) {
		rsi := NewRSI(3)
		for i := len(closes) - 1; i >= 0; i-- {
			rsi.Update(closes[i])
		}
		assert.InDelta(t, 0.0, rsi.Value(), 1e-9)
	})

	t.Run("wilder smoothing", func(t *testing.T) {
		rsi := NewRSI(2)
		assert.Equal(t, "RSI(2)", rsi.Name())

		rsi.Update(10)
		assert.False(t, rsi.Ready())
		rsi.Update(12) // gain 2: avgGain = 0.5*2 + 0.5*0 = 1, avgLoss = 0
		require.True(t, rsi.Ready())
		assert.Equal(t, 100.0, rsi.Value())

		rsi.Update(11) // loss 1: avgGain = 0.5, avgLoss = 0.5
		assert.InDelta(t, 50.0, rsi.Value(), 1e-9)
	})

	t.Run("bounded", func(t *testing.T) {
		rsi := NewRSI(4)
		xs := []float64{10, 11, 9, 12, 8, 13, 7, 14, 6}
		for _, x := range xs {
			rsi.Update(x)
			if rsi.Ready() {
				assert.GreaterOrEqual(t, rsi.Value(), 0.0)
				assert.LessOrEqual(t, rsi.Value(), 100.0)
			}
		}
	})
}

func TestMACD(t *testing.T) {
	m := NewMACD(2, 4, 3)
	assert.Equal(t, "MACD(2,4,3)", m.Name())
	assert.Equal(t, 6, m.Warmup())

	for i, c := range closes {
		m.Update(c)
		assert.Equal(t, i+1 >= m.Warmup(), m.Ready(), "update %d", i)
	}

	// rising series: fast EMA above slow EMA
	assert.Greater(t, m.Line(), 0.0)
	assert.InDelta(t, m.Line()-m.Signal(), m.Value(), 1e-12)

	m.Reset()
	assert.False(t, m.Ready())
	assert.Equal(t, 0.0, m.Value())
}

func TestSeries(t *testing.T) {
	out := Series(NewEMA(3), closes)
	require.Len(t, out, len(closes))

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.False(t, math.IsNaN(out[2]))
	assert.Equal(t, 2, FirstDefined(out))

	// Series resets, so running it twice gives the same values
	again := Series(NewEMA(3), closes)
	assert.Equal(t, out[5:], again[5:])
}

func TestMACDSeries(t *testing.T) {
	line, sig := MACDSeries(2, 4, 3, closes)
	require.Len(t, line, len(closes))
	require.Len(t, sig, len(closes))

	assert.Equal(t, 5, FirstDefined(line))
	assert.Equal(t, 5, FirstDefined(sig))

	m := NewMACD(2, 4, 3)
	for _, c := range closes {
		m.Update(c)
	}
	assert.InDelta(t, m.Line(), line[len(line)-1], 1e-12)
	assert.InDelta(t, m.Signal(), sig[len(sig)-1], 1e-12)
}

func TestFirstDefinedAllNaN(t *testing.T) {
	assert.Equal(t, 3, FirstDefined([]float64{math.NaN(), math.NaN(), math.NaN()}))
	assert.Equal(t, 0, FirstDefined(nil))
}

func TestIndicatorInterface(t *testing.T) {
	inds := []Indicator{NewEMA(3), NewRSI(3), NewMACD(2, 3, 2)}

	for _, ind := range inds {
		assert.False(t, ind.Ready(), "%s should not be ready initially", ind.Name())
		for _, c := range closes {
			ind.Update(c)
		}
		assert.True(t, ind.Ready(), "%s should be ready after warmup", ind.Name())
		ind.Reset()
		assert.False(t, ind.Ready(), "%s should not be ready after reset", ind.Name())
	}
}
