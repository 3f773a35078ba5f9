package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(n int) Bars {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(Bars, n)
	for i := range bars {
		bars[i] = Bar{Time: base.Add(time.Duration(i) * time.Hour), Close: float64(100 + i)}
	}
	return bars
}

func TestSplit(t *testing.T) {
	t.Parallel()

	bars := makeBars(10)
	train, test, validation, err := Split(bars, 0.6, 0.2)
	require.NoError(t, err)

	assert.Len(t, train, 6)
	assert.Len(t, test, 2)
	assert.Len(t, validation, 2)

	assert.True(t, train.End().Before(test.Start()))
	assert.True(t, test.End().Before(validation.Start()))
	assert.Equal(t, bars.End(), validation.End())
}

func TestSplitInvalid(t *testing.T) {
	t.Parallel()

	bars := makeBars(10)
	for _, fr := range [][2]float64{{0, 0.2}, {0.9, 0.2}, {0.5, -0.1}} {
		_, _, _, err := Split(bars, fr[0], fr[1])
		assert.Error(t, err, "fractions %v", fr)
	}
}

func TestSplitDoesNotAlias(t *testing.T) {
	t.Parallel()

	bars := makeBars(10)
	train, _, _, err := Split(bars, 0.5, 0.25)
	require.NoError(t, err)

	_ = append(train, Bar{Close: -1})
	assert.Equal(t, 105.0, bars[5].Close, "appending to train must not overwrite test bars")
}

func TestWindow(t *testing.T) {
	t.Parallel()

	bars := makeBars(5)
	assert.Equal(t, []float64{101, 102}, bars.Window(1, 3).Closes())
	assert.Len(t, bars.Window(-2, 100), 5)
	assert.Empty(t, bars.Window(3, 3))
}

func TestBarsValidate(t *testing.T) {
	t.Parallel()

	bars := makeBars(3)
	assert.NoError(t, bars.Validate())

	bars[2].Time = bars[1].Time
	assert.Error(t, bars.Validate())

	var empty Bars
	assert.NoError(t, empty.Validate())
	assert.True(t, empty.Start().IsZero())
	assert.True(t, empty.End().IsZero())
}
