// Package indicators provides streaming technical indicators over close prices.
package indicators

import "math"

// Indicator computes a single streaming value from closes.
// It is deterministic and holds no state outside the value itself, so the
// same instance can be reused after Reset.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed price.
	Update(x float64)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current value. If !Ready(), it returns 0;
	// callers should always check Ready().
	Value() float64
}

// Series runs ind over xs from a fresh state and returns one value per
// input. Entries before the indicator is ready are NaN.
func Series(ind Indicator, xs []float64) []float64 {
	ind.Reset()
	out := make([]float64, len(xs))
	for i, x := range xs {
		ind.Update(x)
		if ind.Ready() {
			out[i] = ind.Value()
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// FirstDefined returns the index of the first non-NaN value, or len(xs)
// when there is none.
func FirstDefined(xs []float64) int {
	for i, x := range xs {
		if !math.IsNaN(x) {
			return i
		}
	}
	return len(xs)
}
