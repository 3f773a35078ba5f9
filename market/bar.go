package market

import (
	"fmt"
	"time"
)

// Bar represents one fixed-interval OHLCV observation.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bars is a chronologically ascending sequence of bars.
type Bars []Bar

// Closes returns the close prices in order.
func (bs Bars) Closes() []float64 {
	out := make([]float64, len(bs))
	for i, b := range bs {
		out[i] = b.Close
	}
	return out
}

// Times returns the bar timestamps in order.
func (bs Bars) Times() []time.Time {
	out := make([]time.Time, len(bs))
	for i, b := range bs {
		out[i] = b.Time
	}
	return out
}

// Start returns the first bar's time, or the zero time when empty.
func (bs Bars) Start() time.Time {
	if len(bs) == 0 {
		return time.Time{}
	}
	return bs[0].Time
}

// End returns the last bar's time, or the zero time when empty.
func (bs Bars) End() time.Time {
	if len(bs) == 0 {
		return time.Time{}
	}
	return bs[len(bs)-1].Time
}

// Validate checks that timestamps are strictly increasing.
func (bs Bars) Validate() error {
	for i := 1; i < len(bs); i++ {
		if !bs[i].Time.After(bs[i-1].Time) {
			return fmt.Errorf("bars not strictly increasing at index %d: %s after %s",
				i, bs[i].Time.Format(time.RFC3339), bs[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
