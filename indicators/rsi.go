package indicators

import "fmt"

// RSI is a streaming Relative Strength Index using Wilder smoothing
// (alpha = 1/period) of gains and losses.
//
// The first update has no previous close and contributes a zero change, so
// the indicator is ready after period updates.
type RSI struct {
	period int
	alpha  float64

	seen    int
	prev    float64
	avgGain float64
	avgLoss float64
}

func NewRSI(period int) *RSI {
	if period <= 0 {
		panic("RSI period must be > 0")
	}
	return &RSI{
		period: period,
		alpha:  1.0 / float64(period),
	}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }
func (r *RSI) Warmup() int  { return r.period }
func (r *RSI) Ready() bool  { return r.seen >= r.period }

func (r *RSI) Reset() {
	r.seen = 0
	r.prev = 0
	r.avgGain = 0
	r.avgLoss = 0
}

func (r *RSI) Update(x float64) {
	var gain, loss float64
	if r.seen > 0 {
		if d := x - r.prev; d > 0 {
			gain = d
		} else {
			loss = -d
		}
	}
	r.prev = x
	r.seen++

	if r.seen == 1 {
		r.avgGain = gain
		r.avgLoss = loss
		return
	}
	r.avgGain = r.alpha*gain + (1-r.alpha)*r.avgGain
	r.avgLoss = r.alpha*loss + (1-r.alpha)*r.avgLoss
}

// Value returns RSI in [0, 100]. A window with no losses reads 100.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
