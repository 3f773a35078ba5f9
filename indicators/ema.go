package indicators

import "fmt"

// ExponentialMA is a streaming Exponential Moving Average with span
// smoothing alpha = 2/(period+1).
//
// It is seeded with the first value and reported as ready once period
// values have been seen, the same convention pandas uses for
// ewm(span=period, adjust=False, min_periods=period).
type ExponentialMA struct {
	period int
	alpha  float64

	seen  int
	value float64
}

// NewEMA creates a new Exponential Moving Average indicator with the given period
func NewEMA(period int) *ExponentialMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &ExponentialMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *ExponentialMA) Warmup() int  { return e.period }
func (e *ExponentialMA) Ready() bool  { return e.seen >= e.period }

func (e *ExponentialMA) Reset() {
	e.seen = 0
	e.value = 0
}

func (e *ExponentialMA) Update(x float64) {
	e.seen++
	if e.seen == 1 {
		e.value = x
		return
	}
	e.value = e.alpha*x + (1.0-e.alpha)*e.value
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.value
}
