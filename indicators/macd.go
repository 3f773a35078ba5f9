package indicators

import (
	"fmt"
	"math"
)

// MACD tracks the moving average convergence/divergence line
// (EMA(fast) - EMA(slow)) and its signal line (EMA(signal) of the MACD line).
//
// The signal EMA is only fed once the MACD line itself is ready, so the
// indicator needs slow+signal-1 updates before Ready().
type MACD struct {
	fast, slow, signal *ExponentialMA
	fastN, slowN, sigN int
}

func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:   NewEMA(fast),
		slow:   NewEMA(slow),
		signal: NewEMA(signal),
		fastN:  fast,
		slowN:  slow,
		sigN:   signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastN, m.slowN, m.sigN)
}

func (m *MACD) Warmup() int {
	return max(m.fastN, m.slowN) + m.sigN - 1
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

func (m *MACD) Update(x float64) {
	m.fast.Update(x)
	m.slow.Update(x)
	if m.lineReady() {
		m.signal.Update(m.Line())
	}
}

func (m *MACD) lineReady() bool {
	return m.fast.Ready() && m.slow.Ready()
}

func (m *MACD) Ready() bool {
	return m.lineReady() && m.signal.Ready()
}

// Line returns the MACD line, or 0 before both EMAs are ready.
func (m *MACD) Line() float64 {
	if !m.lineReady() {
		return 0
	}
	return m.fast.Value() - m.slow.Value()
}

// Signal returns the signal line, or 0 before it is ready.
func (m *MACD) Signal() float64 {
	return m.signal.Value()
}

// Value returns the histogram (line - signal).
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.Line() - m.Signal()
}

// MACDSeries returns the MACD line and signal line for xs. Entries are NaN
// until the signal line is ready, so both slices share one warmup.
func MACDSeries(fast, slow, signal int, xs []float64) (line, sig []float64) {
	m := NewMACD(fast, slow, signal)
	line = make([]float64, len(xs))
	sig = make([]float64, len(xs))
	for i, x := range xs {
		m.Update(x)
		if m.Ready() {
			line[i] = m.Line()
			sig[i] = m.Signal()
		} else {
			line[i] = math.NaN()
			sig[i] = math.NaN()
		}
	}
	return line, sig
}
