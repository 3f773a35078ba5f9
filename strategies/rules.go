package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/tradebt/indicators"
)

// Rule turns a close series into buy/sell flags.
//
// Signals returns flags aligned index-for-index with closes plus the index
// of the first bar where the rule is defined. Flags before start are false
// and must not be handed to the engine.
type Rule interface {
	Name() string
	Signals(closes []float64) (buy, sell []bool, start int)
}

// RSILevel buys when RSI is below Lower and sells when it is above Upper.
type RSILevel struct {
	Window int
	Lower  float64
	Upper  float64
}

func (r RSILevel) Name() string {
	return fmt.Sprintf("rsi(%d,%g,%g)", r.Window, r.Lower, r.Upper)
}

func (r RSILevel) Signals(closes []float64) ([]bool, []bool, int) {
	rsi := indicators.Series(indicators.NewRSI(r.Window), closes)
	buy := make([]bool, len(closes))
	sell := make([]bool, len(closes))
	for i, v := range rsi {
		if math.IsNaN(v) {
			continue
		}
		buy[i] = v < r.Lower
		sell[i] = v > r.Upper
	}
	return buy, sell, indicators.FirstDefined(rsi)
}

// EMACross buys when the short EMA crosses above the long EMA between two
// consecutive bars and sells on the opposite cross. The first defined bar
// has no predecessor and never crosses.
type EMACross struct {
	Short int
	Long  int
}

func (r EMACross) Name() string {
	return fmt.Sprintf("ema(%d,%d)", r.Short, r.Long)
}

func (r EMACross) Signals(closes []float64) ([]bool, []bool, int) {
	short := indicators.Series(indicators.NewEMA(r.Short), closes)
	long := indicators.Series(indicators.NewEMA(r.Long), closes)
	start := max(indicators.FirstDefined(short), indicators.FirstDefined(long))

	buy := make([]bool, len(closes))
	sell := make([]bool, len(closes))
	for i := start + 1; i < len(closes); i++ {
		prev := short[i-1] - long[i-1]
		cur := short[i] - long[i]
		buy[i] = cur > 0 && prev <= 0
		sell[i] = cur < 0 && prev >= 0
	}
	return buy, sell, start
}

// MACDLevel buys while the MACD line is above its signal line and sells
// while it is below.
type MACDLevel struct {
	Short  int
	Long   int
	Signal int
}

func (r MACDLevel) Name() string {
	return fmt.Sprintf("macd(%d,%d,%d)", r.Short, r.Long, r.Signal)
}

func (r MACDLevel) Signals(closes []float64) ([]bool, []bool, int) {
	line, sig := indicators.MACDSeries(r.Short, r.Long, r.Signal, closes)
	buy := make([]bool, len(closes))
	sell := make([]bool, len(closes))
	for i := range line {
		if math.IsNaN(line[i]) {
			continue
		}
		buy[i] = line[i] > sig[i]
		sell[i] = line[i] < sig[i]
	}
	return buy, sell, indicators.FirstDefined(line)
}

// Vote combines rules by agreement: a flag fires when at least Quorum rules
// raise it on the same bar.
type Vote struct {
	Rules  []Rule
	Quorum int
}

func (v Vote) Name() string {
	return fmt.Sprintf("vote(%d/%d)", v.Quorum, len(v.Rules))
}

func (v Vote) Signals(closes []float64) ([]bool, []bool, int) {
	buyVotes := make([]int, len(closes))
	sellVotes := make([]int, len(closes))
	start := 0
	for _, r := range v.Rules {
		b, s, st := r.Signals(closes)
		start = max(start, st)
		for i := range closes {
			if b[i] {
				buyVotes[i]++
			}
			if s[i] {
				sellVotes[i]++
			}
		}
	}

	buy := make([]bool, len(closes))
	sell := make([]bool, len(closes))
	for i := start; i < len(closes); i++ {
		buy[i] = buyVotes[i] >= v.Quorum
		sell[i] = sellVotes[i] >= v.Quorum
	}
	return buy, sell, min(start, len(closes))
}
