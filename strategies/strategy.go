// Package strategies converts indicator output into the buy/sell flags the
// backtest engine consumes.
package strategies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/tradebt/market"
)

// Frame is the engine's input: bars with their buy/sell flags, warm-up
// rows already removed. Bars, Buy and Sell always have the same length.
type Frame struct {
	Bars market.Bars
	Buy  []bool
	Sell []bool
}

func (f Frame) Len() int { return len(f.Bars) }

// Build evaluates rule over bars and drops the leading rows where the rule
// is undefined. Bars that are too short for the warm-up yield an empty Frame.
// The returned slices never alias the input.
func Build(bars market.Bars, rule Rule) Frame {
	buy, sell, start := rule.Signals(bars.Closes())
	if start >= len(bars) {
		return Frame{Bars: market.Bars{}, Buy: []bool{}, Sell: []bool{}}
	}

	kept := make(market.Bars, len(bars)-start)
	copy(kept, bars[start:])
	return Frame{
		Bars: kept,
		Buy:  buy[start:],
		Sell: sell[start:],
	}
}

// Rule constructors keyed by the names accepted on the command line.
var registry = map[string]func(Params) Rule{
	"rsi":  func(p Params) Rule { return p.RSIRule() },
	"ema":  func(p Params) Rule { return p.EMARule() },
	"macd": func(p Params) Rule { return p.MACDRule() },
	"vote": func(p Params) Rule { return p.VoteRule() },
}

// RuleByName returns the named rule configured from p.
func RuleByName(name string, p Params) (Rule, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "combined" {
		key = "vote"
	}
	mk, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown rule %q (supported: %s)", name, strings.Join(RuleNames(), ", "))
	}
	return mk(p), nil
}

// RuleNames lists the registered rule names in sorted order.
func RuleNames() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (p Params) RSIRule() RSILevel {
	return RSILevel{Window: p.RSIWindow, Lower: p.RSILower, Upper: p.RSIUpper}
}

func (p Params) EMARule() EMACross {
	return EMACross{Short: p.EMAShortWindow, Long: p.EMALongWindow}
}

func (p Params) MACDRule() MACDLevel {
	return MACDLevel{Short: p.MACDShortWindow, Long: p.MACDLongWindow, Signal: p.MACDSignalWindow}
}

// VoteRule is the default strategy: RSI, EMA cross and MACD with a 2-of-3
// majority.
func (p Params) VoteRule() Vote {
	return Vote{
		Rules:  []Rule{p.RSIRule(), p.EMARule(), p.MACDRule()},
		Quorum: 2,
	}
}
