package journal

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Money formats a cash amount with two decimals and thousands separators.
func Money(x float64) string {
	s := decimal.NewFromFloat(x).Round(2).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// PrintRun writes a console summary of r.
func PrintRun(w io.Writer, r RunRecord) {
	fmt.Fprintf(w, "Run: %s", r.RunID)
	if r.Split != "" {
		fmt.Fprintf(w, " [%s]", r.Split)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rule:          %s\n", r.Rule)
	fmt.Fprintf(w, "Params:        %s\n", r.Params)
	if !r.Start.IsZero() {
		fmt.Fprintf(w, "Period:        %s .. %s (%d bars)\n",
			r.Start.Format("2006-01-02 15:04"), r.End.Format("2006-01-02 15:04"), r.Bars)
	}
	fmt.Fprintf(w, "Initial cash:  %s\n", Money(r.InitialCash))
	fmt.Fprintf(w, "Final cash:    %s\n", Money(r.FinalCash))
	fmt.Fprintf(w, "Net PnL:       %s\n", Money(r.NetPnL()))
	fmt.Fprintf(w, "Total return:  %.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(w, "Trades:        %d (wins=%d losses=%d win rate=%.2f%%)\n", r.Trades, r.Wins, r.Losses, r.WinRate*100)
	fmt.Fprintf(w, "Sharpe:        %.4f\n", r.Sharpe)
	fmt.Fprintf(w, "Sortino:       %.4f\n", r.Sortino)
	fmt.Fprintf(w, "Max drawdown:  %.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(w, "Calmar:        %.4f\n", r.Calmar)
}
