package metrics

import (
	"fmt"
	"time"
)

// Period is a calendar bucket for compounding returns.
type Period int

const (
	Monthly Period = iota
	Quarterly
	Annual
)

func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Annual:
		return "annual"
	}
	return "unknown"
}

// bucket returns the start of the calendar period containing t, in UTC.
func (p Period) bucket(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case Quarterly:
		m := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), m, 1, 0, 0, 0, 0, time.UTC)
	case Annual:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func (p Period) label(start time.Time) string {
	switch p {
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", start.Year(), (int(start.Month())-1)/3+1)
	case Annual:
		return fmt.Sprintf("%d", start.Year())
	default:
		return start.Format("2006-01")
	}
}

type PeriodReturn struct {
	Start  time.Time `json:"start"`
	Label  string    `json:"label"`
	Return float64   `json:"return"`
}

// PeriodReturns compounds the per-bar returns of values inside each calendar
// period. Each bar's return is attributed to the period of its own
// timestamp, so a period's figure runs from the previous period's last value
// to its own last value. times and values must be parallel; the shorter
// length wins.
func PeriodReturns(times []time.Time, values []float64, per Period) []PeriodReturn {
	n := min(len(times), len(values))
	if n == 0 {
		return nil
	}

	var out []PeriodReturn
	cur := PeriodReturn{Start: per.bucket(times[0])}
	growth := 1.0
	for i := 1; i < n; i++ {
		b := per.bucket(times[i])
		if !b.Equal(cur.Start) {
			cur.Return = growth - 1
			cur.Label = per.label(cur.Start)
			out = append(out, cur)
			cur = PeriodReturn{Start: b}
			growth = 1
		}
		if values[i-1] != 0 {
			growth *= values[i] / values[i-1]
		}
	}
	cur.Return = growth - 1
	cur.Label = per.label(cur.Start)
	return append(out, cur)
}

// Table holds the monthly, quarterly and annual compounded returns of one
// value series.
type Table struct {
	Monthly   []PeriodReturn `json:"monthly"`
	Quarterly []PeriodReturn `json:"quarterly"`
	Annual    []PeriodReturn `json:"annual"`
}

func ReturnsTable(times []time.Time, values []float64) Table {
	return Table{
		Monthly:   PeriodReturns(times, values, Monthly),
		Quarterly: PeriodReturns(times, values, Quarterly),
		Annual:    PeriodReturns(times, values, Annual),
	}
}
