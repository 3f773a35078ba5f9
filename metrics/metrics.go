// Package metrics reduces a portfolio-value series to risk-adjusted
// performance ratios. All functions are pure; a zero or undefined
// denominator yields 0 rather than an error, a NaN or an infinity.
//
// Means and sample (n-1) standard deviations come from gonum's stat
// package, which returns NaN for too-short inputs; ratio folds those to 0.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// HourlyPeriods is the number of one-hour bars in a 365-day year.
const HourlyPeriods = 365 * 24

// Returns is the simple percentage change between consecutive values.
// Steps from a zero value are skipped.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, values[i]/prev-1)
	}
	return out
}

func ratio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0
	}
	return num / den
}

// Sharpe is the annualized mean return over the annualized standard
// deviation of returns.
func Sharpe(values []float64, periodsPerYear float64) float64 {
	r := Returns(values)
	p := periods(periodsPerYear)
	return ratio(stat.Mean(r, nil)*p, stat.StdDev(r, nil)*math.Sqrt(p))
}

// Sortino is Sharpe with the deviation of the negative part of each return
// (positive returns count as zero).
func Sortino(values []float64, periodsPerYear float64) float64 {
	r := Returns(values)
	down := make([]float64, len(r))
	for i, x := range r {
		down[i] = math.Min(x, 0)
	}
	p := periods(periodsPerYear)
	return ratio(stat.Mean(r, nil)*p, stat.StdDev(down, nil)*math.Sqrt(p))
}

// MaxDrawdown is the largest fractional decline from a running peak, as a
// positive number. A series that never falls returns 0.
func MaxDrawdown(values []float64) float64 {
	var peak, worst float64
	for i, v := range values {
		if i == 0 || v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

// Calmar is the annualized mean return over the maximum drawdown.
func Calmar(values []float64, periodsPerYear float64) float64 {
	r := Returns(values)
	return ratio(stat.Mean(r, nil)*periods(periodsPerYear), MaxDrawdown(values))
}

// TotalReturn is last/first - 1, or 0 for fewer than two values.
func TotalReturn(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	return values[len(values)-1]/values[0] - 1
}

func periods(p float64) float64 {
	if p <= 0 {
		return HourlyPeriods
	}
	return p
}

type Summary struct {
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Calmar      float64 `json:"calmar"`
	TotalReturn float64 `json:"total_return"`
}

// Evaluate computes every ratio for values. periodsPerYear <= 0 selects
// HourlyPeriods.
func Evaluate(values []float64, periodsPerYear float64) Summary {
	return Summary{
		Sharpe:      Sharpe(values, periodsPerYear),
		Sortino:     Sortino(values, periodsPerYear),
		MaxDrawdown: MaxDrawdown(values),
		Calmar:      Calmar(values, periodsPerYear),
		TotalReturn: TotalReturn(values),
	}
}
