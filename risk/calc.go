package risk

import "math"

// EntryCost is the cash debited to open a position of shares at price,
// commission included. Longs pay it as purchase cost, shorts post it as
// collateral.
func EntryCost(price, shares, commission float64) float64 {
	return price * shares * (1 + commission)
}

// ExitProceeds is the cash credited when selling shares at price.
func ExitProceeds(price, shares, commission float64) float64 {
	return price * shares * (1 - commission)
}

// Affordable reports whether cash strictly exceeds the entry cost.
// A zero-share request against empty cash is not affordable.
func Affordable(cash, price, shares, commission float64) bool {
	return cash > EntryCost(price, shares, commission)
}

// RewardToRisk is the distance from entry to take-profit over the distance
// from entry to stop-loss. It is side-agnostic and 0 for a zero stop
// distance.
func RewardToRisk(entry, stopLoss, takeProfit float64) float64 {
	loss := math.Abs(entry - stopLoss)
	if loss == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / loss
}
