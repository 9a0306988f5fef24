// Package pricing provides the fair-odds model and value metrics for
// tote pool analysis. All functions are pure and operate on exact
// decimals so probability and currency arithmetic never drifts.
package pricing

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	syntheticBase = decimal.NewFromInt(2)
	syntheticStep = decimal.RequireFromString("1.5")
)

// ImpliedWinProbability converts decimal WIN odds to an implied win
// probability. Non-positive odds mean "no data" and yield zero rather
// than an error.
func ImpliedWinProbability(odds decimal.Decimal) decimal.Decimal {
	if !odds.IsPositive() {
		return decimal.Zero
	}
	return one.Div(odds)
}

// FairExactaProbability computes the fair probability of first and second
// finishing in that exact order, using the Harville conditional model
// P(first) * P(second) / (1 - P(first)) on WIN-market implied
// probabilities. Missing runners, non-positive first odds or a
// non-positive denominator all yield zero.
func FairExactaProbability(first, second int, winOdds map[int]decimal.Decimal) decimal.Decimal {
	firstOdds, ok := winOdds[first]
	if !ok {
		return decimal.Zero
	}
	secondOdds, ok := winOdds[second]
	if !ok {
		return decimal.Zero
	}
	if !firstOdds.IsPositive() {
		return decimal.Zero
	}

	pFirst := ImpliedWinProbability(firstOdds)
	pSecond := ImpliedWinProbability(secondOdds)

	denominator := one.Sub(pFirst)
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return pFirst.Mul(pSecond).Div(denominator)
}

// FairTrifectaProbability computes the fair probability of first, second
// and third finishing in that exact order:
// P(f) * [P(s) / (1-P(f))] * [P(t) / (1-P(f)-P(s))].
// All three runners must be present with positive WIN odds; any
// non-positive denominator yields zero.
func FairTrifectaProbability(first, second, third int, winOdds map[int]decimal.Decimal) decimal.Decimal {
	firstOdds, ok := winOdds[first]
	if !ok || !firstOdds.IsPositive() {
		return decimal.Zero
	}
	secondOdds, ok := winOdds[second]
	if !ok || !secondOdds.IsPositive() {
		return decimal.Zero
	}
	thirdOdds, ok := winOdds[third]
	if !ok || !thirdOdds.IsPositive() {
		return decimal.Zero
	}

	pFirst := ImpliedWinProbability(firstOdds)
	pSecond := ImpliedWinProbability(secondOdds)
	pThird := ImpliedWinProbability(thirdOdds)

	firstDenominator := one.Sub(pFirst)
	if !firstDenominator.IsPositive() {
		return decimal.Zero
	}
	secondDenominator := firstDenominator.Sub(pSecond)
	if !secondDenominator.IsPositive() {
		return decimal.Zero
	}

	return pFirst.
		Mul(pSecond.Div(firstDenominator)).
		Mul(pThird.Div(secondDenominator))
}

// FairOdds converts a probability back to decimal odds. Zero probability
// means "no fair estimate" and yields zero.
func FairOdds(probability decimal.Decimal) decimal.Decimal {
	if !probability.IsPositive() {
		return decimal.Zero
	}
	return one.Div(probability)
}

// SyntheticWinOdds generates deterministic placeholder WIN odds for a
// race with n runners when no WIN market exists: runner i gets
// 2 + 1.5*i.
func SyntheticWinOdds(n int) map[int]decimal.Decimal {
	odds := make(map[int]decimal.Decimal, n)
	for i := 1; i <= n; i++ {
		odds[i] = syntheticBase.Add(syntheticStep.Mul(decimal.NewFromInt(int64(i))))
	}
	return odds
}
