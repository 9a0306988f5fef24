package pricing

import "github.com/shopspring/decimal"

// ValuePercent quantifies how far tote-offered odds beat the fair-odds
// estimate: (tote/fair - 1) * 100. The sign convention is fixed so that
// tote above fair is positive (an apparent edge); fair odds of zero mean
// no estimate and yield zero.
func ValuePercent(fairOdds, toteOdds decimal.Decimal) decimal.Decimal {
	if !fairOdds.IsPositive() {
		return decimal.Zero
	}
	return toteOdds.Div(fairOdds).Sub(one).Mul(hundred)
}

// DilutionFactor models the bettor's own impact on a pari-mutuel pool:
// adding a stake to the pool shrinks the effective payout ratio by
// poolNet / (poolNet + stake). A non-positive sum means no dilution is
// representable and yields 1.
func DilutionFactor(poolNet, stake decimal.Decimal) decimal.Decimal {
	total := poolNet.Add(stake)
	if !total.IsPositive() {
		return one
	}
	return poolNet.Div(total)
}

// DilutionPercent expresses a dilution factor as a percentage shrinkage,
// (1 - factor) * 100.
func DilutionPercent(factor decimal.Decimal) decimal.Decimal {
	return one.Sub(factor).Mul(hundred)
}

// EffectiveOdds returns the odds actually realised after self-dilution.
func EffectiveOdds(toteOdds, dilutionFactor decimal.Decimal) decimal.Decimal {
	return toteOdds.Mul(dilutionFactor)
}
