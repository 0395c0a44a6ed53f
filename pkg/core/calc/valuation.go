package calc

import "math"

// =============================================================================
// GROWTH PRIMITIVES
// =============================================================================

// GrowthRate is the period-over-period change relative to the prior value.
// The prior value is taken in absolute terms so a swing from a loss to a
// profit reads as positive growth. A zero prior yields zero, not infinity.
func GrowthRate(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return (current - prior) / math.Abs(prior)
}

// CAGR is the constant annual rate that compounds the beginning value into
// the ending value over the given number of years.
func CAGR(endingValue, beginningValue float64, years int) float64 {
	if beginningValue == 0 || years == 0 {
		return 0
	}
	return math.Pow(endingValue/beginningValue, 1.0/float64(years)) - 1
}

// ProjectRevenue rolls a revenue figure forward one period at the given
// growth rate.
func ProjectRevenue(priorRevenue, growthRate float64) float64 {
	return priorRevenue * (1 + growthRate)
}

// =============================================================================
// COST OF CAPITAL
// =============================================================================

// CostOfEquityCAPM is the CAPM required return on equity:
// r_e = r_f + beta * MRP.
func CostOfEquityCAPM(riskFreeRate, beta, marketRiskPremium float64) float64 {
	return riskFreeRate + beta*marketRiskPremium
}

// WACC blends the after-tax cost of debt and the cost of equity by their
// weights in the capital structure:
// WACC = r_d * (1 - T) * (D/V) + r_e * (E/V).
func WACC(costOfDebt, taxRate, debtWeight, costOfEquity, equityWeight float64) float64 {
	return costOfDebt*(1-taxRate)*debtWeight + costOfEquity*equityWeight
}

// =============================================================================
// TIME VALUE
// =============================================================================

// TerminalValueGordonGrowth capitalizes the first post-horizon cash flow as
// a growing perpetuity: TV = CF / (r - g). Growth at or above the discount
// rate has no finite value and yields zero.
func TerminalValueGordonGrowth(nextPeriodCF, discountRate, growthRate float64) float64 {
	if discountRate <= growthRate {
		return 0
	}
	return nextPeriodCF / (discountRate - growthRate)
}

// PresentValue discounts a single cash flow received after the given number
// of periods: PV = CF / (1 + r)^t.
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}
