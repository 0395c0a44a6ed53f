package calc

import (
	"math"

	"finanalyzer/pkg/models"
)

// =============================================================================
// STATEMENT RATIOS - per-period ratio set over the linked statement model
// =============================================================================

// Ratios computes the ratio set for one aligned income-statement /
// balance-sheet pair. A ratio whose denominator is missing or zero stays nil;
// zero is never substituted for "not computable".
func Ratios(income models.IncomeStatement, bs models.BalanceSheet) models.FinancialRatios {
	r := models.FinancialRatios{
		Period:     income.PeriodEnd,
		FiscalYear: income.FiscalYear,
	}

	rev := models.Val(income.Revenue)
	net := models.Val(income.NetIncome)
	cogs := models.Val(income.CostOfRevenue)

	// Profitability
	if rev > 0 {
		if gp := models.Val(income.GrossProfit); gp != 0 {
			r.GrossMargin = models.Ptr(gp / rev)
		}
		if op := models.Val(income.OperatingIncome); op != 0 {
			r.OperatingMargin = models.Ptr(op / rev)
		}
		r.NetMargin = models.Ptr(net / rev)
		if ebitda := models.Val(income.EBITDA); ebitda != 0 {
			r.EBITDAMargin = models.Ptr(ebitda / rev)
		}
	}

	assets := models.Val(bs.TotalAssets)
	equity := models.Val(bs.TotalShareholdersEquity)
	if assets > 0 {
		r.ReturnOnAssets = models.Ptr(net / assets)
	}
	if equity > 0 {
		r.ReturnOnEquity = models.Ptr(net / equity)
	}

	// Liquidity
	if tcl := models.Val(bs.TotalCurrentLiabilities); tcl > 0 {
		if tca := models.Val(bs.TotalCurrentAssets); tca != 0 {
			r.CurrentRatio = models.Ptr(tca / tcl)
		}
		quick := models.Val(bs.CashAndEquivalents) +
			models.Val(bs.ShortTermInvestments) +
			models.Val(bs.AccountsReceivable)
		r.QuickRatio = models.Ptr(quick / tcl)
		if cash := models.Val(bs.CashAndEquivalents); cash != 0 {
			r.CashRatio = models.Ptr(cash / tcl)
		}
	}

	// Leverage
	totalDebt := models.Val(bs.ShortTermDebt) + models.Val(bs.LongTermDebt)
	if equity > 0 {
		r.DebtToEquity = models.Ptr(totalDebt / equity)
	}
	if assets > 0 {
		r.DebtToAssets = models.Ptr(totalDebt / assets)
	}
	if ie := models.Val(income.InterestExpense); ie != 0 {
		r.InterestCoverage = models.Ptr(models.Val(income.OperatingIncome) / math.Abs(ie))
	}

	// Efficiency and working-capital day counts
	if rev > 0 {
		if assets != 0 {
			r.AssetTurnover = models.Ptr(rev / assets)
		}
		if inv := models.Val(bs.Inventory); inv > 0 {
			it := cogs / inv
			r.InventoryTurnover = models.Ptr(it)
			if it != 0 {
				r.DaysInventoryOutstanding = models.Ptr(365 / it)
			}
		}
		if ar := models.Val(bs.AccountsReceivable); ar > 0 {
			rt := rev / ar
			r.ReceivablesTurnover = models.Ptr(rt)
			if rt > 0 {
				r.DaysSalesOutstanding = models.Ptr(365 / rt)
			}
		}
		if ap := models.Val(bs.AccountsPayable); ap > 0 {
			if pt := cogs / ap; pt > 0 {
				r.DaysPayableOutstanding = models.Ptr(365 / pt)
			}
		}
	}

	if r.DaysSalesOutstanding != nil && r.DaysInventoryOutstanding != nil && r.DaysPayableOutstanding != nil {
		ccc := *r.DaysSalesOutstanding + *r.DaysInventoryOutstanding - *r.DaysPayableOutstanding
		r.CashConversionCycle = models.Ptr(ccc)
	}

	return r
}

// RatioSeries computes ratios for aligned statement slices, one entry per
// income statement that has a matching balance sheet, with period-over-period
// growth filled in from the second entry on.
func RatioSeries(incomes []models.IncomeStatement, sheets []models.BalanceSheet) []models.FinancialRatios {
	out := make([]models.FinancialRatios, 0, len(incomes))
	for i, income := range incomes {
		if i >= len(sheets) {
			break
		}
		r := Ratios(income, sheets[i])
		if i > 0 {
			prior := incomes[i-1]
			if pv := models.Val(prior.Revenue); pv != 0 {
				r.RevenueGrowth = models.Ptr(GrowthRate(models.Val(income.Revenue), pv))
			}
			if pn := models.Val(prior.NetIncome); pn != 0 {
				r.NetIncomeGrowth = models.Ptr(GrowthRate(models.Val(income.NetIncome), pn))
			}
		}
		out = append(out, r)
	}
	return out
}

// =============================================================================
// FORECAST AGGREGATES - inputs to the recommendation scorer
// =============================================================================

// RevenueCAGR is the compound annual growth implied by moving from
// baseRevenue to finalRevenue over years. Zero when the base is not positive,
// since a non-positive base has no meaningful growth rate.
func RevenueCAGR(baseRevenue, finalRevenue float64, years int) float64 {
	if baseRevenue <= 0 {
		return 0
	}
	return CAGR(finalRevenue, baseRevenue, years)
}

// AverageNetMargin is the mean net margin across the statements that have
// positive revenue. Zero when none do.
func AverageNetMargin(incomes []models.IncomeStatement) float64 {
	var sum float64
	var n int
	for _, is := range incomes {
		rev := models.Val(is.Revenue)
		if rev > 0 {
			sum += models.Val(is.NetIncome) / rev
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// GrowthSeries returns period-over-period revenue growth, one entry per
// consecutive pair.
func GrowthSeries(incomes []models.IncomeStatement) []float64 {
	if len(incomes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(incomes)-1)
	for i := 1; i < len(incomes); i++ {
		out = append(out, GrowthRate(models.Val(incomes[i].Revenue), models.Val(incomes[i-1].Revenue)))
	}
	return out
}
