package forecast

import (
	"math"

	"finanalyzer/pkg/core/calc"
	"finanalyzer/pkg/models"
)

// projectIncomeStatement rolls one income statement forward by a year using
// the driver set: geometric revenue, margin-split COGS and opex, flat tax,
// and D&A drifting at half the revenue growth rate since the asset base lags
// revenue.
func (e *Engine) projectIncomeStatement(prev *models.IncomeStatement) models.IncomeStatement {
	a := e.model.Assumptions
	start, end := nextPeriod(prev.PeriodEnd, prev.FiscalYear)

	// 1. Revenue is the key driver.
	revenue := calc.ProjectRevenue(models.Val(prev.Revenue), a.RevenueGrowthRate)

	// 2. Margin splits.
	grossProfit := revenue * a.GrossMargin
	costOfRevenue := revenue - grossProfit
	operatingIncome := revenue * a.OperatingMargin
	operatingExpenses := grossProfit - operatingIncome

	// 3. D&A.
	da := models.Val(prev.DepreciationAmortization)
	if da > 0 {
		da *= 1 + a.RevenueGrowthRate*0.5
	}

	// 4. Below the line: interest carried flat from the prior period.
	interestIncome := models.Val(prev.InterestIncome)
	interestExpense := models.Val(prev.InterestExpense)
	incomeBeforeTax := operatingIncome + interestIncome - math.Abs(interestExpense)
	taxExpense := incomeBeforeTax * a.TaxRate
	netIncome := incomeBeforeTax - taxExpense

	out := models.IncomeStatement{
		PeriodStart:              start,
		PeriodEnd:                end,
		FiscalYear:               prev.FiscalYear + 1,
		Currency:                 prev.Currency,
		Revenue:                  models.Ptr(revenue),
		CostOfRevenue:            models.Ptr(costOfRevenue),
		GrossProfit:              models.Ptr(grossProfit),
		OperatingExpenses:        models.Ptr(operatingExpenses),
		OperatingIncome:          models.Ptr(operatingIncome),
		EBITDA:                   models.Ptr(operatingIncome + da),
		DepreciationAmortization: models.Ptr(da),
		EBIT:                     models.Ptr(operatingIncome),
		InterestIncome:           models.Ptr(interestIncome),
		InterestExpense:          models.Ptr(interestExpense),
		IncomeBeforeTax:          models.Ptr(incomeBeforeTax),
		IncomeTaxExpense:         models.Ptr(taxExpense),
		EffectiveTaxRate:         models.Ptr(a.TaxRate),
		NetIncome:                models.Ptr(netIncome),
	}

	// Shares assumed constant; EPS follows net income.
	shares := models.Val(prev.SharesOutstandingDiluted)
	if shares == 0 {
		shares = models.Val(prev.SharesOutstandingBasic)
	}
	if shares != 0 {
		out.SharesOutstandingDiluted = models.Ptr(shares)
		out.DilutedEPS = models.Ptr(netIncome / shares)
	}

	return out
}

// projectBalanceSheet builds the period-end snapshot matching a projected
// income statement. Working capital comes from the day-count drivers, PPE
// rolls forward by capex less D&A, slow-moving items drift at damped growth,
// debt and paid-in capital stay flat, and retained earnings rolls forward
// net of the payout. Any residual imbalance is plugged into cash so the
// statement balances by construction.
func (e *Engine) projectBalanceSheet(prev *models.BalanceSheet, income *models.IncomeStatement) models.BalanceSheet {
	a := e.model.Assumptions
	g := a.RevenueGrowthRate

	revenue := models.Val(income.Revenue)
	cogs := models.Val(income.CostOfRevenue)

	// 1. Working capital from the day-count drivers.
	accountsReceivable := revenue / 365 * float64(a.DaysSalesOutstanding)
	inventory := cogs / 365 * float64(a.DaysInventoryOutstanding)
	accountsPayable := cogs / 365 * float64(a.DaysPayableOutstanding)

	// 2. Remaining current assets.
	cash := models.Val(prev.CashAndEquivalents)
	prepaid := models.Val(prev.PrepaidExpenses) * (1 + g)
	otherCurrentAssets := models.Val(prev.OtherCurrentAssets) * (1 + g)

	totalCurrentAssets := cash +
		models.Val(prev.ShortTermInvestments) +
		accountsReceivable +
		inventory +
		prepaid +
		otherCurrentAssets

	// 3. PPE rolls forward: beginning + capex - D&A.
	capex := revenue * a.CapexPercentOfRevenue
	da := models.Val(income.DepreciationAmortization)
	ppeNet := models.Val(prev.PropertyPlantEquipmentNet) + capex - da

	// 4. Slow-moving long-term assets drift at damped growth; goodwill stays
	// flat absent an acquisition.
	intangibles := models.Val(prev.IntangibleAssets) * (1 + g*0.5)
	goodwill := models.Val(prev.Goodwill)
	otherNonCurrentAssets := models.Val(prev.OtherNonCurrentAssets) * (1 + g*0.3)

	totalNonCurrentAssets := ppeNet + intangibles + goodwill +
		models.Val(prev.LongTermInvestments) + otherNonCurrentAssets

	// 5. Liabilities: debt flat, operating liabilities grow with revenue.
	shortTermDebt := models.Val(prev.ShortTermDebt)
	accrued := models.Val(prev.AccruedExpenses) * (1 + g)
	deferredRevenue := models.Val(prev.DeferredRevenue) * (1 + g)
	otherCurrentLiabilities := models.Val(prev.OtherCurrentLiabilities) * (1 + g)

	totalCurrentLiabilities := accountsPayable + shortTermDebt + accrued +
		deferredRevenue + otherCurrentLiabilities

	longTermDebt := models.Val(prev.LongTermDebt)
	deferredTaxLiabilities := models.Val(prev.DeferredTaxLiabilities) * (1 + g*0.2)
	otherNonCurrentLiabilities := models.Val(prev.OtherNonCurrentLiabilities) * (1 + g*0.2)

	totalNonCurrentLiabilities := longTermDebt + deferredTaxLiabilities + otherNonCurrentLiabilities
	totalLiabilities := totalCurrentLiabilities + totalNonCurrentLiabilities

	// 6. Equity: retained earnings roll forward net of dividends, the rest
	// carries flat.
	netIncome := models.Val(income.NetIncome)
	dividends := 0.0
	if a.DividendPayoutRatio != 0 {
		dividends = netIncome * a.DividendPayoutRatio
	}
	retainedEarnings := models.Val(prev.RetainedEarnings) + netIncome - dividends

	commonStock := models.Val(prev.CommonStock)
	apic := models.Val(prev.AdditionalPaidInCapital)
	treasury := models.Val(prev.TreasuryStock)
	aoci := models.Val(prev.AccumulatedOtherComprehensiveIncome)

	totalEquity := commonStock + apic + retainedEarnings + treasury + aoci

	totalAssets := totalCurrentAssets + totalNonCurrentAssets

	// 7. Close through cash: the residual between the two sides lands in
	// cash so the identity holds exactly.
	if diff := (totalLiabilities + totalEquity) - totalAssets; math.Abs(diff) > 1 {
		cash += diff
		totalCurrentAssets += diff
		totalAssets += diff
	}

	return models.BalanceSheet{
		PeriodEnd:  income.PeriodEnd,
		FiscalYear: income.FiscalYear,
		Currency:   prev.Currency,

		CashAndEquivalents:   models.Ptr(cash),
		ShortTermInvestments: clonePtr(prev.ShortTermInvestments),
		AccountsReceivable:   models.Ptr(accountsReceivable),
		Inventory:            models.Ptr(inventory),
		PrepaidExpenses:      models.Ptr(prepaid),
		OtherCurrentAssets:   models.Ptr(otherCurrentAssets),
		TotalCurrentAssets:   models.Ptr(totalCurrentAssets),

		PropertyPlantEquipmentNet: models.Ptr(ppeNet),
		IntangibleAssets:          models.Ptr(intangibles),
		Goodwill:                  models.Ptr(goodwill),
		LongTermInvestments:       clonePtr(prev.LongTermInvestments),
		OtherNonCurrentAssets:     models.Ptr(otherNonCurrentAssets),
		TotalNonCurrentAssets:     models.Ptr(totalNonCurrentAssets),

		TotalAssets: models.Ptr(totalAssets),

		AccountsPayable:         models.Ptr(accountsPayable),
		ShortTermDebt:           models.Ptr(shortTermDebt),
		AccruedExpenses:         models.Ptr(accrued),
		DeferredRevenue:         models.Ptr(deferredRevenue),
		OtherCurrentLiabilities: models.Ptr(otherCurrentLiabilities),
		TotalCurrentLiabilities: models.Ptr(totalCurrentLiabilities),

		LongTermDebt:               models.Ptr(longTermDebt),
		DeferredTaxLiabilities:     models.Ptr(deferredTaxLiabilities),
		OtherNonCurrentLiabilities: models.Ptr(otherNonCurrentLiabilities),
		TotalNonCurrentLiabilities: models.Ptr(totalNonCurrentLiabilities),

		TotalLiabilities: models.Ptr(totalLiabilities),

		CommonStock:                         models.Ptr(commonStock),
		AdditionalPaidInCapital:             models.Ptr(apic),
		RetainedEarnings:                    models.Ptr(retainedEarnings),
		TreasuryStock:                       models.Ptr(treasury),
		AccumulatedOtherComprehensiveIncome: models.Ptr(aoci),
		TotalShareholdersEquity:             models.Ptr(totalEquity),
	}
}

// projectCashFlow derives the cash flow statement from the projected income
// statement and the balance-sheet deltas, which keeps the three statements
// internally consistent by construction.
func (e *Engine) projectCashFlow(income *models.IncomeStatement, prevBS, bs *models.BalanceSheet) models.CashFlowStatement {
	a := e.model.Assumptions

	// 1. Operating: net income plus D&A, adjusted for the working-capital
	// build implied by the balance-sheet deltas.
	netIncome := models.Val(income.NetIncome)
	da := models.Val(income.DepreciationAmortization)

	changeReceivables := models.Val(bs.AccountsReceivable) - models.Val(prevBS.AccountsReceivable)
	changeInventory := models.Val(bs.Inventory) - models.Val(prevBS.Inventory)
	changePayables := models.Val(bs.AccountsPayable) - models.Val(prevBS.AccountsPayable)
	changesInWC := -changeReceivables - changeInventory + changePayables

	cashFromOperations := netIncome + da + changesInWC

	// 2. Investing: capex at the driver rate, reported as an outflow.
	capex := -a.CapexPercentOfRevenue * models.Val(income.Revenue)
	cashFromInvesting := capex

	// 3. Financing: dividends at the payout ratio.
	dividends := 0.0
	if a.DividendPayoutRatio != 0 {
		dividends = -netIncome * a.DividendPayoutRatio
	}
	cashFromFinancing := dividends

	netChange := cashFromOperations + cashFromInvesting + cashFromFinancing

	return models.CashFlowStatement{
		PeriodStart: income.PeriodStart,
		PeriodEnd:   income.PeriodEnd,
		FiscalYear:  income.FiscalYear,
		Currency:    income.Currency,

		NetIncome:                models.Ptr(netIncome),
		DepreciationAmortization: models.Ptr(da),
		ChangesInWorkingCapital:  models.Ptr(changesInWC),
		ChangeInReceivables:      models.Ptr(changeReceivables),
		ChangeInInventory:        models.Ptr(changeInventory),
		ChangeInPayables:         models.Ptr(changePayables),
		CashFromOperations:       models.Ptr(cashFromOperations),

		CapitalExpenditures: models.Ptr(capex),
		CashFromInvesting:   models.Ptr(cashFromInvesting),

		DividendsPaid:     models.Ptr(dividends),
		CashFromFinancing: models.Ptr(cashFromFinancing),

		NetChangeInCash:       models.Ptr(netChange),
		CashBeginningOfPeriod: models.Ptr(models.Val(prevBS.CashAndEquivalents)),
		CashEndOfPeriod:       models.Ptr(models.Val(bs.CashAndEquivalents)),
	}
}

// clonePtr copies an optional value so forecast periods never alias the
// statements they were seeded from. Nil stays nil.
func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
