package valuation

import (
	"finanalyzer/pkg/core/calc"
	"finanalyzer/pkg/models"
)

// EstimateWACC resolves the discount rate for a model. An explicit WACC on
// the assumptions wins (sensitivity runs set it directly). Otherwise cost of
// equity comes from CAPM and the capital weights from the latest historical
// balance sheet, preferring market capitalization over book equity when a
// quote is attached. Zero-valued inputs fall back to conservative constants
// so a sparse model still yields a usable rate.
func EstimateWACC(m *models.LinkedModel) float64 {
	a := m.Assumptions

	if a.WACC > 0 {
		return a.WACC
	}

	// Cost of equity (CAPM).
	rf := a.RiskFreeRate
	if rf == 0 {
		rf = 0.04
	}
	erp := a.EquityRiskPremium
	if erp == 0 {
		erp = 0.05
	}
	beta := 0.0
	if m.MarketData != nil && m.MarketData.Beta != nil {
		beta = *m.MarketData.Beta
	}
	if beta == 0 {
		beta = a.Beta
	}
	if beta == 0 {
		beta = 1.0
	}
	costOfEquity := calc.CostOfEquityCAPM(rf, beta, erp)

	// Cost of debt.
	costOfDebt := a.CostOfDebt
	if costOfDebt == 0 {
		costOfDebt = 0.05
	}
	taxRate := a.TaxRate
	if taxRate == 0 {
		taxRate = 0.21
	}

	// Capital structure off the latest balance sheet.
	debt := 0.0
	equity := 1e9
	if bs := m.LastHistoricalBalance(); bs != nil {
		debt = models.Val(bs.ShortTermDebt) + models.Val(bs.LongTermDebt)
		if book := models.Val(bs.TotalShareholdersEquity); book != 0 {
			equity = book
		}
	}
	if m.MarketData != nil && m.MarketData.MarketCap != nil && *m.MarketData.MarketCap != 0 {
		equity = *m.MarketData.MarketCap
	}

	weightEquity := 1.0
	weightDebt := 0.0
	if total := debt + equity; total > 0 {
		weightEquity = equity / total
		weightDebt = 1.0 - weightEquity
	}

	wacc := calc.WACC(costOfDebt, taxRate, weightDebt, costOfEquity, weightEquity)

	// A near-zero estimate would inflate every present value downstream.
	if wacc < 0.05 {
		wacc = 0.085
	}
	return wacc
}
