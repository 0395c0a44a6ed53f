// Package valuation prices a linked model: FCFF discounted cash flow over
// the forecast period, WACC estimation from CAPM and the capital structure,
// and the price caps that keep garbage extractions from producing absurd
// target prices.
package valuation

import (
	"fmt"
	"log"
	"math"

	"finanalyzer/pkg/core/calc"
	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

// Share counts below this are assumed to be reported in millions: no listed
// company has a float this small, so the unit was lost during extraction.
const sharesMillionsFloor = 20_000

// ComputeDCF runs a two-stage discounted cash flow over the model's forecast
// period: per-year free cash flow to the firm discounted at WACC, a
// Gordon-growth terminal value, and a net-debt bridge from enterprise to
// equity value. The model itself is not mutated.
func ComputeDCF(m *models.LinkedModel, cfg config.Config) (*models.DCFValuation, error) {
	if len(m.ForecastIncomeStatements) == 0 || len(m.ForecastBalanceSheets) == 0 || len(m.ForecastCashFlows) == 0 {
		return nil, errs.Valuation("no forecast periods to value", map[string]interface{}{
			"company": m.CompanyName,
		})
	}

	log.Printf("[VALUATION] calculating DCF for %s", m.CompanyName)

	wacc := EstimateWACC(m)

	growth := m.Assumptions.TerminalGrowthRate
	if growth == 0 {
		growth = 0.02
	}
	taxRate := m.Assumptions.TaxRate
	if taxRate == 0 {
		taxRate = 0.21
	}

	n := len(m.ForecastIncomeStatements)
	if len(m.ForecastBalanceSheets) < n {
		n = len(m.ForecastBalanceSheets)
	}
	if len(m.ForecastCashFlows) < n {
		n = len(m.ForecastCashFlows)
	}

	var warnings []string

	// Working-capital deltas start from the last actual balance sheet.
	prevBS := m.LastHistoricalBalance()
	yearData := make([]models.DCFYearData, 0, n)
	sumPV := 0.0
	for i := 0; i < n; i++ {
		inc := &m.ForecastIncomeStatements[i]
		bs := &m.ForecastBalanceSheets[i]
		cf := &m.ForecastCashFlows[i]

		// 1. Unlevered earnings.
		ebit := models.Val(inc.OperatingIncome)
		taxExpense := ebit * taxRate
		nopat := ebit - taxExpense

		// 2. Reinvestment: add back D&A, deduct capex and the NWC build.
		da := models.Val(cf.DepreciationAmortization)
		capex := math.Abs(models.Val(cf.CapitalExpenditures))
		nwc := models.Val(bs.TotalCurrentAssets) - models.Val(bs.TotalCurrentLiabilities)
		prevNWC := 0.0
		if prevBS != nil {
			prevNWC = models.Val(prevBS.TotalCurrentAssets) - models.Val(prevBS.TotalCurrentLiabilities)
		}
		changeInNWC := nwc - prevNWC

		fcf := nopat + da - capex - changeInNWC

		// 3. Discounting.
		discountFactor := 1.0 / math.Pow(1.0+wacc, float64(i+1))
		pv := fcf * discountFactor
		sumPV += pv

		yearData = append(yearData, models.DCFYearData{
			Year:                     models.PeriodYear(inc.PeriodEnd, m.BaseYear+i+1),
			EBIT:                     ebit,
			TaxExpense:               taxExpense,
			NOPAT:                    nopat,
			DepreciationAmortization: da,
			Capex:                    capex,
			ChangeInNWC:              changeInNWC,
			FreeCashFlow:             fcf,
			DiscountFactor:           discountFactor,
			PVOfFCF:                  pv,
		})

		prevBS = bs
	}

	// 4. Terminal value. The perpetuity explodes when WACC approaches the
	// terminal growth rate, so widen the spread before capitalizing. The
	// per-year present values above keep the original rate.
	lastFCF := yearData[len(yearData)-1].FreeCashFlow
	if wacc <= growth+0.005 {
		wacc = growth + 0.02
		msg := fmt.Sprintf("Adjusted WACC to %.1f%% to prevent DCF explosion.", wacc*100)
		warnings = append(warnings, msg)
		log.Printf("[VALUATION] %s", msg)
	}
	terminalValue := calc.TerminalValueGordonGrowth(lastFCF*(1.0+growth), wacc, growth)
	pvTerminalValue := calc.PresentValue(terminalValue, wacc, len(yearData))

	// 5. Enterprise value down to equity.
	enterpriseValue := sumPV + pvTerminalValue

	netDebt := 0.0
	if bs := m.LastHistoricalBalance(); bs != nil {
		debt := models.Val(bs.ShortTermDebt) + models.Val(bs.LongTermDebt)
		netDebt = debt - models.Val(bs.CashAndEquivalents)
	}

	equityValue := enterpriseValue - netDebt
	if equityValue < 0 {
		msg := fmt.Sprintf("Calculated negative equity value: %.0f. Clamping to 0 for valuation.", equityValue)
		warnings = append(warnings, msg)
		log.Printf("[VALUATION] %s", msg)
		equityValue = 0
	}

	shares := resolveShares(m)
	if shares > 0 && shares < sharesMillionsFloor {
		rescaled := shares * 1e6
		log.Printf("[VALUATION] share count %.2f looks like millions, rescaling to %.0f", shares, rescaled)
		shares = rescaled
	}

	impliedPrice := 0.0
	if shares > 0 {
		impliedPrice = equityValue / shares
	}

	log.Printf("[VALUATION] DCF: equity value=$%.0fM shares=%.1fM implied price=$%.2f",
		equityValue/1e6, shares/1e6, impliedPrice)

	// An implied price an order of magnitude above the quote means a unit
	// mismatch survived extraction; cap rather than publish it.
	if impliedPrice > cfg.Thresholds.MaxReasonableStockPrice {
		if m.MarketData != nil && m.MarketData.CurrentPrice != nil && *m.MarketData.CurrentPrice > 0 &&
			impliedPrice > *m.MarketData.CurrentPrice*10 {
			msg := fmt.Sprintf("Target price %.2f seems unrealistic. Capping.", impliedPrice)
			warnings = append(warnings, msg)
			log.Printf("[VALUATION] %s", msg)
			impliedPrice = *m.MarketData.CurrentPrice * 2.0
		}
	}

	var currentPrice, upside *float64
	if m.MarketData != nil && m.MarketData.CurrentPrice != nil && *m.MarketData.CurrentPrice > 0 {
		currentPrice = m.MarketData.CurrentPrice
		if impliedPrice > 0 {
			upside = models.Ptr(impliedPrice / *currentPrice - 1)
		}
	}

	return &models.DCFValuation{
		ForecastPeriodFCF:    yearData,
		SumPVFCF:             sumPV,
		TerminalValue:        terminalValue,
		PVTerminalValue:      pvTerminalValue,
		EnterpriseValue:      enterpriseValue,
		NetDebt:              netDebt,
		EquityValue:          equityValue,
		SharesOutstanding:    shares,
		ImpliedPricePerShare: impliedPrice,
		CurrentPrice:         currentPrice,
		Upside:               upside,
		WACCUsed:             wacc,
		TerminalGrowthUsed:   growth,
		Warnings:             warnings,
	}, nil
}

// resolveShares walks the fallback chain for a usable share count: the
// market snapshot first, then the latest historical filing, then the
// forecast tail.
func resolveShares(m *models.LinkedModel) float64 {
	if m.MarketData != nil && m.MarketData.SharesOutstanding != nil && *m.MarketData.SharesOutstanding > 0 {
		return *m.MarketData.SharesOutstanding
	}
	if inc := m.LastHistoricalIncome(); inc != nil {
		if s := models.Val(inc.SharesOutstandingDiluted); s > 0 {
			return s
		}
		if s := models.Val(inc.SharesOutstandingBasic); s > 0 {
			return s
		}
	}
	if len(m.ForecastIncomeStatements) > 0 {
		inc := &m.ForecastIncomeStatements[len(m.ForecastIncomeStatements)-1]
		if s := models.Val(inc.SharesOutstandingDiluted); s > 0 {
			return s
		}
		if s := models.Val(inc.SharesOutstandingBasic); s > 0 {
			return s
		}
	}
	return 0
}
