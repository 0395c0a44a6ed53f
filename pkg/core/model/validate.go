package model

import (
	"fmt"
	"log"
	"math"
	"sort"

	"finanalyzer/pkg/models"
)

// Roll-forward tolerances. The flat amounts absorb rounding in scaled
// figures; the relative ones absorb what filings bury in the notes
// (disposals, impairments, FX on PPE; buybacks and issuance on equity).
const (
	reTolerancePct     = 0.05
	ppeTolerancePct    = 0.15
	ppeAbsTolerance    = 1_000_000
	equityTolerancePct = 0.10
)

// validateLinkages runs the cross-statement accounting checks over the
// model's historical periods, sorted by period end. The balance-sheet
// identity, retained-earnings roll-forward and cash roll-forward decide the
// balanced flag; the PPE roll-forward only appends an error and the equity
// bridge only logs, because both legitimately drift on real filings.
func (e *Engine) validateLinkages(m *models.LinkedModel) (bool, []string) {
	incomes := make([]models.IncomeStatement, len(m.HistoricalIncomeStatements))
	copy(incomes, m.HistoricalIncomeStatements)
	sort.SliceStable(incomes, func(i, j int) bool { return incomes[i].PeriodEnd < incomes[j].PeriodEnd })

	sheets := make([]models.BalanceSheet, len(m.HistoricalBalanceSheets))
	copy(sheets, m.HistoricalBalanceSheets)
	sort.SliceStable(sheets, func(i, j int) bool { return sheets[i].PeriodEnd < sheets[j].PeriodEnd })

	cashflows := make([]models.CashFlowStatement, len(m.HistoricalCashFlows))
	copy(cashflows, m.HistoricalCashFlows)
	sort.SliceStable(cashflows, func(i, j int) bool { return cashflows[i].PeriodEnd < cashflows[j].PeriodEnd })

	valid := true
	var verrs []string

	for i := range sheets {
		curr := &sheets[i]

		if msg, ok := e.checkBalanceSheetIdentity(curr); !ok {
			verrs = append(verrs, msg)
			valid = false
		}

		if i == 0 {
			continue
		}
		prev := &sheets[i-1]

		inc := matchIncome(incomes, curr.PeriodEnd)
		cf := matchCashFlow(cashflows, curr.PeriodEnd)
		if inc == nil || cf == nil {
			continue
		}

		if msg, ok := checkRERollforward(prev, curr, inc, cf); !ok {
			verrs = append(verrs, msg)
			valid = false
		}
		if msg, ok := checkCashRollforward(prev, curr, cf); !ok {
			verrs = append(verrs, msg)
			valid = false
		}
		// Advisory: disposals and impairments are rarely extractable, so a
		// PPE gap is recorded without failing the model.
		if msg, ok := checkPPERollforward(prev, curr, inc, cf); !ok {
			verrs = append(verrs, msg)
		}
		checkEquityBridge(prev, curr, inc, cf)
	}

	return valid, verrs
}

// checkBalanceSheetIdentity verifies Assets = Liabilities + Equity.
func (e *Engine) checkBalanceSheetIdentity(bs *models.BalanceSheet) (string, bool) {
	assets := models.Val(bs.TotalAssets)
	expected := models.Val(bs.TotalLiabilities) + models.Val(bs.TotalShareholdersEquity)

	diff := assets - expected
	if math.Abs(diff) > e.cfg.Thresholds.BalanceTolerance {
		return fmt.Sprintf("BS Identity Mismatch %d: Assets ($%.0f) != L+E ($%.0f). Gap: $%.0f",
			models.PeriodYear(bs.PeriodEnd, bs.FiscalYear), assets, expected, diff), false
	}
	return "", true
}

// checkRERollforward verifies End RE = Beg RE + Net Income - Dividends.
// Dividends enter as an absolute value regardless of the filing's sign
// convention for the cash outflow.
func checkRERollforward(prev, curr *models.BalanceSheet, inc *models.IncomeStatement, cf *models.CashFlowStatement) (string, bool) {
	begRE := models.Val(prev.RetainedEarnings)
	endRE := models.Val(curr.RetainedEarnings)
	ni := models.Val(inc.NetIncome)
	div := math.Abs(models.Val(cf.DividendsPaid))

	expected := begRE + ni - div
	diff := endRE - expected

	if math.Abs(diff) > math.Abs(endRE)*reTolerancePct+1000 {
		return fmt.Sprintf("RE Rollforward %d: Beg %.0f + NI %.0f - Div %.0f != End %.0f (Diff: %.0f)",
			models.PeriodYear(curr.PeriodEnd, curr.FiscalYear), begRE, ni, div, endRE, diff), false
	}
	return "", true
}

// checkCashRollforward verifies End Cash = Beg Cash + Net Change. A missing
// or zero net-change line is rebuilt from the three section subtotals.
func checkCashRollforward(prev, curr *models.BalanceSheet, cf *models.CashFlowStatement) (string, bool) {
	begCash := models.Val(prev.CashAndEquivalents)
	endCash := models.Val(curr.CashAndEquivalents)

	netChange := models.Val(cf.NetChangeInCash)
	if netChange == 0 {
		netChange = models.Val(cf.CashFromOperations) +
			models.Val(cf.CashFromInvesting) +
			models.Val(cf.CashFromFinancing)
	}

	expected := begCash + netChange
	diff := endCash - expected

	if math.Abs(diff) > 1000 {
		return fmt.Sprintf("Cash Reconciliation Error %d: Beg Cash ($%.0f) + Net Change ($%.0f) = $%.0f vs BS Cash ($%.0f). Gap: $%.0f",
			models.PeriodYear(curr.PeriodEnd, curr.FiscalYear), begCash, netChange, expected, endCash, diff), false
	}
	return "", true
}

// checkPPERollforward verifies End PPE = Beg PPE + Capex - D&A.
func checkPPERollforward(prev, curr *models.BalanceSheet, inc *models.IncomeStatement, cf *models.CashFlowStatement) (string, bool) {
	begPPE := models.Val(prev.PropertyPlantEquipmentNet)
	endPPE := models.Val(curr.PropertyPlantEquipmentNet)
	capex := math.Abs(models.Val(cf.CapitalExpenditures))
	da := models.Val(inc.DepreciationAmortization)

	expected := begPPE + capex - da
	diff := endPPE - expected

	if math.Abs(diff) > math.Abs(endPPE)*ppeTolerancePct+ppeAbsTolerance {
		return fmt.Sprintf("PPE Rollforward %d: Beg %.0f + Capex %.0f - D&A %.0f != End %.0f (Diff: %.0f)",
			models.PeriodYear(curr.PeriodEnd, curr.FiscalYear), begPPE, capex, da, endPPE, diff), false
	}
	return "", true
}

// checkEquityBridge compares End Equity against Beg Equity + NI - Div.
// Issuance and buybacks land in the gap, so this never fails the model; a
// large gap is only logged for the analyst.
func checkEquityBridge(prev, curr *models.BalanceSheet, inc *models.IncomeStatement, cf *models.CashFlowStatement) {
	begEq := models.Val(prev.TotalShareholdersEquity)
	endEq := models.Val(curr.TotalShareholdersEquity)
	ni := models.Val(inc.NetIncome)
	div := math.Abs(models.Val(cf.DividendsPaid))

	diff := endEq - (begEq + ni - div)
	if math.Abs(diff) > math.Abs(endEq)*equityTolerancePct {
		log.Printf("[MODEL] equity bridge gap %.0f in %d (issuance/buybacks untracked)",
			diff, models.PeriodYear(curr.PeriodEnd, curr.FiscalYear))
	}
}

func matchIncome(incomes []models.IncomeStatement, periodEnd string) *models.IncomeStatement {
	for i := range incomes {
		if incomes[i].PeriodEnd == periodEnd {
			return &incomes[i]
		}
	}
	return nil
}

func matchCashFlow(cashflows []models.CashFlowStatement, periodEnd string) *models.CashFlowStatement {
	for i := range cashflows {
		if cashflows[i].PeriodEnd == periodEnd {
			return &cashflows[i]
		}
	}
	return nil
}

