// Package model builds the linked three-statement model. It forces the
// accounting identities that tie the statements together (net income and
// D&A flow from the income statement into the cash flow, operating cash is
// a component sum), derives forward assumptions from the last historical
// period, plugs residual balance-sheet gaps into equity with an audit
// trail, and validates the cross-period roll-forwards.
package model

import (
	"fmt"
	"log"
	"math"
	"time"

	"finanalyzer/pkg/core/calc"
	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

// Engine links one company's statements into a balanced model.
type Engine struct {
	cfg        config.Config
	statements *models.FinancialStatements
	model      *models.LinkedModel
}

// New creates an Engine over extracted statements.
func New(cfg config.Config, statements *models.FinancialStatements) *Engine {
	return &Engine{cfg: cfg, statements: statements}
}

// BuildLinkedModel assembles the linked model from historical data: force
// linkages, validate inputs, compute historical ratios, derive assumptions,
// plug the balance sheet and run the roll-forward checks. The statement
// slices are shared with the returned model, so the forced linkages and
// equity plugs are visible on the input aggregate as well.
func (e *Engine) BuildLinkedModel() (*models.LinkedModel, error) {
	log.Printf("[MODEL] building linked 3-statement model for %s", e.statements.CompanyName)

	e.forceAccountingLinkages()

	if err := e.validateStatements(); err != nil {
		return nil, err
	}

	ratios := calc.RatioSeries(e.statements.IncomeStatements, e.statements.BalanceSheets)

	now := time.Now().UTC()
	m := &models.LinkedModel{
		CompanyName:        e.statements.CompanyName,
		Ticker:             e.statements.Ticker,
		BaseYear:           e.statements.FiscalYear,
		ForecastYears:      0,
		ReportType:         e.statements.ReportType,
		AccountingStandard: e.statements.AccountingStandard,

		HistoricalIncomeStatements: e.statements.IncomeStatements,
		HistoricalBalanceSheets:    e.statements.BalanceSheets,
		HistoricalCashFlows:        e.statements.CashFlowStatements,

		HistoricalRatios: ratios,
		Assumptions:      e.deriveAssumptions(),

		CreatedAt: now,
		UpdatedAt: now,
	}

	e.balance(m)

	valid, verrs := e.validateLinkages(m)
	m.IsBalanced = valid
	m.ValidationErrors = verrs

	if valid {
		log.Printf("[MODEL] model linked and balanced (%d periods)", len(m.HistoricalBalanceSheets))
	} else {
		log.Printf("[MODEL] model has %d validation errors", len(verrs))
	}

	e.model = m
	return m, nil
}

// forceAccountingLinkages syncs values across statements before modeling.
// Net income and D&A on the cash flow must equal the income statement, and
// the operating and total cash lines are recomputed as component sums so
// later checks test the extracted figures, not stale subtotals.
func (e *Engine) forceAccountingLinkages() {
	for i := range e.statements.IncomeStatements {
		if i >= len(e.statements.CashFlowStatements) {
			break
		}
		inc := &e.statements.IncomeStatements[i]
		cf := &e.statements.CashFlowStatements[i]

		cf.NetIncome = clone(inc.NetIncome)
		cf.DepreciationAmortization = clone(inc.DepreciationAmortization)
		cf.CashFromOperations = models.Ptr(
			models.Val(cf.NetIncome) +
				models.Val(cf.DepreciationAmortization) +
				models.Val(cf.ChangesInWorkingCapital))
		cf.NetChangeInCash = models.Ptr(
			models.Val(cf.CashFromOperations) +
				models.Val(cf.CashFromInvesting) +
				models.Val(cf.CashFromFinancing))
	}
}

// validateStatements confirms every statement type has at least one period.
func (e *Engine) validateStatements() error {
	if len(e.statements.IncomeStatements) == 0 {
		return errs.Validation("no income statements provided", nil)
	}
	if len(e.statements.BalanceSheets) == 0 {
		return errs.Validation("no balance sheets provided", nil)
	}
	if len(e.statements.CashFlowStatements) == 0 {
		return errs.Validation("no cash flow statements provided", nil)
	}
	return nil
}

// deriveAssumptions reads the forward drivers off the last historical
// period. Margins and cadence come from the data when present, from the
// configured defaults when not; growth and the capital-market inputs always
// come from config. Call only after validateStatements.
func (e *Engine) deriveAssumptions() models.ForecastAssumptions {
	def := e.cfg.Defaults
	thr := e.cfg.Thresholds

	lastInc := e.statements.LatestIncomeStatement()
	lastBS := e.statements.LatestBalanceSheet()
	lastCF := e.statements.LatestCashFlow()

	rev := models.Val(lastInc.Revenue)
	ni := models.Val(lastInc.NetIncome)
	cogs := models.Val(lastInc.CostOfRevenue)

	grossMargin := def.GrossMargin
	opMargin := def.OperatingMargin
	netMargin := def.NetMargin
	if rev > 0 {
		if gp := models.Val(lastInc.GrossProfit); gp != 0 {
			grossMargin = gp / rev
		}
		if oi := models.Val(lastInc.OperatingIncome); oi != 0 {
			opMargin = oi / rev
		}
		netMargin = ni / rev
	}
	grossMargin = math.Max(thr.MinGrossMargin, math.Min(thr.MaxGrossMargin, grossMargin))
	opMargin = math.Max(thr.MinOperatingMargin, math.Min(thr.MaxOperatingMargin, opMargin))

	capexPct := def.CapexPercentOfRevenue
	if capex := models.Val(lastCF.CapitalExpenditures); capex != 0 && rev > 0 {
		capexPct = math.Abs(capex) / rev
		capexPct = math.Max(thr.MinCapexPercent, math.Min(thr.MaxCapexPercent, capexPct))
	}

	divPayout := 0.0
	if div := models.Val(lastCF.DividendsPaid); div != 0 && ni > 0 {
		divPayout = math.Min(1.0, math.Abs(div)/ni)
	}

	dso := def.DaysSalesOutstanding
	dio := def.DaysInventoryOutstanding
	dpo := def.DaysPayableOutstanding
	if ar := models.Val(lastBS.AccountsReceivable); ar != 0 && rev > 0 {
		dso = int((ar / rev) * 365)
	}
	if inv := models.Val(lastBS.Inventory); inv != 0 && cogs > 0 {
		dio = int((inv / cogs) * 365)
	}
	if ap := models.Val(lastBS.AccountsPayable); ap != 0 && cogs > 0 {
		dpo = int((ap / cogs) * 365)
	}

	log.Printf("[MODEL] derived assumptions: gross=%.1f%% op=%.1f%% capex=%.1f%% payout=%.0f%%",
		grossMargin*100, opMargin*100, capexPct*100, divPayout*100)

	return models.ForecastAssumptions{
		RevenueGrowthRate: def.RevenueGrowthRate,

		GrossMargin:     grossMargin,
		OperatingMargin: opMargin,
		NetMargin:       netMargin,

		TaxRate: def.TaxRate,

		CapexPercentOfRevenue:    capexPct,
		DepreciationPercentOfPPE: def.DepreciationPercentOfPPE,

		DaysSalesOutstanding:     dso,
		DaysInventoryOutstanding: dio,
		DaysPayableOutstanding:   dpo,
		DividendPayoutRatio:      divPayout,

		RiskFreeRate:       def.RiskFreeRate,
		EquityRiskPremium:  def.EquityRiskPremium,
		Beta:               def.Beta,
		CostOfDebt:         def.CostOfDebt,
		TerminalGrowthRate: def.TerminalGrowthRate,

		Scenario: models.ScenarioBase,
	}
}

// balance forces the balance-sheet identity on every historical period and
// records each adjustment. The residual goes to equity, the least-bad home
// for an extraction gap, and every plug leaves an audit string.
func (e *Engine) balance(m *models.LinkedModel) {
	m.Adjustments = nil
	for i := range m.HistoricalBalanceSheets {
		bs := &m.HistoricalBalanceSheets[i]
		assets := models.Val(bs.TotalAssets)
		liab := models.Val(bs.TotalLiabilities)
		equity := models.Val(bs.TotalShareholdersEquity)

		diff := assets - (liab + equity)
		if math.Abs(diff) > e.cfg.Thresholds.BalanceTolerance {
			bs.TotalShareholdersEquity = models.Ptr(equity + diff)
			m.Adjustments = append(m.Adjustments, fmt.Sprintf(
				"Applied modeling plug of $%.0f to Equity in %d to force balance.",
				diff, models.PeriodYear(bs.PeriodEnd, bs.FiscalYear)))
			log.Printf("[MODEL] equity plug %.0f applied in %d", diff, models.PeriodYear(bs.PeriodEnd, bs.FiscalYear))
		}
	}
}

// clone copies an optional value so statement structs never alias.
func clone(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return models.Ptr(*p)
}
