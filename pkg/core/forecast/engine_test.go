package forecast

import (
	"math"
	"strings"
	"testing"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

func wantClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

// historicalModel builds a balanced single-period model with round numbers:
// revenue 1M at a 40%/20% margin structure, 535k book equity before the
// 450k retained earnings, and driver day counts of 73 so working capital
// lines come out at exactly one fifth of revenue or COGS.
func historicalModel() *models.LinkedModel {
	return &models.LinkedModel{
		CompanyName: "Example Corp",
		Ticker:      "EXC",
		BaseYear:    2023,
		HistoricalIncomeStatements: []models.IncomeStatement{{
			PeriodStart:              "2023-01-01",
			PeriodEnd:                "2023-12-31",
			FiscalYear:               2023,
			Revenue:                  models.Ptr(1_000_000.0),
			CostOfRevenue:            models.Ptr(600_000.0),
			GrossProfit:              models.Ptr(400_000.0),
			OperatingIncome:          models.Ptr(200_000.0),
			DepreciationAmortization: models.Ptr(50_000.0),
			InterestIncome:           models.Ptr(5_000.0),
			InterestExpense:          models.Ptr(10_000.0),
			NetIncome:                models.Ptr(150_000.0),
			SharesOutstandingDiluted: models.Ptr(100_000.0),
		}},
		HistoricalBalanceSheets: []models.BalanceSheet{{
			PeriodEnd:  "2023-12-31",
			FiscalYear: 2023,

			CashAndEquivalents: models.Ptr(200_000.0),
			AccountsReceivable: models.Ptr(180_000.0),
			Inventory:          models.Ptr(120_000.0),
			PrepaidExpenses:    models.Ptr(10_000.0),
			OtherCurrentAssets: models.Ptr(20_000.0),
			TotalCurrentAssets: models.Ptr(530_000.0),

			PropertyPlantEquipmentNet: models.Ptr(500_000.0),
			IntangibleAssets:          models.Ptr(40_000.0),
			Goodwill:                  models.Ptr(30_000.0),
			OtherNonCurrentAssets:     models.Ptr(10_000.0),
			TotalNonCurrentAssets:     models.Ptr(580_000.0),
			TotalAssets:               models.Ptr(1_110_000.0),

			AccountsPayable:         models.Ptr(100_000.0),
			ShortTermDebt:           models.Ptr(50_000.0),
			AccruedExpenses:         models.Ptr(30_000.0),
			DeferredRevenue:         models.Ptr(20_000.0),
			OtherCurrentLiabilities: models.Ptr(10_000.0),
			TotalCurrentLiabilities: models.Ptr(210_000.0),

			LongTermDebt:               models.Ptr(200_000.0),
			DeferredTaxLiabilities:     models.Ptr(10_000.0),
			OtherNonCurrentLiabilities: models.Ptr(5_000.0),
			TotalNonCurrentLiabilities: models.Ptr(215_000.0),
			TotalLiabilities:           models.Ptr(425_000.0),

			CommonStock:                         models.Ptr(100_000.0),
			AdditionalPaidInCapital:             models.Ptr(150_000.0),
			RetainedEarnings:                    models.Ptr(450_000.0),
			TreasuryStock:                       models.Ptr(-20_000.0),
			AccumulatedOtherComprehensiveIncome: models.Ptr(5_000.0),
			TotalShareholdersEquity:             models.Ptr(685_000.0),
		}},
		HistoricalCashFlows: []models.CashFlowStatement{{
			PeriodStart:              "2023-01-01",
			PeriodEnd:                "2023-12-31",
			FiscalYear:               2023,
			NetIncome:                models.Ptr(150_000.0),
			DepreciationAmortization: models.Ptr(50_000.0),
			CashFromOperations:       models.Ptr(200_000.0),
			CapitalExpenditures:      models.Ptr(-55_000.0),
			CashFromInvesting:        models.Ptr(-55_000.0),
			CashFromFinancing:        models.Ptr(-20_000.0),
			NetChangeInCash:          models.Ptr(125_000.0),
		}},
		Assumptions: models.ForecastAssumptions{
			RevenueGrowthRate:        0.10,
			GrossMargin:              0.40,
			OperatingMargin:          0.20,
			TaxRate:                  0.25,
			CapexPercentOfRevenue:    0.05,
			DaysSalesOutstanding:     73,
			DaysInventoryOutstanding: 73,
			DaysPayableOutstanding:   73,
			DividendPayoutRatio:      0.20,
			RiskFreeRate:             0.04,
			EquityRiskPremium:        0.055,
			Beta:                     1.0,
			CostOfDebt:               0.05,
			TerminalGrowthRate:       0.025,
			WACC:                     0.12,
			Scenario:                 models.ScenarioBase,
		},
	}
}

func TestForecastProjectsLinkedStatements(t *testing.T) {
	m := historicalModel()
	e := New(config.Default(), m)

	if _, err := e.Forecast(2, models.ScenarioBase); err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}

	if len(m.ForecastIncomeStatements) != 2 || len(m.ForecastBalanceSheets) != 2 || len(m.ForecastCashFlows) != 2 {
		t.Fatalf("forecast lengths = %d/%d/%d, want 2/2/2",
			len(m.ForecastIncomeStatements), len(m.ForecastBalanceSheets), len(m.ForecastCashFlows))
	}
	if m.ForecastYears != 2 {
		t.Errorf("ForecastYears = %d, want 2", m.ForecastYears)
	}

	inc := m.ForecastIncomeStatements[0]
	if inc.PeriodStart != "2024-01-01" || inc.PeriodEnd != "2024-12-31" {
		t.Errorf("period = %s..%s, want 2024-01-01..2024-12-31", inc.PeriodStart, inc.PeriodEnd)
	}
	if inc.FiscalYear != 2024 {
		t.Errorf("fiscal year = %d, want 2024", inc.FiscalYear)
	}
	wantClose(t, "revenue", models.Val(inc.Revenue), 1_100_000, 1e-6)
	wantClose(t, "gross profit", models.Val(inc.GrossProfit), 440_000, 1e-6)
	wantClose(t, "cost of revenue", models.Val(inc.CostOfRevenue), 660_000, 1e-6)
	wantClose(t, "operating income", models.Val(inc.OperatingIncome), 220_000, 1e-6)
	wantClose(t, "operating expenses", models.Val(inc.OperatingExpenses), 220_000, 1e-6)
	// 50,000 grown at half the 10% revenue growth
	wantClose(t, "d&a", models.Val(inc.DepreciationAmortization), 52_500, 1e-6)
	wantClose(t, "ebitda", models.Val(inc.EBITDA), 272_500, 1e-6)
	// 220,000 + 5,000 interest income - 10,000 interest expense
	wantClose(t, "income before tax", models.Val(inc.IncomeBeforeTax), 215_000, 1e-6)
	wantClose(t, "tax expense", models.Val(inc.IncomeTaxExpense), 53_750, 1e-6)
	wantClose(t, "net income", models.Val(inc.NetIncome), 161_250, 1e-6)
	wantClose(t, "diluted eps", models.Val(inc.DilutedEPS), 1.6125, 1e-9)
	wantClose(t, "shares", models.Val(inc.SharesOutstandingDiluted), 100_000, 1e-9)

	bs := m.ForecastBalanceSheets[0]
	// Day-count drivers at 73 days: one fifth of revenue or COGS.
	wantClose(t, "receivables", models.Val(bs.AccountsReceivable), 220_000, 1e-6)
	wantClose(t, "inventory", models.Val(bs.Inventory), 132_000, 1e-6)
	wantClose(t, "payables", models.Val(bs.AccountsPayable), 132_000, 1e-6)
	// 500,000 + capex 55,000 - D&A 52,500
	wantClose(t, "ppe", models.Val(bs.PropertyPlantEquipmentNet), 502_500, 1e-6)
	// Damped drift: intangibles at half growth, other NCA at 0.3x.
	wantClose(t, "intangibles", models.Val(bs.IntangibleAssets), 42_000, 1e-6)
	wantClose(t, "goodwill", models.Val(bs.Goodwill), 30_000, 1e-9)
	wantClose(t, "other nca", models.Val(bs.OtherNonCurrentAssets), 10_300, 1e-6)
	wantClose(t, "dtl", models.Val(bs.DeferredTaxLiabilities), 10_200, 1e-6)
	// 450,000 + 161,250 - 32,250 dividends
	wantClose(t, "retained earnings", models.Val(bs.RetainedEarnings), 579_000, 1e-6)
	wantClose(t, "total equity", models.Val(bs.TotalShareholdersEquity), 814_000, 1e-6)
	wantClose(t, "total liabilities", models.Val(bs.TotalLiabilities), 463_300, 1e-6)
	// The 107,500 that did not come from operations is plugged into cash.
	wantClose(t, "cash", models.Val(bs.CashAndEquivalents), 307_500, 1e-6)
	wantClose(t, "total current assets", models.Val(bs.TotalCurrentAssets), 692_500, 1e-6)
	wantClose(t, "total assets", models.Val(bs.TotalAssets), 1_277_300, 1e-6)

	identityGap := models.Val(bs.TotalAssets) - models.Val(bs.TotalLiabilities) - models.Val(bs.TotalShareholdersEquity)
	wantClose(t, "identity gap", identityGap, 0, 1e-6)

	cf := m.ForecastCashFlows[0]
	wantClose(t, "cf net income", models.Val(cf.NetIncome), 161_250, 1e-6)
	wantClose(t, "cf d&a", models.Val(cf.DepreciationAmortization), 52_500, 1e-6)
	wantClose(t, "change receivables", models.Val(cf.ChangeInReceivables), 40_000, 1e-6)
	wantClose(t, "change inventory", models.Val(cf.ChangeInInventory), 12_000, 1e-6)
	wantClose(t, "change payables", models.Val(cf.ChangeInPayables), 32_000, 1e-6)
	wantClose(t, "working capital changes", models.Val(cf.ChangesInWorkingCapital), -20_000, 1e-6)
	wantClose(t, "cash from operations", models.Val(cf.CashFromOperations), 193_750, 1e-6)
	wantClose(t, "capex", models.Val(cf.CapitalExpenditures), -55_000, 1e-6)
	wantClose(t, "dividends", models.Val(cf.DividendsPaid), -32_250, 1e-6)
	wantClose(t, "net change", models.Val(cf.NetChangeInCash), 106_500, 1e-6)
	wantClose(t, "cash beginning", models.Val(cf.CashBeginningOfPeriod), 200_000, 1e-6)
	wantClose(t, "cash ending", models.Val(cf.CashEndOfPeriod), 307_500, 1e-6)

	// Year two chains off year one.
	wantClose(t, "year-2 revenue", models.Val(m.ForecastIncomeStatements[1].Revenue), 1_210_000, 1e-6)
	bs2 := m.ForecastBalanceSheets[1]
	gap2 := models.Val(bs2.TotalAssets) - models.Val(bs2.TotalLiabilities) - models.Val(bs2.TotalShareholdersEquity)
	wantClose(t, "year-2 identity gap", gap2, 0, 1e-6)

	if len(m.ForecastRatios) != 2 {
		t.Fatalf("forecast ratios = %d, want 2", len(m.ForecastRatios))
	}
	if m.ForecastRatios[1].RevenueGrowth == nil {
		t.Fatal("year-2 revenue growth ratio missing")
	}
	wantClose(t, "year-2 revenue growth", *m.ForecastRatios[1].RevenueGrowth, 0.10, 1e-9)
}

func TestForecastReplacesPriorRun(t *testing.T) {
	m := historicalModel()
	e := New(config.Default(), m)

	if _, err := e.Forecast(3, models.ScenarioBase); err != nil {
		t.Fatalf("first Forecast: %v", err)
	}
	firstRev := models.Val(m.ForecastIncomeStatements[0].Revenue)

	if _, err := e.Forecast(2, models.ScenarioBase); err != nil {
		t.Fatalf("second Forecast: %v", err)
	}

	if len(m.ForecastIncomeStatements) != 2 {
		t.Fatalf("forecast length after rerun = %d, want 2", len(m.ForecastIncomeStatements))
	}
	wantClose(t, "year-1 revenue after rerun", models.Val(m.ForecastIncomeStatements[0].Revenue), firstRev, 1e-9)
}

func TestForecastScenarioDoesNotCompound(t *testing.T) {
	m := historicalModel()
	e := New(config.Default(), m)

	if _, err := e.Forecast(1, models.ScenarioBull); err != nil {
		t.Fatalf("first bull Forecast: %v", err)
	}
	// 10% base growth stretched 1.5x once.
	wantClose(t, "bull growth", m.Assumptions.RevenueGrowthRate, 0.15, 1e-12)
	wantClose(t, "bull revenue", models.Val(m.ForecastIncomeStatements[0].Revenue), 1_150_000, 1e-6)

	if _, err := e.Forecast(1, models.ScenarioBull); err != nil {
		t.Fatalf("second bull Forecast: %v", err)
	}
	wantClose(t, "bull growth after rerun", m.Assumptions.RevenueGrowthRate, 0.15, 1e-12)
	wantClose(t, "bull revenue after rerun", models.Val(m.ForecastIncomeStatements[0].Revenue), 1_150_000, 1e-6)

	if m.Assumptions.Scenario != models.ScenarioBull {
		t.Errorf("scenario = %s, want bull", m.Assumptions.Scenario)
	}
}

func TestApplyScenarioAdjustsDrivers(t *testing.T) {
	cfg := config.Default()
	base := models.ForecastAssumptions{
		RevenueGrowthRate: 0.10,
		GrossMargin:       0.40,
		OperatingMargin:   0.20,
	}

	bull := ApplyScenario(base, models.ScenarioBull, cfg)
	wantClose(t, "bull growth", bull.RevenueGrowthRate, 0.15, 1e-12)
	wantClose(t, "bull gross margin", bull.GrossMargin, 0.44, 1e-12)
	wantClose(t, "bull operating margin", bull.OperatingMargin, 0.22, 1e-12)
	if bull.Scenario != models.ScenarioBull {
		t.Errorf("bull scenario tag = %s", bull.Scenario)
	}

	bear := ApplyScenario(base, models.ScenarioBear, cfg)
	wantClose(t, "bear growth", bear.RevenueGrowthRate, 0.05, 1e-12)
	wantClose(t, "bear gross margin", bear.GrossMargin, 0.36, 1e-12)
	wantClose(t, "bear operating margin", bear.OperatingMargin, 0.17, 1e-12)

	same := ApplyScenario(base, models.ScenarioBase, cfg)
	wantClose(t, "base growth", same.RevenueGrowthRate, 0.10, 1e-12)
	wantClose(t, "base gross margin", same.GrossMargin, 0.40, 1e-12)

	// The input is a value; the original set stays untouched.
	wantClose(t, "input growth untouched", base.RevenueGrowthRate, 0.10, 1e-12)
	if base.Scenario != "" {
		t.Errorf("input scenario mutated to %s", base.Scenario)
	}
}

func TestApplyScenarioCapsBullMargins(t *testing.T) {
	cfg := config.Default()
	rich := models.ForecastAssumptions{
		RevenueGrowthRate: 0.10,
		GrossMargin:       0.90,
		OperatingMargin:   0.78,
	}

	bull := ApplyScenario(rich, models.ScenarioBull, cfg)
	// 0.90*1.1 and 0.78*1.1 both exceed the ceilings.
	wantClose(t, "capped gross margin", bull.GrossMargin, cfg.Thresholds.MaxGrossMargin, 1e-12)
	wantClose(t, "capped operating margin", bull.OperatingMargin, cfg.Thresholds.MaxOperatingMargin, 1e-12)
}

func TestForecastRequiresHistory(t *testing.T) {
	m := &models.LinkedModel{CompanyName: "Empty Co"}
	e := New(config.Default(), m)

	_, err := e.Forecast(2, models.ScenarioBase)
	if err == nil {
		t.Fatal("expected error for empty history")
	}
	if !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "no historical income statements") {
		t.Errorf("error = %v, want income-statement message", err)
	}
}
