package model

import (
	"math"
	"strings"
	"testing"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

// twoPeriodStatements builds two fully consistent fiscal years: every
// roll-forward reconciles exactly, so the model should balance with no
// plugs and no validation errors.
func twoPeriodStatements() *models.FinancialStatements {
	return &models.FinancialStatements{
		CompanyName:        "Linked Test Corp",
		Ticker:             "LTC",
		FiscalYear:         2023,
		ReportType:         models.Report10K,
		AccountingStandard: models.StandardGAAP,
		Currency:           models.CurrencyUSD,
		IncomeStatements: []models.IncomeStatement{
			{
				PeriodStart: "2022-01-01", PeriodEnd: "2022-12-31", FiscalYear: 2022,
				Revenue:                  models.Ptr(1_000_000),
				CostOfRevenue:            models.Ptr(600_000),
				GrossProfit:              models.Ptr(400_000),
				OperatingIncome:          models.Ptr(200_000),
				DepreciationAmortization: models.Ptr(50_000),
				NetIncome:                models.Ptr(150_000),
			},
			{
				PeriodStart: "2023-01-01", PeriodEnd: "2023-12-31", FiscalYear: 2023,
				Revenue:                  models.Ptr(1_200_000),
				CostOfRevenue:            models.Ptr(700_000),
				GrossProfit:              models.Ptr(500_000),
				OperatingIncome:          models.Ptr(250_000),
				DepreciationAmortization: models.Ptr(55_000),
				NetIncome:                models.Ptr(180_000),
			},
		},
		BalanceSheets: []models.BalanceSheet{
			{
				PeriodEnd: "2022-12-31", FiscalYear: 2022,
				CashAndEquivalents:        models.Ptr(200_000),
				AccountsReceivable:        models.Ptr(100_000),
				Inventory:                 models.Ptr(50_000),
				PropertyPlantEquipmentNet: models.Ptr(500_000),
				TotalAssets:               models.Ptr(1_000_000),
				AccountsPayable:           models.Ptr(80_000),
				TotalLiabilities:          models.Ptr(400_000),
				RetainedEarnings:          models.Ptr(300_000),
				TotalShareholdersEquity:   models.Ptr(600_000),
			},
			{
				PeriodEnd: "2023-12-31", FiscalYear: 2023,
				CashAndEquivalents:        models.Ptr(335_000),
				AccountsReceivable:        models.Ptr(120_000),
				Inventory:                 models.Ptr(60_000),
				PropertyPlantEquipmentNet: models.Ptr(515_000),
				TotalAssets:               models.Ptr(1_150_000),
				AccountsPayable:           models.Ptr(90_000),
				TotalLiabilities:          models.Ptr(400_000),
				RetainedEarnings:          models.Ptr(450_000),
				TotalShareholdersEquity:   models.Ptr(750_000),
			},
		},
		CashFlowStatements: []models.CashFlowStatement{
			{
				PeriodStart: "2022-01-01", PeriodEnd: "2022-12-31", FiscalYear: 2022,
				// Stale figure on purpose: the build must overwrite it from
				// the income statement.
				NetIncome:               models.Ptr(999),
				ChangesInWorkingCapital: models.Ptr(0),
				CapitalExpenditures:     models.Ptr(-60_000),
				CashFromInvesting:       models.Ptr(-60_000),
				DividendsPaid:           models.Ptr(-10_000),
				CashFromFinancing:       models.Ptr(-20_000),
			},
			{
				PeriodStart: "2023-01-01", PeriodEnd: "2023-12-31", FiscalYear: 2023,
				ChangesInWorkingCapital: models.Ptr(0),
				CapitalExpenditures:     models.Ptr(-70_000),
				CashFromInvesting:       models.Ptr(-70_000),
				DividendsPaid:           models.Ptr(-30_000),
				CashFromFinancing:       models.Ptr(-30_000),
			},
		},
	}
}

func wantClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestBuildLinkedModelLinksStatements(t *testing.T) {
	eng := New(config.Default(), twoPeriodStatements())
	m, err := eng.BuildLinkedModel()
	if err != nil {
		t.Fatalf("BuildLinkedModel: %v", err)
	}

	if !m.IsBalanced {
		t.Errorf("IsBalanced = false, validation errors: %v", m.ValidationErrors)
	}
	if len(m.ValidationErrors) != 0 {
		t.Errorf("ValidationErrors = %v, want none", m.ValidationErrors)
	}
	if len(m.Adjustments) != 0 {
		t.Errorf("Adjustments = %v, want none", m.Adjustments)
	}

	if m.CompanyName != "Linked Test Corp" || m.Ticker != "LTC" || m.BaseYear != 2023 {
		t.Errorf("identity = %q/%q/%d", m.CompanyName, m.Ticker, m.BaseYear)
	}
	if m.ReportType != models.Report10K || m.AccountingStandard != models.StandardGAAP {
		t.Errorf("report metadata = %s/%s", m.ReportType, m.AccountingStandard)
	}

	cf0 := m.HistoricalCashFlows[0]
	wantClose(t, "CF[0] net income synced", models.Val(cf0.NetIncome), 150_000)
	wantClose(t, "CF[0] D&A synced", models.Val(cf0.DepreciationAmortization), 50_000)
	wantClose(t, "CF[0] CFO", models.Val(cf0.CashFromOperations), 200_000)
	wantClose(t, "CF[0] net change", models.Val(cf0.NetChangeInCash), 120_000)

	cf1 := m.HistoricalCashFlows[1]
	wantClose(t, "CF[1] CFO", models.Val(cf1.CashFromOperations), 235_000)
	wantClose(t, "CF[1] net change", models.Val(cf1.NetChangeInCash), 135_000)

	if len(m.HistoricalRatios) != 2 {
		t.Fatalf("HistoricalRatios length = %d, want 2", len(m.HistoricalRatios))
	}
	growth := m.HistoricalRatios[1].RevenueGrowth
	if growth == nil {
		t.Fatal("second period RevenueGrowth is nil")
	}
	wantClose(t, "revenue growth", *growth, 0.2)
}

func TestDerivedAssumptions(t *testing.T) {
	eng := New(config.Default(), twoPeriodStatements())
	m, err := eng.BuildLinkedModel()
	if err != nil {
		t.Fatalf("BuildLinkedModel: %v", err)
	}

	a := m.Assumptions
	wantClose(t, "gross margin", a.GrossMargin, 500_000.0/1_200_000.0)
	wantClose(t, "operating margin", a.OperatingMargin, 250_000.0/1_200_000.0)
	wantClose(t, "net margin", a.NetMargin, 0.15)
	wantClose(t, "capex percent", a.CapexPercentOfRevenue, 70_000.0/1_200_000.0)
	wantClose(t, "dividend payout", a.DividendPayoutRatio, 30_000.0/180_000.0)
	wantClose(t, "revenue growth default", a.RevenueGrowthRate, 0.05)
	wantClose(t, "tax rate default", a.TaxRate, 0.21)
	wantClose(t, "terminal growth default", a.TerminalGrowthRate, 0.025)

	if a.DaysSalesOutstanding != 36 { // int(120000/1200000*365) = int(36.5)
		t.Errorf("DSO = %d, want 36", a.DaysSalesOutstanding)
	}
	if a.DaysInventoryOutstanding != 31 { // int(60000/700000*365)
		t.Errorf("DIO = %d, want 31", a.DaysInventoryOutstanding)
	}
	if a.DaysPayableOutstanding != 46 { // int(90000/700000*365)
		t.Errorf("DPO = %d, want 46", a.DaysPayableOutstanding)
	}
	if a.Scenario != models.ScenarioBase {
		t.Errorf("Scenario = %s, want base", a.Scenario)
	}
}

func TestAssumptionClamps(t *testing.T) {
	fs := &models.FinancialStatements{
		CompanyName: "Clamp Co",
		FiscalYear:  2023,
		IncomeStatements: []models.IncomeStatement{{
			PeriodEnd: "2023-12-31", FiscalYear: 2023,
			Revenue:         models.Ptr(1_000_000),
			CostOfRevenue:   models.Ptr(200_000),
			GrossProfit:     models.Ptr(990_000),
			OperatingIncome: models.Ptr(900_000),
			NetIncome:       models.Ptr(-100_000),
		}},
		BalanceSheets: []models.BalanceSheet{{
			PeriodEnd: "2023-12-31", FiscalYear: 2023,
			Inventory:               models.Ptr(100_000),
			AccountsPayable:         models.Ptr(40_000),
			TotalAssets:             models.Ptr(500_000),
			TotalLiabilities:        models.Ptr(300_000),
			TotalShareholdersEquity: models.Ptr(200_000),
		}},
		CashFlowStatements: []models.CashFlowStatement{{
			PeriodEnd: "2023-12-31", FiscalYear: 2023,
			CapitalExpenditures: models.Ptr(-300_000),
			DividendsPaid:       models.Ptr(-50_000),
		}},
	}

	m, err := New(config.Default(), fs).BuildLinkedModel()
	if err != nil {
		t.Fatalf("BuildLinkedModel: %v", err)
	}

	a := m.Assumptions
	wantClose(t, "gross margin clamped high", a.GrossMargin, 0.95)
	wantClose(t, "operating margin clamped high", a.OperatingMargin, 0.80)
	wantClose(t, "net margin unclamped", a.NetMargin, -0.10)
	wantClose(t, "capex clamped high", a.CapexPercentOfRevenue, 0.20)
	wantClose(t, "payout zero on losses", a.DividendPayoutRatio, 0)

	if a.DaysSalesOutstanding != 45 { // no receivables, config default
		t.Errorf("DSO = %d, want 45", a.DaysSalesOutstanding)
	}
	if a.DaysInventoryOutstanding != 182 { // int(100000/200000*365)
		t.Errorf("DIO = %d, want 182", a.DaysInventoryOutstanding)
	}
	if a.DaysPayableOutstanding != 73 { // int(40000/200000*365)
		t.Errorf("DPO = %d, want 73", a.DaysPayableOutstanding)
	}
}

func TestAssumptionDefaultsWithoutRevenue(t *testing.T) {
	fs := &models.FinancialStatements{
		CompanyName: "Empty Co",
		FiscalYear:  2023,
		IncomeStatements: []models.IncomeStatement{{
			PeriodEnd: "2023-12-31", FiscalYear: 2023,
			Revenue: models.Ptr(0),
		}},
		BalanceSheets: []models.BalanceSheet{{
			PeriodEnd: "2023-12-31", FiscalYear: 2023,
		}},
		CashFlowStatements: []models.CashFlowStatement{{
			PeriodEnd: "2023-12-31", FiscalYear: 2023,
		}},
	}

	m, err := New(config.Default(), fs).BuildLinkedModel()
	if err != nil {
		t.Fatalf("BuildLinkedModel: %v", err)
	}

	a := m.Assumptions
	wantClose(t, "gross margin default", a.GrossMargin, 0.40)
	wantClose(t, "operating margin default", a.OperatingMargin, 0.20)
	wantClose(t, "net margin default", a.NetMargin, 0.10)
	wantClose(t, "capex default", a.CapexPercentOfRevenue, 0.05)
	if a.DaysSalesOutstanding != 45 || a.DaysInventoryOutstanding != 60 || a.DaysPayableOutstanding != 30 {
		t.Errorf("day counts = %d/%d/%d, want 45/60/30",
			a.DaysSalesOutstanding, a.DaysInventoryOutstanding, a.DaysPayableOutstanding)
	}
}

func TestEquityPlugForcesBalance(t *testing.T) {
	fs := &models.FinancialStatements{
		CompanyName: "Plug Co",
		FiscalYear:  2024,
		IncomeStatements: []models.IncomeStatement{{
			PeriodEnd: "2023-12-31", FiscalYear: 2024,
			Revenue:   models.Ptr(500_000),
			NetIncome: models.Ptr(50_000),
		}},
		BalanceSheets: []models.BalanceSheet{{
			PeriodEnd: "2023-12-31", FiscalYear: 2024,
			TotalAssets:             models.Ptr(1_000_000),
			TotalLiabilities:        models.Ptr(400_000),
			TotalShareholdersEquity: models.Ptr(500_000),
		}},
		CashFlowStatements: []models.CashFlowStatement{{
			PeriodEnd: "2023-12-31", FiscalYear: 2024,
		}},
	}

	m, err := New(config.Default(), fs).BuildLinkedModel()
	if err != nil {
		t.Fatalf("BuildLinkedModel: %v", err)
	}

	wantClose(t, "plugged equity", models.Val(m.HistoricalBalanceSheets[0].TotalShareholdersEquity), 600_000)
	if len(m.Adjustments) != 1 {
		t.Fatalf("Adjustments = %v, want exactly one", m.Adjustments)
	}
	if !strings.Contains(m.Adjustments[0], "plug of $100000") || !strings.Contains(m.Adjustments[0], "2023") {
		t.Errorf("adjustment = %q", m.Adjustments[0])
	}
	if !m.IsBalanced {
		t.Errorf("IsBalanced = false after plug, errors: %v", m.ValidationErrors)
	}
}

func TestBuildRejectsEmptyStatements(t *testing.T) {
	fs := twoPeriodStatements()
	fs.CashFlowStatements = nil

	_, err := New(config.Default(), fs).BuildLinkedModel()
	if err == nil {
		t.Fatal("expected error for missing cash flow statements")
	}
	if !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "cash flow") {
		t.Errorf("error = %v", err)
	}

	fs2 := twoPeriodStatements()
	fs2.IncomeStatements = nil
	if _, err := New(config.Default(), fs2).BuildLinkedModel(); err == nil {
		t.Fatal("expected error for missing income statements")
	}
}

func TestSummaryMetrics(t *testing.T) {
	eng := New(config.Default(), twoPeriodStatements())

	if _, err := eng.SummaryMetrics(); err == nil {
		t.Fatal("expected error before BuildLinkedModel")
	}

	if _, err := eng.BuildLinkedModel(); err != nil {
		t.Fatalf("BuildLinkedModel: %v", err)
	}
	s, err := eng.SummaryMetrics()
	if err != nil {
		t.Fatalf("SummaryMetrics: %v", err)
	}

	if s.Company != "Linked Test Corp" || s.FiscalYear != 2023 {
		t.Errorf("identity = %q/%d", s.Company, s.FiscalYear)
	}
	wantClose(t, "summary revenue", models.Val(s.Revenue), 1_200_000)
	wantClose(t, "summary net income", models.Val(s.NetIncome), 180_000)
	wantClose(t, "summary assets", models.Val(s.TotalAssets), 1_150_000)
	if s.NetMargin == nil {
		t.Fatal("summary net margin is nil")
	}
	wantClose(t, "summary net margin", *s.NetMargin, 0.15)
	if s.RevenueGrowth == nil {
		t.Fatal("summary revenue growth is nil")
	}
	wantClose(t, "summary revenue growth", *s.RevenueGrowth, 0.2)
	if !s.IsBalanced || s.ValidationErrorCount != 0 {
		t.Errorf("balance status = %v/%d", s.IsBalanced, s.ValidationErrorCount)
	}
}
