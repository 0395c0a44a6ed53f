package calc

import (
	"math"
	"testing"

	"finanalyzer/pkg/models"
)

func sampleIncome() models.IncomeStatement {
	return models.IncomeStatement{
		PeriodEnd:       "2023-12-31",
		FiscalYear:      2024,
		Revenue:         models.Ptr(1000),
		CostOfRevenue:   models.Ptr(600),
		GrossProfit:     models.Ptr(400),
		OperatingIncome: models.Ptr(200),
		EBITDA:          models.Ptr(220),
		InterestExpense: models.Ptr(20),
		NetIncome:       models.Ptr(150),
	}
}

func sampleBalance() models.BalanceSheet {
	return models.BalanceSheet{
		PeriodEnd:               "2023-12-31",
		FiscalYear:              2024,
		TotalAssets:             models.Ptr(2000),
		TotalShareholdersEquity: models.Ptr(800),
		TotalCurrentAssets:      models.Ptr(900),
		TotalCurrentLiabilities: models.Ptr(450),
		CashAndEquivalents:      models.Ptr(300),
		ShortTermInvestments:    models.Ptr(50),
		AccountsReceivable:      models.Ptr(100),
		Inventory:               models.Ptr(150),
		AccountsPayable:         models.Ptr(120),
		ShortTermDebt:           models.Ptr(100),
		LongTermDebt:            models.Ptr(500),
	}
}

func checkRatio(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: expected %f, got nil", name, want)
		return
	}
	if math.Abs(*got-want) > 0.0001 {
		t.Errorf("%s: expected %f, got %f", name, want, *got)
	}
}

func TestRatiosProfitability(t *testing.T) {
	r := Ratios(sampleIncome(), sampleBalance())

	checkRatio(t, "gross margin", r.GrossMargin, 0.40)
	checkRatio(t, "operating margin", r.OperatingMargin, 0.20)
	checkRatio(t, "net margin", r.NetMargin, 0.15)
	checkRatio(t, "ebitda margin", r.EBITDAMargin, 0.22)
	checkRatio(t, "roa", r.ReturnOnAssets, 150.0/2000)
	checkRatio(t, "roe", r.ReturnOnEquity, 150.0/800)
}

func TestRatiosLiquidityAndLeverage(t *testing.T) {
	r := Ratios(sampleIncome(), sampleBalance())

	checkRatio(t, "current ratio", r.CurrentRatio, 2.0)
	// Quick = (300 + 50 + 100) / 450 = 1.0
	checkRatio(t, "quick ratio", r.QuickRatio, 1.0)
	checkRatio(t, "cash ratio", r.CashRatio, 300.0/450)
	// Debt = 100 + 500 = 600
	checkRatio(t, "debt/equity", r.DebtToEquity, 0.75)
	checkRatio(t, "debt/assets", r.DebtToAssets, 0.30)
	checkRatio(t, "interest coverage", r.InterestCoverage, 10.0)
}

func TestRatiosWorkingCapitalDays(t *testing.T) {
	r := Ratios(sampleIncome(), sampleBalance())

	// Inventory turnover 600/150 = 4 -> DIO 91.25
	checkRatio(t, "inventory turnover", r.InventoryTurnover, 4.0)
	checkRatio(t, "dio", r.DaysInventoryOutstanding, 91.25)
	// Receivables turnover 1000/100 = 10 -> DSO 36.5
	checkRatio(t, "receivables turnover", r.ReceivablesTurnover, 10.0)
	checkRatio(t, "dso", r.DaysSalesOutstanding, 36.5)
	// Payables turnover 600/120 = 5 -> DPO 73
	checkRatio(t, "dpo", r.DaysPayableOutstanding, 73.0)
	// CCC = 36.5 + 91.25 - 73 = 54.75
	checkRatio(t, "ccc", r.CashConversionCycle, 54.75)
}

func TestRatiosNilWhenDenominatorMissing(t *testing.T) {
	r := Ratios(models.IncomeStatement{}, models.BalanceSheet{})

	if r.GrossMargin != nil || r.NetMargin != nil {
		t.Error("Expected nil margins without revenue")
	}
	if r.CurrentRatio != nil || r.QuickRatio != nil {
		t.Error("Expected nil liquidity ratios without current liabilities")
	}
	if r.ReturnOnEquity != nil {
		t.Error("Expected nil ROE without equity")
	}
}

func TestRatioSeriesGrowth(t *testing.T) {
	first := sampleIncome()
	second := sampleIncome()
	second.Revenue = models.Ptr(1200)
	second.NetIncome = models.Ptr(180)

	series := RatioSeries(
		[]models.IncomeStatement{first, second},
		[]models.BalanceSheet{sampleBalance(), sampleBalance()},
	)

	if len(series) != 2 {
		t.Fatalf("Expected 2 periods, got %d", len(series))
	}
	if series[0].RevenueGrowth != nil {
		t.Error("First period has no prior; growth must be nil")
	}
	checkRatio(t, "revenue growth", series[1].RevenueGrowth, 0.20)
	checkRatio(t, "net income growth", series[1].NetIncomeGrowth, 0.20)
}

func TestRatioSeriesSkipsUnpairedPeriods(t *testing.T) {
	series := RatioSeries(
		[]models.IncomeStatement{sampleIncome(), sampleIncome()},
		[]models.BalanceSheet{sampleBalance()},
	)
	if len(series) != 1 {
		t.Errorf("Expected 1 paired period, got %d", len(series))
	}
}

func TestRevenueCAGR(t *testing.T) {
	// 100 -> 200 over 5 years: 2^(1/5) - 1
	want := math.Pow(2, 0.2) - 1
	if got := RevenueCAGR(100, 200, 5); math.Abs(got-want) > 0.0001 {
		t.Errorf("Expected %f, got %f", want, got)
	}
	if got := RevenueCAGR(0, 200, 5); got != 0 {
		t.Errorf("Expected 0 for non-positive base, got %f", got)
	}
}

func TestAverageNetMargin(t *testing.T) {
	a := sampleIncome() // margin 0.15
	b := sampleIncome()
	b.Revenue = models.Ptr(2000)
	b.NetIncome = models.Ptr(500) // margin 0.25
	zero := models.IncomeStatement{Revenue: models.Ptr(0), NetIncome: models.Ptr(100)}

	got := AverageNetMargin([]models.IncomeStatement{a, b, zero})
	if math.Abs(got-0.20) > 0.0001 {
		t.Errorf("Expected 0.20, got %f", got)
	}

	if got := AverageNetMargin(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %f", got)
	}
}

func TestGrowthSeries(t *testing.T) {
	a := sampleIncome()
	b := sampleIncome()
	b.Revenue = models.Ptr(1100)
	c := sampleIncome()
	c.Revenue = models.Ptr(990)

	got := GrowthSeries([]models.IncomeStatement{a, b, c})
	if len(got) != 2 {
		t.Fatalf("Expected 2 growth entries, got %d", len(got))
	}
	if math.Abs(got[0]-0.10) > 0.0001 {
		t.Errorf("Expected 0.10, got %f", got[0])
	}
	if math.Abs(got[1]-(-0.10)) > 0.0001 {
		t.Errorf("Expected -0.10, got %f", got[1])
	}
}
