package forecast

import (
	"strings"
	"testing"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

// pricedModel carries a hand-built forecast whose DCF works out to an
// equity value of 1,643,181.82 over 100,000 shares, so the implied price
// is 16.43 against whatever market quote a test attaches.
func pricedModel() *models.LinkedModel {
	return &models.LinkedModel{
		CompanyName:   "Priced Corp",
		Ticker:        "PRC",
		BaseYear:      2023,
		ForecastYears: 2,
		HistoricalIncomeStatements: []models.IncomeStatement{{
			FiscalYear:               2023,
			Revenue:                  models.Ptr(1_000_000.0),
			SharesOutstandingDiluted: models.Ptr(100_000.0),
		}},
		HistoricalBalanceSheets: []models.BalanceSheet{{
			FiscalYear:              2023,
			CashAndEquivalents:      models.Ptr(100_000.0),
			TotalCurrentAssets:      models.Ptr(400_000.0),
			TotalCurrentLiabilities: models.Ptr(200_000.0),
			ShortTermDebt:           models.Ptr(50_000.0),
			LongTermDebt:            models.Ptr(150_000.0),
			TotalShareholdersEquity: models.Ptr(600_000.0),
		}},
		ForecastIncomeStatements: []models.IncomeStatement{
			{FiscalYear: 2024, OperatingIncome: models.Ptr(200_000.0)},
			{FiscalYear: 2025, OperatingIncome: models.Ptr(220_000.0)},
		},
		ForecastBalanceSheets: []models.BalanceSheet{
			{FiscalYear: 2024, TotalCurrentAssets: models.Ptr(420_000.0), TotalCurrentLiabilities: models.Ptr(210_000.0)},
			{FiscalYear: 2025, TotalCurrentAssets: models.Ptr(441_000.0), TotalCurrentLiabilities: models.Ptr(220_000.0)},
		},
		ForecastCashFlows: []models.CashFlowStatement{
			{FiscalYear: 2024, DepreciationAmortization: models.Ptr(50_000.0), CapitalExpenditures: models.Ptr(-60_000.0)},
			{FiscalYear: 2025, DepreciationAmortization: models.Ptr(55_000.0), CapitalExpenditures: models.Ptr(-66_000.0)},
		},
		Assumptions: models.ForecastAssumptions{
			WACC:               0.10,
			TerminalGrowthRate: 0.02,
			TaxRate:            0.25,
		},
	}
}

func TestAdviceBuyOnStrongGrowthAndMargins(t *testing.T) {
	m := historicalModel()
	m.Assumptions.RevenueGrowthRate = 0.20
	m.Assumptions.GrossMargin = 0.45
	m.Assumptions.OperatingMargin = 0.30

	e := New(config.Default(), m)
	if _, err := e.Forecast(2, models.ScenarioBase); err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if _, err := e.GenerateInvestmentAdvice(nil); err != nil {
		t.Fatalf("GenerateInvestmentAdvice: %v", err)
	}

	// 20% CAGR (+3) and ~22% average net margin (+3) clear the buy bar
	// without any market quote or sentiment.
	if m.Recommendation != models.RecommendationBuy {
		t.Fatalf("recommendation = %s, want %s", m.Recommendation, models.RecommendationBuy)
	}
	want := "Strong fundamentals (Growth: 20.0%) combined with significant intrinsic value upside (0.0%)."
	if m.InvestmentThesis != want {
		t.Errorf("thesis = %q, want %q", m.InvestmentThesis, want)
	}
	if m.TargetPrice == nil {
		t.Error("target price not set")
	}
	if m.UpsidePotential != nil {
		t.Errorf("upside = %v, want nil without a market quote", *m.UpsidePotential)
	}
	if m.DCFValuation == nil {
		t.Error("DCF valuation not attached")
	}
}

func TestAdviceSellOnWeakOutlook(t *testing.T) {
	m := historicalModel()
	m.Assumptions.RevenueGrowthRate = 0.01
	m.Assumptions.GrossMargin = 0.30
	m.Assumptions.OperatingMargin = 0.05

	e := New(config.Default(), m)
	if _, err := e.Forecast(2, models.ScenarioBase); err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if _, err := e.GenerateInvestmentAdvice(&models.SentimentSummary{CompositeScore: -0.3}); err != nil {
		t.Fatalf("GenerateInvestmentAdvice: %v", err)
	}

	// 1% growth and a ~3.4% net margin score nothing; -0.3 sentiment
	// subtracts two points.
	if m.Recommendation != models.RecommendationSell {
		t.Fatalf("recommendation = %s, want %s", m.Recommendation, models.RecommendationSell)
	}
	want := "Valuation looks stretched relative to growth potential or intrinsic cash flow generation."
	if m.InvestmentThesis != want {
		t.Errorf("thesis = %q, want %q", m.InvestmentThesis, want)
	}
}

func TestAdviceHoldOnUpsideAndSentiment(t *testing.T) {
	m := pricedModel()
	m.MarketData = &models.MarketSnapshot{CurrentPrice: models.Ptr(10.0)}

	e := New(config.Default(), m)
	if _, err := e.GenerateInvestmentAdvice(&models.SentimentSummary{CompositeScore: 0.25}); err != nil {
		t.Fatalf("GenerateInvestmentAdvice: %v", err)
	}

	// 64% upside (+3) plus positive sentiment (+2) lands between the
	// hold and buy thresholds.
	if m.Recommendation != models.RecommendationHold {
		t.Fatalf("recommendation = %s, want %s", m.Recommendation, models.RecommendationHold)
	}
	want := "Stable performance with fair valuation. Intrinsic value is close to current market price."
	if m.InvestmentThesis != want {
		t.Errorf("thesis = %q, want %q", m.InvestmentThesis, want)
	}
	if m.TargetPrice == nil {
		t.Fatal("target price not set")
	}
	wantClose(t, "target price", *m.TargetPrice, 16.4318, 1e-3)
	if m.UpsidePotential == nil {
		t.Fatal("upside not set")
	}
	wantClose(t, "upside", *m.UpsidePotential, 0.64318, 1e-4)
}

func TestAdvicePenalizesOvervaluation(t *testing.T) {
	m := pricedModel()
	m.MarketData = &models.MarketSnapshot{CurrentPrice: models.Ptr(60.0)}

	e := New(config.Default(), m)
	if _, err := e.GenerateInvestmentAdvice(nil); err != nil {
		t.Fatalf("GenerateInvestmentAdvice: %v", err)
	}

	// A 16.43 intrinsic value against a 60 quote is -73% upside.
	if m.Recommendation != models.RecommendationSell {
		t.Fatalf("recommendation = %s, want %s", m.Recommendation, models.RecommendationSell)
	}
	if m.UpsidePotential == nil {
		t.Fatal("upside not set")
	}
	wantClose(t, "upside", *m.UpsidePotential, -0.72614, 1e-4)
}

func TestAdviceRequiresForecast(t *testing.T) {
	m := historicalModel()
	e := New(config.Default(), m)

	_, err := e.GenerateInvestmentAdvice(nil)
	if err == nil {
		t.Fatal("expected error without a forecast")
	}
	if !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("error kind = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "no forecast available") {
		t.Errorf("error = %v, want no-forecast message", err)
	}
}
