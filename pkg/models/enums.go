package models

// AccountingStandard identifies the reporting framework a filing follows.
type AccountingStandard string

const (
	StandardGAAP    AccountingStandard = "GAAP"
	StandardIFRS    AccountingStandard = "IFRS"
	StandardUnknown AccountingStandard = "UNKNOWN"
)

// ReportType identifies the filing period covered by a report.
type ReportType string

const (
	Report10K       ReportType = "10-K"
	Report10Q       ReportType = "10-Q"
	ReportAnnual    ReportType = "ANNUAL"
	ReportQuarterly ReportType = "QUARTERLY"
)

// IsQuarterly reports whether the filing covers a single quarter and
// therefore needs run-rate annualization of income-statement flows.
func (r ReportType) IsQuarterly() bool {
	return r == Report10Q || r == ReportQuarterly
}

// Currency is the ISO-style currency code of a statement.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyKZT Currency = "KZT"
	CurrencyRUB Currency = "RUB"
	CurrencyCNY Currency = "CNY"
)

// Scenario selects the forecast case.
type Scenario string

const (
	ScenarioBase Scenario = "base"
	ScenarioBull Scenario = "bull"
	ScenarioBear Scenario = "bear"
)

// Recommendation is the investment call produced by the advice scorer.
type Recommendation string

const (
	RecommendationBuy     Recommendation = "BUY"
	RecommendationHold    Recommendation = "HOLD"
	RecommendationSell    Recommendation = "SELL"
	RecommendationNeutral Recommendation = "NEUTRAL"
)
