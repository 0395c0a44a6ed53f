package models

import "time"

// ForecastAssumptions is the forward-looking driver bundle. It is a plain
// value: scenario application and overrides produce a new copy rather than
// mutating one shared instance, so re-running a forecast never compounds
// scenario multipliers.
type ForecastAssumptions struct {
	RevenueGrowthRate float64 `json:"revenue_growth_rate"`
	RevenueCAGR       float64 `json:"revenue_cagr,omitempty"`

	GrossMargin     float64 `json:"gross_margin"`
	OperatingMargin float64 `json:"operating_margin"`
	NetMargin       float64 `json:"net_margin,omitempty"`

	TaxRate float64 `json:"tax_rate"`

	CapexPercentOfRevenue    float64 `json:"capex_percent_of_revenue"`
	DepreciationPercentOfPPE float64 `json:"depreciation_percent_of_ppe"`

	DaysSalesOutstanding     int     `json:"days_sales_outstanding"`
	DaysInventoryOutstanding int     `json:"days_inventory_outstanding"`
	DaysPayableOutstanding   int     `json:"days_payable_outstanding"`
	DividendPayoutRatio      float64 `json:"dividend_payout_ratio"`

	RiskFreeRate       float64 `json:"risk_free_rate"`
	EquityRiskPremium  float64 `json:"equity_risk_premium"`
	Beta               float64 `json:"beta"`
	CostOfDebt         float64 `json:"cost_of_debt"`
	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	WACC               float64 `json:"wacc,omitempty"`

	Scenario Scenario `json:"scenario"`
}

// FinancialRatios holds the derived ratio set for one period. Nil means the
// denominator needed to compute the ratio was missing or zero.
type FinancialRatios struct {
	Period     string `json:"period"`
	FiscalYear int    `json:"fiscal_year"`

	// Profitability
	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	NetMargin       *float64 `json:"net_margin,omitempty"`
	EBITDAMargin    *float64 `json:"ebitda_margin,omitempty"`
	ReturnOnAssets  *float64 `json:"return_on_assets,omitempty"`
	ReturnOnEquity  *float64 `json:"return_on_equity,omitempty"`

	// Liquidity
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`
	CashRatio    *float64 `json:"cash_ratio,omitempty"`

	// Leverage
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	DebtToAssets     *float64 `json:"debt_to_assets,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"`

	// Efficiency
	AssetTurnover       *float64 `json:"asset_turnover,omitempty"`
	InventoryTurnover   *float64 `json:"inventory_turnover,omitempty"`
	ReceivablesTurnover *float64 `json:"receivables_turnover,omitempty"`

	// Working-capital day counts
	DaysSalesOutstanding     *float64 `json:"days_sales_outstanding,omitempty"`
	DaysInventoryOutstanding *float64 `json:"days_inventory_outstanding,omitempty"`
	DaysPayableOutstanding   *float64 `json:"days_payable_outstanding,omitempty"`
	CashConversionCycle      *float64 `json:"cash_conversion_cycle,omitempty"`

	// Growth (vs prior period; only present when a prior period exists)
	RevenueGrowth   *float64 `json:"revenue_growth,omitempty"`
	NetIncomeGrowth *float64 `json:"net_income_growth,omitempty"`
}

// MarketSnapshot is the market-data collaborator payload. Every field is
// optional: a missing key never fails a downstream computation, it only
// shifts resolution to the next fallback source.
type MarketSnapshot struct {
	Ticker            string   `json:"ticker"`
	LongName          string   `json:"long_name,omitempty"`
	CurrentPrice      *float64 `json:"current_price,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	ForwardPE         *float64 `json:"forward_pe,omitempty"`
	DividendYield     *float64 `json:"dividend_yield,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	FetchedAt         time.Time `json:"fetched_at,omitempty"`
}

// SentimentSummary is the sentiment collaborator payload consumed by the
// recommendation scorer. A nil summary is treated as neutral.
type SentimentSummary struct {
	CompositeScore    float64 `json:"composite_score"`
	DominantSentiment string  `json:"dominant_sentiment"`
	PositiveHits      int     `json:"positive_hits,omitempty"`
	NegativeHits      int     `json:"negative_hits,omitempty"`
	HeadlinesScored   int     `json:"headlines_scored,omitempty"`
}

// DCFYearData is the per-year FCFF decomposition inside a valuation.
type DCFYearData struct {
	Year                     int     `json:"year"`
	EBIT                     float64 `json:"ebit"`
	TaxExpense               float64 `json:"tax_expense"`
	NOPAT                    float64 `json:"nopat"`
	DepreciationAmortization float64 `json:"depreciation_amortization"`
	Capex                    float64 `json:"capex"`
	ChangeInNWC              float64 `json:"change_in_nwc"`
	FreeCashFlow             float64 `json:"free_cash_flow"`
	DiscountFactor           float64 `json:"discount_factor"`
	PVOfFCF                  float64 `json:"pv_of_fcf"`
}

// DCFValuation is an immutable valuation snapshot, recomputed wholesale on
// every valuation pass.
type DCFValuation struct {
	ForecastPeriodFCF  []DCFYearData `json:"forecast_period_fcf"`
	SumPVFCF           float64       `json:"sum_pv_fcf"`
	TerminalValue      float64       `json:"terminal_value"`
	PVTerminalValue    float64       `json:"pv_terminal_value"`
	EnterpriseValue    float64       `json:"enterprise_value"`
	NetDebt            float64       `json:"net_debt"`
	EquityValue        float64       `json:"equity_value"`
	SharesOutstanding  float64       `json:"shares_outstanding"`
	ImpliedPricePerShare float64     `json:"implied_price_per_share"`
	CurrentPrice       *float64      `json:"current_price,omitempty"`
	Upside             *float64      `json:"upside,omitempty"`
	WACCUsed           float64       `json:"wacc_used"`
	TerminalGrowthUsed float64       `json:"terminal_growth_used"`
	Warnings           []string      `json:"warnings,omitempty"`
}

// ReverseDCFAnalysis reports what growth the market price implies.
type ReverseDCFAnalysis struct {
	TargetValuation        float64  `json:"target_valuation"`
	RequiredGrowthRate     float64  `json:"required_growth_rate"`
	RequiredMargin         float64  `json:"required_margin"`
	YearsToBreakeven       *float64 `json:"years_to_breakeven,omitempty"`
	ImpliedRevenueMultiple *float64 `json:"implied_revenue_multiple,omitempty"`
	Converged              bool     `json:"converged"`
	Iterations             int      `json:"iterations"`
}

// LinkedModel is the central analysis aggregate: historical statements that
// have been linked and balanced, the forecast built on top of them, and the
// valuation and advice derived from the forecast. One model belongs to one
// analysis session; nothing here is safe for concurrent mutation.
type LinkedModel struct {
	CompanyName   string `json:"company_name"`
	Ticker        string `json:"ticker,omitempty"`
	BaseYear      int    `json:"base_year"`
	ForecastYears int    `json:"forecast_years"`

	ReportType         ReportType         `json:"report_type,omitempty"`
	AccountingStandard AccountingStandard `json:"accounting_standard,omitempty"`

	HistoricalIncomeStatements []IncomeStatement   `json:"historical_income_statements"`
	HistoricalBalanceSheets    []BalanceSheet      `json:"historical_balance_sheets"`
	HistoricalCashFlows        []CashFlowStatement `json:"historical_cash_flows"`

	ForecastIncomeStatements []IncomeStatement   `json:"forecast_income_statements,omitempty"`
	ForecastBalanceSheets    []BalanceSheet      `json:"forecast_balance_sheets,omitempty"`
	ForecastCashFlows        []CashFlowStatement `json:"forecast_cash_flows,omitempty"`

	Assumptions ForecastAssumptions `json:"assumptions"`

	HistoricalRatios []FinancialRatios `json:"historical_ratios,omitempty"`
	ForecastRatios   []FinancialRatios `json:"forecast_ratios,omitempty"`

	IsBalanced       bool     `json:"is_balanced"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
	Adjustments      []string `json:"adjustments,omitempty"`

	MarketData *MarketSnapshot   `json:"market_data,omitempty"`
	Sentiment  *SentimentSummary `json:"sentiment,omitempty"`

	Recommendation   Recommendation `json:"recommendation,omitempty"`
	TargetPrice      *float64       `json:"target_price,omitempty"`
	UpsidePotential  *float64       `json:"upside_potential,omitempty"`
	InvestmentThesis string         `json:"investment_thesis,omitempty"`
	DCFValuation     *DCFValuation  `json:"dcf_valuation,omitempty"`

	AISummary   string   `json:"ai_summary,omitempty"`
	AIRisks     []string `json:"ai_risks,omitempty"`
	AINarrative string   `json:"ai_narrative,omitempty"`

	CapTable   *CapTable           `json:"cap_table,omitempty"`
	ReverseDCF *ReverseDCFAnalysis `json:"reverse_dcf,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LastHistoricalIncome returns the final historical income statement, or nil.
func (m *LinkedModel) LastHistoricalIncome() *IncomeStatement {
	if len(m.HistoricalIncomeStatements) == 0 {
		return nil
	}
	return &m.HistoricalIncomeStatements[len(m.HistoricalIncomeStatements)-1]
}

// LastHistoricalBalance returns the final historical balance sheet, or nil.
func (m *LinkedModel) LastHistoricalBalance() *BalanceSheet {
	if len(m.HistoricalBalanceSheets) == 0 {
		return nil
	}
	return &m.HistoricalBalanceSheets[len(m.HistoricalBalanceSheets)-1]
}

// LastHistoricalCashFlow returns the final historical cash flow, or nil.
func (m *LinkedModel) LastHistoricalCashFlow() *CashFlowStatement {
	if len(m.HistoricalCashFlows) == 0 {
		return nil
	}
	return &m.HistoricalCashFlows[len(m.HistoricalCashFlows)-1]
}

// ClearForecast drops all forecast-side sequences prior to a rebuild.
func (m *LinkedModel) ClearForecast() {
	m.ForecastIncomeStatements = nil
	m.ForecastBalanceSheets = nil
	m.ForecastCashFlows = nil
	m.ForecastRatios = nil
}
