// Package config holds the analyzer configuration as an explicit value.
// Engines receive a Config at construction; there is no package-level
// singleton, so tests can run with overridden thresholds deterministically.
package config

import (
	"fmt"
	"os"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	yaml "gopkg.in/yaml.v2"

	"finanalyzer/pkg/models"
)

// Defaults are the metric values substituted when source data is unavailable.
type Defaults struct {
	GrossMargin     float64 `yaml:"gross_margin" json:"gross_margin"`
	OperatingMargin float64 `yaml:"operating_margin" json:"operating_margin"`
	NetMargin       float64 `yaml:"net_margin" json:"net_margin"`

	RevenueGrowthRate float64 `yaml:"revenue_growth_rate" json:"revenue_growth_rate"`

	TaxRate            float64 `yaml:"tax_rate" json:"tax_rate"`
	RiskFreeRate       float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	EquityRiskPremium  float64 `yaml:"equity_risk_premium" json:"equity_risk_premium"`
	TerminalGrowthRate float64 `yaml:"terminal_growth_rate" json:"terminal_growth_rate"`
	Beta               float64 `yaml:"beta" json:"beta"`
	CostOfDebt         float64 `yaml:"cost_of_debt" json:"cost_of_debt"`

	DaysSalesOutstanding     int `yaml:"days_sales_outstanding" json:"days_sales_outstanding"`
	DaysInventoryOutstanding int `yaml:"days_inventory_outstanding" json:"days_inventory_outstanding"`
	DaysPayableOutstanding   int `yaml:"days_payable_outstanding" json:"days_payable_outstanding"`

	CapexPercentOfRevenue    float64 `yaml:"capex_percent_of_revenue" json:"capex_percent_of_revenue"`
	DepreciationPercentOfPPE float64 `yaml:"depreciation_percent_of_ppe" json:"depreciation_percent_of_ppe"`

	FallbackSharesOutstanding float64 `yaml:"fallback_shares_outstanding" json:"fallback_shares_outstanding"`
	FiscalYear                int     `yaml:"fiscal_year" json:"fiscal_year"`
}

// Thresholds are validation tolerances and clamp bounds.
type Thresholds struct {
	BalanceTolerance float64 `yaml:"balance_tolerance" json:"balance_tolerance"`

	MinGrossMargin     float64 `yaml:"min_gross_margin" json:"min_gross_margin"`
	MaxGrossMargin     float64 `yaml:"max_gross_margin" json:"max_gross_margin"`
	MinOperatingMargin float64 `yaml:"min_operating_margin" json:"min_operating_margin"`
	MaxOperatingMargin float64 `yaml:"max_operating_margin" json:"max_operating_margin"`

	MinCapexPercent float64 `yaml:"min_capex_percent" json:"min_capex_percent"`
	MaxCapexPercent float64 `yaml:"max_capex_percent" json:"max_capex_percent"`

	MaxReasonableStockPrice float64 `yaml:"max_reasonable_stock_price" json:"max_reasonable_stock_price"`
}

// Scoring holds the recommendation rule table. The point values and
// thresholds are part of the output contract; changing them changes every
// recommendation the system produces.
type Scoring struct {
	HighGrowthThreshold   float64 `yaml:"high_growth_threshold" json:"high_growth_threshold"`
	MediumGrowthThreshold float64 `yaml:"medium_growth_threshold" json:"medium_growth_threshold"`
	LowGrowthThreshold    float64 `yaml:"low_growth_threshold" json:"low_growth_threshold"`

	HighMarginThreshold   float64 `yaml:"high_margin_threshold" json:"high_margin_threshold"`
	MediumMarginThreshold float64 `yaml:"medium_margin_threshold" json:"medium_margin_threshold"`
	LowMarginThreshold    float64 `yaml:"low_margin_threshold" json:"low_margin_threshold"`

	HighUpsideThreshold   float64 `yaml:"high_upside_threshold" json:"high_upside_threshold"`
	MediumUpsideThreshold float64 `yaml:"medium_upside_threshold" json:"medium_upside_threshold"`
	LowUpsideThreshold    float64 `yaml:"low_upside_threshold" json:"low_upside_threshold"`

	BuyThreshold  int `yaml:"buy_threshold" json:"buy_threshold"`
	HoldThreshold int `yaml:"hold_threshold" json:"hold_threshold"`
}

// API configures the outbound HTTP collaborators (market data, news, LLM).
type API struct {
	UserAgent           string  `yaml:"user_agent" json:"user_agent"`
	TimeoutSeconds      int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	RequestDelaySeconds float64 `yaml:"request_delay_seconds" json:"request_delay_seconds"`
}

// Config is the full analyzer configuration.
type Config struct {
	Defaults   Defaults   `yaml:"defaults" json:"defaults"`
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	API        API        `yaml:"api" json:"api"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Defaults: Defaults{
			GrossMargin:     0.40,
			OperatingMargin: 0.20,
			NetMargin:       0.10,

			RevenueGrowthRate: 0.05,

			TaxRate:            0.21,
			RiskFreeRate:       0.04,
			EquityRiskPremium:  0.055,
			TerminalGrowthRate: 0.025,
			Beta:               1.0,
			CostOfDebt:         0.05,

			DaysSalesOutstanding:     45,
			DaysInventoryOutstanding: 60,
			DaysPayableOutstanding:   30,

			CapexPercentOfRevenue:    0.05,
			DepreciationPercentOfPPE: 0.10,

			FallbackSharesOutstanding: 1e9,
			FiscalYear:                2024,
		},
		Thresholds: Thresholds{
			BalanceTolerance: 1000.0,

			MinGrossMargin:     0.10,
			MaxGrossMargin:     0.95,
			MinOperatingMargin: -0.50,
			MaxOperatingMargin: 0.80,

			MinCapexPercent: 0.01,
			MaxCapexPercent: 0.20,

			MaxReasonableStockPrice: 10000.0,
		},
		Scoring: Scoring{
			HighGrowthThreshold:   0.15,
			MediumGrowthThreshold: 0.08,
			LowGrowthThreshold:    0.03,

			HighMarginThreshold:   0.20,
			MediumMarginThreshold: 0.10,
			LowMarginThreshold:    0.05,

			HighUpsideThreshold:   0.40,
			MediumUpsideThreshold: 0.20,
			LowUpsideThreshold:    0.05,

			BuyThreshold:  6,
			HoldThreshold: 3,
		},
		API: API{
			UserAgent:           "Mozilla/5.0 (compatible; FinancialAnalyzer/1.0)",
			TimeoutSeconds:      10,
			RequestDelaySeconds: 0.5,
		},
	}
}

// Load reads a YAML config file over the defaults. Missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// AssumptionOverrides is the shape of a human-edited assumption file.
// Stored as Hjson so analysts can keep comments next to the numbers.
// Pointers distinguish "not overridden" from an explicit zero.
type AssumptionOverrides struct {
	RevenueGrowthRate     *float64 `json:"revenue_growth_rate"`
	GrossMargin           *float64 `json:"gross_margin"`
	OperatingMargin       *float64 `json:"operating_margin"`
	TaxRate               *float64 `json:"tax_rate"`
	CapexPercentOfRevenue *float64 `json:"capex_percent_of_revenue"`
	DividendPayoutRatio   *float64 `json:"dividend_payout_ratio"`
	WACC                  *float64 `json:"wacc"`
	TerminalGrowthRate    *float64 `json:"terminal_growth_rate"`
	Beta                  *float64 `json:"beta"`

	DaysSalesOutstanding     *int `json:"days_sales_outstanding"`
	DaysInventoryOutstanding *int `json:"days_inventory_outstanding"`
	DaysPayableOutstanding   *int `json:"days_payable_outstanding"`
}

// LoadAssumptionOverrides parses an Hjson override file.
func LoadAssumptionOverrides(path string) (*AssumptionOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides %s: %w", path, err)
	}
	var o AssumptionOverrides
	if err := hjson.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse overrides %s: %w", path, err)
	}
	return &o, nil
}

// Apply writes the non-nil overrides onto a derived assumption set.
func (o *AssumptionOverrides) Apply(a *models.ForecastAssumptions) {
	if o == nil {
		return
	}
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setI := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setF(&a.RevenueGrowthRate, o.RevenueGrowthRate)
	setF(&a.GrossMargin, o.GrossMargin)
	setF(&a.OperatingMargin, o.OperatingMargin)
	setF(&a.TaxRate, o.TaxRate)
	setF(&a.CapexPercentOfRevenue, o.CapexPercentOfRevenue)
	setF(&a.DividendPayoutRatio, o.DividendPayoutRatio)
	setF(&a.WACC, o.WACC)
	setF(&a.TerminalGrowthRate, o.TerminalGrowthRate)
	setF(&a.Beta, o.Beta)
	setI(&a.DaysSalesOutstanding, o.DaysSalesOutstanding)
	setI(&a.DaysInventoryOutstanding, o.DaysInventoryOutstanding)
	setI(&a.DaysPayableOutstanding, o.DaysPayableOutstanding)
}

// SectorPeers maps a ticker to comparable companies for relative context.
var SectorPeers = map[string][]string{
	"AAPL":  {"MSFT", "GOOGL", "AMZN", "META"},
	"MSFT":  {"AAPL", "GOOGL", "AMZN", "ORCL"},
	"GOOGL": {"META", "MSFT", "AMZN", "AAPL"},
	"NVDA":  {"AMD", "INTC", "TSM", "AVGO"},
	"AMD":   {"NVDA", "INTC", "TSM", "QCOM"},

	"TSLA": {"F", "GM", "RIVN", "LCID", "NIO"},

	"JPM": {"BAC", "GS", "MS", "C"},
	"GS":  {"MS", "JPM", "BAC", "C"},

	"AMZN": {"WMT", "TGT", "COST", "EBAY"},
	"WMT":  {"TGT", "COST", "KR", "AMZN"},
}

// Peers returns the peer list for a ticker, or nil when unmapped.
func Peers(ticker string) []string {
	return SectorPeers[strings.ToUpper(strings.TrimSpace(ticker))]
}
