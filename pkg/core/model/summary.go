package model

import (
	"fmt"
)

// SummaryMetrics condenses the latest historical period into the headline
// numbers the API and report renderers show before any forecast exists.
type SummaryMetrics struct {
	Company    string `json:"company"`
	Ticker     string `json:"ticker,omitempty"`
	FiscalYear int    `json:"fiscal_year"`

	Revenue     *float64 `json:"revenue,omitempty"`
	NetIncome   *float64 `json:"net_income,omitempty"`
	TotalAssets *float64 `json:"total_assets,omitempty"`
	TotalEquity *float64 `json:"total_equity,omitempty"`

	NetMargin      *float64 `json:"net_margin,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	CurrentRatio   *float64 `json:"current_ratio,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`

	IsBalanced           bool `json:"is_balanced"`
	ValidationErrorCount int  `json:"validation_error_count"`
}

// SummaryMetrics reports the headline metrics of the built model.
func (e *Engine) SummaryMetrics() (*SummaryMetrics, error) {
	if e.model == nil {
		return nil, fmt.Errorf("model not built yet: call BuildLinkedModel first")
	}

	m := e.model
	latestInc := m.LastHistoricalIncome()
	latestBS := m.LastHistoricalBalance()

	s := &SummaryMetrics{
		Company:              m.CompanyName,
		Ticker:               m.Ticker,
		FiscalYear:           m.BaseYear,
		IsBalanced:           m.IsBalanced,
		ValidationErrorCount: len(m.ValidationErrors),
	}
	if latestInc != nil {
		s.Revenue = latestInc.Revenue
		s.NetIncome = latestInc.NetIncome
	}
	if latestBS != nil {
		s.TotalAssets = latestBS.TotalAssets
		s.TotalEquity = latestBS.TotalShareholdersEquity
	}
	if n := len(m.HistoricalRatios); n > 0 {
		latest := m.HistoricalRatios[n-1]
		s.NetMargin = latest.NetMargin
		s.ReturnOnEquity = latest.ReturnOnEquity
		s.CurrentRatio = latest.CurrentRatio
		s.DebtToEquity = latest.DebtToEquity
		s.RevenueGrowth = latest.RevenueGrowth
	}
	return s, nil
}
