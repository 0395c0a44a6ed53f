package valuation

import "finanalyzer/pkg/models"

// OwnershipSlice is one share class's stake in the fully-diluted pie.
type OwnershipSlice struct {
	Class      string  `json:"class"`
	Shares     float64 `json:"shares"`
	Percent    float64 `json:"percent"`
	Preference float64 `json:"preference"`
}

// CapTableSummary condenses a capitalization table to the numbers a
// valuation discussion needs: where the last round priced the company, how
// many shares that price is spread over, and who owns what.
type CapTableSummary struct {
	LastRound          string           `json:"last_round,omitempty"`
	PostMoneyValuation float64          `json:"post_money_valuation"`
	TotalRaised        float64          `json:"total_raised"`
	FullyDilutedShares float64          `json:"fully_diluted_shares"`
	ImpliedSharePrice  float64          `json:"implied_share_price"`
	Ownership          []OwnershipSlice `json:"ownership,omitempty"`
}

// SummarizeCapTable reduces a cap table to its valuation summary. Rounds are
// taken in the order recorded, so the last entry is the latest pricing
// event. Returns nil for a nil or empty table.
func SummarizeCapTable(ct *models.CapTable) *CapTableSummary {
	if ct == nil || (len(ct.Rounds) == 0 && len(ct.ShareClasses) == 0) {
		return nil
	}

	s := &CapTableSummary{FullyDilutedShares: ct.TotalFullyDilutedShares}

	for _, r := range ct.Rounds {
		s.TotalRaised += r.AmountRaised
	}
	if n := len(ct.Rounds); n > 0 {
		last := ct.Rounds[n-1]
		s.LastRound = last.Name
		s.PostMoneyValuation = last.PostMoneyValuation
		if s.PostMoneyValuation == 0 {
			s.PostMoneyValuation = last.PreMoneyValuation + last.AmountRaised
		}
	}

	// A missing fully-diluted count falls back to the class totals.
	if s.FullyDilutedShares == 0 {
		for _, c := range ct.ShareClasses {
			s.FullyDilutedShares += c.SharesIssued
		}
	}
	if s.FullyDilutedShares > 0 && s.PostMoneyValuation > 0 {
		s.ImpliedSharePrice = s.PostMoneyValuation / s.FullyDilutedShares
	}

	for _, c := range ct.ShareClasses {
		slice := OwnershipSlice{
			Class:      c.Name,
			Shares:     c.SharesIssued,
			Preference: c.LiquidationPreference,
		}
		switch {
		case c.OwnershipPercentage != nil:
			slice.Percent = *c.OwnershipPercentage
		case s.FullyDilutedShares > 0:
			slice.Percent = c.SharesIssued / s.FullyDilutedShares
		}
		s.Ownership = append(s.Ownership, slice)
	}

	return s
}

// NewRoundDilution prices a prospective round off the current fully-diluted
// count: shares issued to the new investor at the pre-money price, and the
// post-money stake those shares represent. A zero pre-money valuation or
// share count cannot be priced and returns zeros.
func NewRoundDilution(ct *models.CapTable, amountRaised, preMoney float64) (newShares, investorPct float64) {
	if ct == nil || amountRaised <= 0 || preMoney <= 0 {
		return 0, 0
	}
	existing := ct.TotalFullyDilutedShares
	if existing == 0 {
		for _, c := range ct.ShareClasses {
			existing += c.SharesIssued
		}
	}
	if existing <= 0 {
		return 0, 0
	}
	pricePerShare := preMoney / existing
	newShares = amountRaised / pricePerShare
	investorPct = newShares / (existing + newShares)
	return newShares, investorPct
}
