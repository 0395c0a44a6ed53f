package models

// FundingRound records one private financing event.
type FundingRound struct {
	Name              string   `json:"name"`
	Date              string   `json:"date"`
	PreMoneyValuation float64  `json:"pre_money_valuation"`
	AmountRaised      float64  `json:"amount_raised"`
	PostMoneyValuation float64 `json:"post_money_valuation"`
	Investors         []string `json:"investors,omitempty"`
}

// ShareClass describes one slice of the equity structure.
type ShareClass struct {
	Name                  string   `json:"name"`
	SharesIssued          float64  `json:"shares_issued"`
	PricePerShare         *float64 `json:"price_per_share,omitempty"`
	LiquidationPreference float64  `json:"liquidation_preference"`
	OwnershipPercentage   *float64 `json:"ownership_percentage,omitempty"`
}

// CapTable is the capitalization table attached to private-company models.
type CapTable struct {
	Rounds                  []FundingRound `json:"rounds,omitempty"`
	ShareClasses            []ShareClass   `json:"share_classes,omitempty"`
	TotalFullyDilutedShares float64        `json:"total_fully_diluted_shares"`
}
