package extract

// =============================================================================
// GAP-FILLING CASCADE - ordered estimation rules for missing figures
// =============================================================================

// Figures is the working set of extracted values the cascade operates on,
// keyed by field. Zero means "not extracted"; rules fill zeros from figures
// that are present, so rule order matters.
type Figures map[Field]float64

// FallbackRule derives one missing figure from others. Applies reports
// whether the rule should fire on the current set; Apply mutates it.
type FallbackRule struct {
	Name    string
	Applies func(Figures) bool
	Apply   func(Figures)
}

// FallbackRules is the gap-filling cascade, run once in order after pattern
// extraction and scaling. Income-statement rules come first because the
// balance-sheet and cash-flow rules consume their outputs.
var FallbackRules = []FallbackRule{
	{
		Name:    "gross-from-revenue-cost",
		Applies: func(f Figures) bool { return f[FieldRevenue] > 0 && f[FieldCostOfRevenue] > 0 && f[FieldGrossProfit] == 0 },
		Apply:   func(f Figures) { f[FieldGrossProfit] = f[FieldRevenue] - f[FieldCostOfRevenue] },
	},
	{
		Name:    "cost-from-revenue-gross",
		Applies: func(f Figures) bool { return f[FieldRevenue] > 0 && f[FieldGrossProfit] > 0 && f[FieldCostOfRevenue] == 0 },
		Apply:   func(f Figures) { f[FieldCostOfRevenue] = f[FieldRevenue] - f[FieldGrossProfit] },
	},
	{
		// A gross profit under 1% of a million-plus revenue is a mismatched
		// table hit, not a real margin. Discard and let estimation refill it.
		Name:    "reject-implausible-gross",
		Applies: func(f Figures) bool { return f[FieldRevenue] > 1e6 && f[FieldGrossProfit] < f[FieldRevenue]*0.01 },
		Apply:   func(f Figures) { f[FieldGrossProfit] = 0 },
	},
	{
		Name:    "estimate-gross-profit",
		Applies: func(f Figures) bool { return f[FieldGrossProfit] == 0 && f[FieldRevenue] > 0 },
		Apply: func(f Figures) {
			rev := f[FieldRevenue]
			if net := f[FieldNetIncome]; net > 0 {
				// Gross must at least cover net income plus operating costs;
				// 20% of revenue is a conservative opex allowance.
				f[FieldGrossProfit] = net + rev*0.2
			} else {
				f[FieldGrossProfit] = rev * 0.4
			}
			f[FieldCostOfRevenue] = rev - f[FieldGrossProfit]
		},
	},
	{
		Name:    "estimate-operating-income",
		Applies: func(f Figures) bool { return f[FieldOperatingIncome] == 0 && (f[FieldNetIncome] > 0 || f[FieldGrossProfit] > 0) },
		Apply: func(f Figures) {
			if net := f[FieldNetIncome]; net > 0 {
				f[FieldOperatingIncome] = net * 1.15
			} else {
				f[FieldOperatingIncome] = f[FieldGrossProfit] * 0.6
			}
		},
	},
	{
		Name:    "equity-from-accounting-identity",
		Applies: func(f Figures) bool { return f[FieldTotalAssets] > 0 && f[FieldTotalEquity] == 0 },
		Apply:   func(f Figures) { f[FieldTotalEquity] = f[FieldTotalAssets] - f[FieldTotalLiabilities] },
	},
	{
		// Without total assets there is nothing to reconcile equity against,
		// so a lone equity hit is treated as unreliable.
		Name:    "clear-equity-without-assets",
		Applies: func(f Figures) bool { return f[FieldTotalAssets] <= 0 && f[FieldTotalEquity] != 0 },
		Apply:   func(f Figures) { f[FieldTotalEquity] = 0 },
	},
	{
		Name:    "cash-share-of-assets",
		Applies: func(f Figures) bool { return f[FieldCash] == 0 && f[FieldTotalAssets] > 0 },
		Apply:   func(f Figures) { f[FieldCash] = f[FieldTotalAssets] * 0.2 },
	},
	{
		Name:    "receivables-share-of-assets",
		Applies: func(f Figures) bool { return f[FieldAccountsReceivable] == 0 && f[FieldTotalAssets] > 0 },
		Apply:   func(f Figures) { f[FieldAccountsReceivable] = f[FieldTotalAssets] * 0.1 },
	},
	{
		Name:    "inventory-share-of-assets",
		Applies: func(f Figures) bool { return f[FieldInventory] == 0 && f[FieldTotalAssets] > 0 },
		Apply:   func(f Figures) { f[FieldInventory] = f[FieldTotalAssets] * 0.1 },
	},
	{
		Name:    "depreciation-from-operating",
		Applies: func(f Figures) bool { return f[FieldDepreciation] == 0 && f[FieldOperatingIncome] > 0 },
		Apply:   func(f Figures) { f[FieldDepreciation] = f[FieldOperatingIncome] * 0.1 },
	},
	{
		Name:    "cfo-from-net-income",
		Applies: func(f Figures) bool { return f[FieldCashFromOperations] == 0 },
		Apply:   func(f Figures) { f[FieldCashFromOperations] = f[FieldNetIncome] + f[FieldDepreciation] },
	},
	{
		// Capex regexes capture the magnitude; cash-flow convention is an
		// outflow, so the stored figure must be negative.
		Name:    "capex-outflow-sign",
		Applies: func(f Figures) bool { return f[FieldCapex] > 0 },
		Apply:   func(f Figures) { f[FieldCapex] = -f[FieldCapex] },
	},
}

// ApplyFallbacks runs the cascade over f and returns the names of the rules
// that fired, in order.
func ApplyFallbacks(f Figures) []string {
	var fired []string
	for _, rule := range FallbackRules {
		if rule.Applies(f) {
			rule.Apply(f)
			fired = append(fired, rule.Name)
		}
	}
	return fired
}
