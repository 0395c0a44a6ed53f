package models

import (
	"strconv"
	"time"
)

// Statement values are pointers throughout: nil means "not extracted or not
// yet derived", which is different from an explicit zero. Use Val/ValOr at
// the point of consumption; never backfill defaults into the struct itself.

// Val returns the value of an optional field, or 0 when absent.
func Val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// ValOr returns the value of an optional field, or def when absent.
func ValOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Ptr wraps a float64 for assignment to an optional field.
func Ptr(v float64) *float64 { return &v }

// IsSet reports whether an optional field carries a value (zero counts as set).
func IsSet(p *float64) bool { return p != nil }

// PeriodYear extracts the calendar year from an ISO period-end date
// ("2023-12-31" -> 2023), falling back when the date is malformed.
func PeriodYear(periodEnd string, fallback int) int {
	if len(periodEnd) >= 4 {
		if y, err := strconv.Atoi(periodEnd[:4]); err == nil {
			return y
		}
	}
	return fallback
}

// IncomeStatement is one period of income-statement line items.
type IncomeStatement struct {
	PeriodStart string   `json:"period_start"`
	PeriodEnd   string   `json:"period_end"`
	FiscalYear  int      `json:"fiscal_year"`
	Currency    Currency `json:"currency"`

	Revenue       *float64 `json:"revenue,omitempty"`
	CostOfRevenue *float64 `json:"cost_of_revenue,omitempty"`
	GrossProfit   *float64 `json:"gross_profit,omitempty"`

	ResearchDevelopment *float64 `json:"research_development,omitempty"`
	SellingGeneralAdmin *float64 `json:"selling_general_admin,omitempty"`
	OperatingExpenses   *float64 `json:"operating_expenses,omitempty"`

	OperatingIncome          *float64 `json:"operating_income,omitempty"`
	EBITDA                   *float64 `json:"ebitda,omitempty"`
	DepreciationAmortization *float64 `json:"depreciation_amortization,omitempty"`
	EBIT                     *float64 `json:"ebit,omitempty"`

	InterestIncome     *float64 `json:"interest_income,omitempty"`
	InterestExpense    *float64 `json:"interest_expense,omitempty"`
	OtherIncomeExpense *float64 `json:"other_income_expense,omitempty"`

	IncomeBeforeTax  *float64 `json:"income_before_tax,omitempty"`
	IncomeTaxExpense *float64 `json:"income_tax_expense,omitempty"`
	EffectiveTaxRate *float64 `json:"effective_tax_rate,omitempty"`

	NetIncome *float64 `json:"net_income,omitempty"`

	BasicEPS                 *float64 `json:"basic_eps,omitempty"`
	DilutedEPS               *float64 `json:"diluted_eps,omitempty"`
	SharesOutstandingBasic   *float64 `json:"shares_outstanding_basic,omitempty"`
	SharesOutstandingDiluted *float64 `json:"shares_outstanding_diluted,omitempty"`
}

// BalanceSheet is one period-end snapshot of balance-sheet line items.
type BalanceSheet struct {
	PeriodEnd  string   `json:"period_end"`
	FiscalYear int      `json:"fiscal_year"`
	Currency   Currency `json:"currency"`

	// Current assets
	CashAndEquivalents   *float64 `json:"cash_and_equivalents,omitempty"`
	ShortTermInvestments *float64 `json:"short_term_investments,omitempty"`
	AccountsReceivable   *float64 `json:"accounts_receivable,omitempty"`
	Inventory            *float64 `json:"inventory,omitempty"`
	PrepaidExpenses      *float64 `json:"prepaid_expenses,omitempty"`
	OtherCurrentAssets   *float64 `json:"other_current_assets,omitempty"`
	TotalCurrentAssets   *float64 `json:"total_current_assets,omitempty"`

	// Non-current assets
	PropertyPlantEquipmentGross *float64 `json:"property_plant_equipment_gross,omitempty"`
	AccumulatedDepreciation     *float64 `json:"accumulated_depreciation,omitempty"`
	PropertyPlantEquipmentNet   *float64 `json:"property_plant_equipment_net,omitempty"`
	IntangibleAssets            *float64 `json:"intangible_assets,omitempty"`
	Goodwill                    *float64 `json:"goodwill,omitempty"`
	LongTermInvestments         *float64 `json:"long_term_investments,omitempty"`
	OtherNonCurrentAssets       *float64 `json:"other_non_current_assets,omitempty"`
	TotalNonCurrentAssets       *float64 `json:"total_non_current_assets,omitempty"`

	TotalAssets *float64 `json:"total_assets,omitempty"`

	// Current liabilities
	AccountsPayable            *float64 `json:"accounts_payable,omitempty"`
	ShortTermDebt              *float64 `json:"short_term_debt,omitempty"`
	CurrentPortionLongTermDebt *float64 `json:"current_portion_long_term_debt,omitempty"`
	AccruedExpenses            *float64 `json:"accrued_expenses,omitempty"`
	DeferredRevenue            *float64 `json:"deferred_revenue,omitempty"`
	OtherCurrentLiabilities    *float64 `json:"other_current_liabilities,omitempty"`
	TotalCurrentLiabilities    *float64 `json:"total_current_liabilities,omitempty"`

	// Non-current liabilities
	LongTermDebt               *float64 `json:"long_term_debt,omitempty"`
	DeferredTaxLiabilities     *float64 `json:"deferred_tax_liabilities,omitempty"`
	PensionObligations         *float64 `json:"pension_obligations,omitempty"`
	OtherNonCurrentLiabilities *float64 `json:"other_non_current_liabilities,omitempty"`
	TotalNonCurrentLiabilities *float64 `json:"total_non_current_liabilities,omitempty"`

	TotalLiabilities *float64 `json:"total_liabilities,omitempty"`

	// Equity
	CommonStock                     *float64 `json:"common_stock,omitempty"`
	AdditionalPaidInCapital         *float64 `json:"additional_paid_in_capital,omitempty"`
	RetainedEarnings                *float64 `json:"retained_earnings,omitempty"`
	TreasuryStock                   *float64 `json:"treasury_stock,omitempty"`
	AccumulatedOtherComprehensiveIncome *float64 `json:"accumulated_other_comprehensive_income,omitempty"`
	TotalShareholdersEquity         *float64 `json:"total_shareholders_equity,omitempty"`
}

// CashFlowStatement is one period of cash-flow line items.
type CashFlowStatement struct {
	PeriodStart string   `json:"period_start"`
	PeriodEnd   string   `json:"period_end"`
	FiscalYear  int      `json:"fiscal_year"`
	Currency    Currency `json:"currency"`

	// Operating
	NetIncome                *float64 `json:"net_income,omitempty"`
	DepreciationAmortization *float64 `json:"depreciation_amortization,omitempty"`
	StockBasedCompensation   *float64 `json:"stock_based_compensation,omitempty"`
	DeferredTaxes            *float64 `json:"deferred_taxes,omitempty"`
	ChangesInWorkingCapital  *float64 `json:"changes_in_working_capital,omitempty"`
	ChangeInReceivables      *float64 `json:"change_in_receivables,omitempty"`
	ChangeInInventory        *float64 `json:"change_in_inventory,omitempty"`
	ChangeInPayables         *float64 `json:"change_in_payables,omitempty"`
	OtherOperatingActivities *float64 `json:"other_operating_activities,omitempty"`
	CashFromOperations       *float64 `json:"cash_from_operations,omitempty"`

	// Investing
	CapitalExpenditures     *float64 `json:"capital_expenditures,omitempty"`
	Acquisitions            *float64 `json:"acquisitions,omitempty"`
	PurchasesOfInvestments  *float64 `json:"purchases_of_investments,omitempty"`
	SalesOfInvestments      *float64 `json:"sales_of_investments,omitempty"`
	OtherInvestingActivities *float64 `json:"other_investing_activities,omitempty"`
	CashFromInvesting       *float64 `json:"cash_from_investing,omitempty"`

	// Financing
	DebtIssuance             *float64 `json:"debt_issuance,omitempty"`
	DebtRepayment            *float64 `json:"debt_repayment,omitempty"`
	CommonStockIssued        *float64 `json:"common_stock_issued,omitempty"`
	CommonStockRepurchased   *float64 `json:"common_stock_repurchased,omitempty"`
	DividendsPaid            *float64 `json:"dividends_paid,omitempty"`
	OtherFinancingActivities *float64 `json:"other_financing_activities,omitempty"`
	CashFromFinancing        *float64 `json:"cash_from_financing,omitempty"`

	// Reconciliation
	NetChangeInCash      *float64 `json:"net_change_in_cash,omitempty"`
	CashBeginningOfPeriod *float64 `json:"cash_beginning_of_period,omitempty"`
	CashEndOfPeriod      *float64 `json:"cash_end_of_period,omitempty"`

	// Supplemental
	InterestPaid *float64 `json:"interest_paid,omitempty"`
	TaxesPaid    *float64 `json:"taxes_paid,omitempty"`
}

// FinancialStatements is the company-level extraction aggregate: identity
// metadata plus chronological sequences of the three statement types.
type FinancialStatements struct {
	CompanyName        string             `json:"company_name"`
	Ticker             string             `json:"ticker,omitempty"`
	FiscalYear         int                `json:"fiscal_year"`
	ReportType         ReportType         `json:"report_type"`
	AccountingStandard AccountingStandard `json:"accounting_standard"`
	Currency           Currency           `json:"currency"`

	IncomeStatements   []IncomeStatement   `json:"income_statements"`
	BalanceSheets      []BalanceSheet      `json:"balance_sheets"`
	CashFlowStatements []CashFlowStatement `json:"cash_flow_statements"`

	ExtractionDate  time.Time `json:"extraction_date"`
	ExtractionNotes []string  `json:"extraction_notes,omitempty"`
}

// LatestIncomeStatement returns the most recent income statement, or nil.
func (fs *FinancialStatements) LatestIncomeStatement() *IncomeStatement {
	if len(fs.IncomeStatements) == 0 {
		return nil
	}
	return &fs.IncomeStatements[len(fs.IncomeStatements)-1]
}

// LatestBalanceSheet returns the most recent balance sheet, or nil.
func (fs *FinancialStatements) LatestBalanceSheet() *BalanceSheet {
	if len(fs.BalanceSheets) == 0 {
		return nil
	}
	return &fs.BalanceSheets[len(fs.BalanceSheets)-1]
}

// LatestCashFlow returns the most recent cash-flow statement, or nil.
func (fs *FinancialStatements) LatestCashFlow() *CashFlowStatement {
	if len(fs.CashFlowStatements) == 0 {
		return nil
	}
	return &fs.CashFlowStatements[len(fs.CashFlowStatements)-1]
}
