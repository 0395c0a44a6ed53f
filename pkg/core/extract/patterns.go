package extract

import (
	"regexp"
	"strings"
)

// =============================================================================
// PATTERN TABLE - ordered label regexes per statement field (EN + Cyrillic)
// =============================================================================

// Field identifies one extractable statement line item.
type Field string

const (
	FieldRevenue            Field = "revenue"
	FieldCostOfRevenue      Field = "cost_of_revenue"
	FieldGrossProfit        Field = "gross_profit"
	FieldOperatingIncome    Field = "operating_income"
	FieldNetIncome          Field = "net_income"
	FieldTotalAssets        Field = "total_assets"
	FieldTotalLiabilities   Field = "total_liabilities"
	FieldTotalEquity        Field = "total_equity"
	FieldShares             Field = "shares"
	FieldCapex              Field = "capital_expenditures"
	FieldCashFromOperations Field = "cash_from_operations"
	FieldDepreciation       Field = "depreciation"
	FieldAccountsReceivable Field = "accounts_receivable"
	FieldInventory          Field = "inventory"
	FieldCash               Field = "cash_and_equivalents"
)

// FieldPattern binds a field to its ordered regex alternatives. Pattern
// order matters: the first alternative that yields a non-zero number wins,
// so more specific labels come before generic ones.
type FieldPattern struct {
	Field    Field
	Patterns []*regexp.Regexp
}

// FieldPatterns is the extraction rule table. Capture group 1 holds the
// figure and always opens on a digit (or a parenthesis in the Cyrillic
// variants that keep parenthesized negatives), so punctuation inside a
// label like "Accounts receivable, net" cannot anchor the capture.
// Cyrillic variants admit spaces inside the group because Russian and
// Kazakh filings use space thousands separators.
var FieldPatterns = []FieldPattern{
	{FieldRevenue, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total\s+revenue\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Net\s+sales\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Total\s+net\s+sales\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Revenue,\s+net\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Доходы\s+от\s+реализации\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Выручка\s+(?:от\s+реализации\s+)?[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Общий\s+доход\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldCostOfRevenue, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Cost\s+of\s+revenue\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Cost\s+of\s+sales\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Cost\s+of\s+goods\s+sold\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Себестоимость\s+реализованной\s+продукции\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Себестоимость\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldGrossProfit, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Gross\s+profit\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Gross\s+margin\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Валовая\s+прибыль\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldOperatingIncome, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Operating\s+income\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Income\s+from\s+operations\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Доход\s+от\s+операционной\s+деятельности\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Операционная\s+прибыль\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldNetIncome, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Net\s+income\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Net\s+earnings\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Net\s+income\s+attributable\s+to\s+[\w\s]+\s+[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Общий\s+совокупный\s+доход\s+за\s+год\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Прибыль\s+за\s+период\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Прибыль\s+за\s+год\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Чистая\s+прибыль\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldTotalAssets, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total\s+assets\s+[\$]?\s*(\d[\d,.\s]*)`),
		regexp.MustCompile(`(?i)Итого\s+(?:по\s+разделу\s+)?активов\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Активы,\s+всего\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Итого\s+активов\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldTotalLiabilities, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total\s+liabilities\s+[\$]?\s*(\d[\d,.\s]*)`),
		regexp.MustCompile(`(?i)Обязательства,\s+всего\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Итого\s+обязательств\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldTotalEquity, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total\s+shareholders.\s+equity\s+[\$]?\s*(\d[\d,.\s]*)`),
		regexp.MustCompile(`(?i)Total\s+equity\s+[\$]?\s*(\d[\d,.\s]*)`),
		regexp.MustCompile(`(?i)Итого\s+капитал\s+[\$]?\s*([\d(][\d\s,.()]*)`),
		regexp.MustCompile(`(?i)Капитал\s+и\s+резервы\s+[\$]?\s*([\d(][\d\s,.()]*)`),
	}},
	{FieldShares, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Weighted\s+average\s+shares.*?diluted.*?(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Diluted\s+shares.*?(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Common\s+stock\s+outstanding.*?(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)shares\s+of\s+common\s+stock\s+outstanding.*?(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Число\s+акций\s+[\$]?\s*(\d[\d\s,.]*)`),
	}},
	{FieldCapex, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Capital\s+expenditures?\s*[\$]?\s*\(?(\d[\d,.\s]*)\)?`),
		regexp.MustCompile(`(?i)Purchase\s+of\s+property.*?[\$]?\s*\(?(\d[\d,.\s]*)\)?`),
		regexp.MustCompile(`(?i)Капитальные\s+затраты\s*[\$]?\s*\(?(\d[\d\s,.]*)\)?`),
	}},
	{FieldCashFromOperations, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Net\s+cash\s+(?:provided\s+by|from)\s+operating\s+activities\s*[\$]?\s*\(?(\d[\d,.\s]*)\)?`),
		regexp.MustCompile(`(?i)Чистые\s+денежные\s+средства\s+от\s+операционной\s+деятельности\s*[\$]?\s*\(?(\d[\d\s,.]*)\)?`),
		regexp.MustCompile(`(?i)Денежные\s+средства\s+от\s+операционной\s+деятельности\s*[\$]?\s*\(?(\d[\d\s,.]*)\)?`),
	}},
	{FieldDepreciation, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Depreciation\s+and\s+amortization\s*[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Depreciation\s*[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Амортизация\s+(?:основных\s+средств\s+и\s+нематериальных\s+активов\s+)?[\$]?\s*(\d[\d\s,.]*)`),
	}},
	{FieldAccountsReceivable, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Accounts\s+receivable.*?[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Trade\s+receivables?\s*[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Дебиторская\s+задолженность\s*[\$]?\s*(\d[\d\s,.]*)`),
	}},
	{FieldInventory, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Inventor(?:y|ies)\s*[\$]?\s*(\d[\d,.]*)`),
		regexp.MustCompile(`(?i)Запасы\s*[\$]?\s*(\d[\d\s,.]*)`),
	}},
	{FieldCash, []*regexp.Regexp{
		regexp.MustCompile(`(?i)Cash\s+and\s+cash\s+equivalents?\s*[\$]?\s*(\d[\d,.\s]*)`),
		regexp.MustCompile(`(?i)Денежные\s+средства\s+и\s+их\s+эквиваленты\s*[\$]?\s*(\d[\d\s,.]*)`),
		regexp.MustCompile(`(?i)Денежные\s+средства\s+и\s+эквиваленты\s*[\$]?\s*(\d[\d\s,.]*)`),
	}},
}

// FindValue scans text with each pattern in order and returns the first
// non-zero figure. Captures may span several table columns separated by
// whitespace; the leftmost token is the current period in virtually every
// filing layout, so that one is parsed.
func FindValue(text string, patterns []*regexp.Regexp) float64 {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.TrimSpace(m[1])
			fields := strings.Fields(raw)
			if len(fields) == 0 {
				continue
			}
			if v := ParseNumber(fields[0]); v != 0 {
				return v
			}
		}
	}
	return 0
}
