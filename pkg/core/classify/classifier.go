// Package classify detects whether a filing reports under US GAAP or IFRS.
// Detection is additive scoring over several indicator classes; no single
// phrase decides, which keeps one stray cross-reference (every IFRS filer
// mentions "GAAP" somewhere) from flipping the call.
package classify

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"strings"

	"finanalyzer/pkg/models"
)

// =============================================================================
// INDICATOR VOCABULARY
// =============================================================================

// Indicators is one standard's detection vocabulary. All entries are matched
// lowercase against lowercased text.
type Indicators struct {
	Keywords       []string // counted per occurrence
	StatementNames []string // presence only
	LineItems      []string // presence only
	Policies       []string // presence only
	Bodies         []string // regulatory bodies, word-boundary counted
}

var gaapIndicators = Indicators{
	Keywords: []string{
		"generally accepted accounting principles",
		"us gaap",
		"fasb",
		"asc 606",
		"asc 842",
		"sfas",
		"lifo",
		"last-in, first-out",
		"extraordinary items",
		"sec",
		"form 10-k",
		"form 10-q",
	},
	StatementNames: []string{
		"statement of operations",
		"statement of stockholders' equity",
	},
	LineItems: []string{
		"treasury stock",
		"additional paid-in capital",
		"research and development expense", // always expensed under GAAP
	},
	Policies: []string{
		"lifo method",
		"development costs are expensed",
		"no revaluation of property",
		"extraordinary items",
	},
	Bodies: []string{"sec", "fasb", "pcaob", "aicpa"},
}

var ifrsIndicators = Indicators{
	Keywords: []string{
		"international financial reporting standards",
		"ifrs",
		"ias",
		"iasb",
		"ifrs 15",
		"ifrs 16",
		"ifrs 9",
		"revaluation reserve",
		"other comprehensive income",
		"fifo",
		"weighted average",
	},
	StatementNames: []string{
		"statement of comprehensive income",
		"statement of financial position",
		"statement of changes in equity",
	},
	LineItems: []string{
		"revaluation surplus",
		"other comprehensive income",
		"development costs capitalized",
		"finance costs",
	},
	Policies: []string{
		"revaluation model",
		"development costs capitalized",
		"impairment reversal",
		"functional currency",
	},
	Bodies: []string{"iasb", "ifric", "ias"},
}

// Scoring weights per indicator class. A statement name is worth more than a
// keyword because filers do not title statements after the other framework.
const (
	keywordWeight   = 2.0
	statementWeight = 5.0
	lineItemWeight  = 3.0
	policyWeight    = 4.0
	bodyWeight      = 1.5

	// The winner must clear this floor; below it the text simply does not
	// talk about accounting standards.
	minWinningScore = 3.0

	maxConfidence = 0.99
)

var bodyRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, b := range gaapIndicators.Bodies {
		m[b] = regexp.MustCompile(`\b` + b + `\b`)
	}
	for _, b := range ifrsIndicators.Bodies {
		m[b] = regexp.MustCompile(`\b` + b + `\b`)
	}
	return m
}()

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Evidence records what drove a classification, for reports and audits.
type Evidence struct {
	GAAPScore          float64  `json:"gaap_score"`
	IFRSScore          float64  `json:"ifrs_score"`
	MatchedKeywords    []string `json:"matched_keywords,omitempty"`
	MatchedStatements  []string `json:"matched_statements,omitempty"`
	MatchedLineItems   []string `json:"matched_line_items,omitempty"`
	MatchedPolicies    []string `json:"matched_policies,omitempty"`
	RegulatoryMentions []string `json:"regulatory_mentions,omitempty"`
}

// Result is the classification outcome.
type Result struct {
	Standard   models.AccountingStandard `json:"standard"`
	Confidence float64                   `json:"confidence"`
	Evidence   Evidence                  `json:"evidence"`
}

// Classify scores the text against both vocabularies and picks the standard
// whose score strictly exceeds the other's and the minimum floor. Anything
// else is UNKNOWN with zero confidence.
func Classify(text string) Result {
	lower := strings.ToLower(text)
	var ev Evidence

	sides := []struct {
		label string
		ind   Indicators
		score *float64
	}{
		{"GAAP", gaapIndicators, &ev.GAAPScore},
		{"IFRS", ifrsIndicators, &ev.IFRSScore},
	}

	for _, s := range sides {
		for _, kw := range s.ind.Keywords {
			if n := strings.Count(lower, kw); n > 0 {
				*s.score += float64(n) * keywordWeight
				ev.MatchedKeywords = append(ev.MatchedKeywords, fmt.Sprintf("%s: %s x%d", s.label, kw, n))
			}
		}
	}
	for _, s := range sides {
		for _, name := range s.ind.StatementNames {
			if strings.Contains(lower, name) {
				*s.score += statementWeight
				ev.MatchedStatements = append(ev.MatchedStatements, fmt.Sprintf("%s: %s", s.label, name))
			}
		}
	}
	for _, s := range sides {
		for _, item := range s.ind.LineItems {
			if strings.Contains(lower, item) {
				*s.score += lineItemWeight
				ev.MatchedLineItems = append(ev.MatchedLineItems, fmt.Sprintf("%s: %s", s.label, item))
			}
		}
	}
	for _, s := range sides {
		for _, policy := range s.ind.Policies {
			if strings.Contains(lower, policy) {
				*s.score += policyWeight
				ev.MatchedPolicies = append(ev.MatchedPolicies, fmt.Sprintf("%s: %s", s.label, policy))
			}
		}
	}
	for _, s := range sides {
		for _, body := range s.ind.Bodies {
			if n := len(bodyRes[body].FindAllStringIndex(lower, -1)); n > 0 {
				*s.score += float64(n) * bodyWeight
				ev.RegulatoryMentions = append(ev.RegulatoryMentions, fmt.Sprintf("%s: %s x%d", s.label, strings.ToUpper(body), n))
			}
		}
	}

	res := Result{Standard: models.StandardUnknown, Evidence: ev}
	total := ev.GAAPScore + ev.IFRSScore + 0.01
	switch {
	case ev.GAAPScore > ev.IFRSScore && ev.GAAPScore > minWinningScore:
		res.Standard = models.StandardGAAP
		res.Confidence = math.Min(ev.GAAPScore/total, maxConfidence)
	case ev.IFRSScore > ev.GAAPScore && ev.IFRSScore > minWinningScore:
		res.Standard = models.StandardIFRS
		res.Confidence = math.Min(ev.IFRSScore/total, maxConfidence)
	}

	log.Printf("[CLASSIFY] standard=%s confidence=%.2f (gaap=%.1f ifrs=%.1f)",
		res.Standard, res.Confidence, ev.GAAPScore, ev.IFRSScore)
	return res
}

// =============================================================================
// STANDARD METADATA
// =============================================================================

// KeyDifferences summarizes how the detected standard treats the policy areas
// that matter for cross-standard comparison. Empty map for UNKNOWN.
func KeyDifferences(standard models.AccountingStandard) map[string]string {
	switch standard {
	case models.StandardGAAP:
		return map[string]string{
			"inventory_valuation": "LIFO, FIFO, or Weighted Average allowed",
			"development_costs":   "Expensed as incurred (R&D)",
			"ppe_valuation":       "Historical cost model only",
			"impairment_reversal": "Not permitted",
			"extraordinary_items": "Allowed (pre-2015)",
			"statement_names":     "Statement of Operations, Balance Sheet",
			"revaluation":         "Not permitted for PPE",
			"functional_currency": "Less emphasis",
		}
	case models.StandardIFRS:
		return map[string]string{
			"inventory_valuation": "FIFO or Weighted Average (LIFO prohibited)",
			"development_costs":   "Capitalized if criteria met",
			"ppe_valuation":       "Historical cost or Revaluation model",
			"impairment_reversal": "Permitted under certain conditions",
			"extraordinary_items": "Prohibited",
			"statement_names":     "Statement of Comprehensive Income, Statement of Financial Position",
			"revaluation":         "Revaluation model available for PPE",
			"functional_currency": "Explicitly defined",
		}
	default:
		return map[string]string{}
	}
}

// SuggestAdjustments lists reconciliation checks for analysts comparing the
// filing against the other framework. Statements, when provided, prune
// suggestions that cannot apply (no inventory on the books means no
// inventory-method adjustment).
func SuggestAdjustments(standard models.AccountingStandard, fs *models.FinancialStatements) []string {
	hasInventory := true
	if fs != nil {
		if bs := fs.LatestBalanceSheet(); bs != nil {
			hasInventory = models.Val(bs.Inventory) > 0
		}
	}

	switch standard {
	case models.StandardGAAP:
		out := []string{}
		if hasInventory {
			out = append(out, "Check for LIFO inventory valuation (not allowed in IFRS)")
		}
		return append(out,
			"Review R&D expenses (may be capitalized in IFRS)",
			"Examine PPE for potential revaluation (IFRS allows)",
			"Review impairment losses (IFRS allows reversals)",
			"Check classification of extraordinary items",
		)
	case models.StandardIFRS:
		out := []string{
			"Review capitalized development costs (expensed in GAAP)",
			"Check for PPE revaluations (not in GAAP)",
			"Examine impairment reversals (not allowed in GAAP)",
			"Review OCI items and reclassifications",
		}
		if hasInventory {
			out = append(out, "Confirm FIFO/weighted-average inventory basis (LIFO would need restating)")
		}
		return append(out, "Check functional currency disclosures")
	default:
		return []string{"Unable to determine standard - manual review required"}
	}
}
