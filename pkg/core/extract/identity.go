package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"finanalyzer/pkg/models"
)

// =============================================================================
// IDENTITY DETECTION - company name, ticker, report type, fiscal year, currency
// =============================================================================

// Cover pages of large filers name the company far more reliably than any
// generic suffix heuristic, so known issuers are checked first.
var knownIssuers = []string{
	"TESLA", "APPLE", "MICROSOFT", "AMAZON", "ALPHABET", "META", "NVIDIA", "NETFLIX",
}

var (
	corpSuffixUpperRe = regexp.MustCompile(`(?m)^([A-Z0-9][A-Z0-9\s,&’]+(?:INC\.|CORP\.|CORPORATION|LTD\.|GROUP|PLC))`)
	corpSuffixMidRe   = regexp.MustCompile(`([A-Z][A-Z\s,&]+(?:INC\.|CORP\.|CORPORATION))`)
	ruEntityRe        = regexp.MustCompile(`(?i)(?:ТОО|АО|ООО|ПАО)\s+[«"]?([\p{L}\p{N}\s-]+)[»"]?`)
	tickerRe          = regexp.MustCompile(`(?i)(?:NASDAQ|NYSE|OTC|TSX)\s*:\s*([A-Z]{1,5})`)

	fiscalYearRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)fiscal year ended.*?20(\d{2})`),
		regexp.MustCompile(`(?i)quarter ended.*?20(\d{2})`),
		regexp.MustCompile(`(?i)For the quarterly period ended.*?20(\d{2})`),
		regexp.MustCompile(`(?i)(?:год|года),?\s+закончившийся.*?20(\d{2})`),
		regexp.MustCompile(`(?i)за.*?20(\d{2})\s+год`),
	}
)

// DetectCompanyName looks for the issuer name on the first page: known large
// issuers first, then corporate-suffix lines, then Russian entity forms.
func DetectCompanyName(firstPage string) string {
	upper := strings.ToUpper(firstPage)

	for _, kw := range knownIssuers {
		if !strings.Contains(upper, kw) {
			continue
		}
		lineRe := regexp.MustCompile(`(?m)^.*` + kw + `.*$`)
		if m := lineRe.FindString(upper); m != "" {
			return titleCase(strings.TrimSpace(m))
		}
	}

	if m := corpSuffixUpperRe.FindStringSubmatch(upper); m != nil {
		return titleCase(strings.TrimSpace(m[1]))
	}
	if m := corpSuffixMidRe.FindStringSubmatch(firstPage); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := ruEntityRe.FindString(firstPage); m != "" {
		return strings.TrimSpace(m)
	}

	return "Unknown Company"
}

// DetectTicker scans the leading pages for exchange-prefixed symbols such as
// "NASDAQ: AAPL" or "(NYSE: GE)". Empty string when none is found.
func DetectTicker(sample string) string {
	if m := tickerRe.FindStringSubmatch(sample); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// DetectReportType classifies the filing from its opening text. Quarterly
// markers are checked before annual ones because 10-Q cover pages routinely
// reference the preceding 10-K.
func DetectReportType(text string) models.ReportType {
	head := text
	if len(head) > 5000 {
		head = head[:5000]
	}
	head = strings.ToUpper(head)

	if strings.Contains(head, "FORM 10-Q") || strings.Contains(head, "QUARTERLY REPORT") {
		return models.Report10Q
	}
	if strings.Contains(head, "FORM 10-K") || strings.Contains(head, "ANNUAL REPORT") {
		return models.Report10K
	}
	if strings.Contains(head, "ОТЧЕТ") || strings.Contains(head, "ОТЧЁТ") {
		return models.Report10K
	}
	return models.Report10K
}

// DetectFiscalYear finds the covered fiscal year from "fiscal year ended"
// style phrasing (EN + RU). def is returned when nothing matches.
func DetectFiscalYear(text string, def int) int {
	for _, re := range fiscalYearRes {
		if m := re.FindStringSubmatch(text); m != nil {
			yy, err := strconv.Atoi(m[1])
			if err == nil {
				return 2000 + yy
			}
		}
	}
	return def
}

// DetectCurrency infers the reporting currency from symbols and currency
// words. Tenge and ruble markers are checked before the dollar default since
// CIS filings frequently quote USD comparatives alongside local amounts.
func DetectCurrency(text string) models.Currency {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "₸") || strings.Contains(lower, "тенге") || strings.Contains(text, "KZT"):
		return models.CurrencyKZT
	case strings.Contains(text, "₽") || strings.Contains(lower, "руб") || strings.Contains(text, "RUB"):
		return models.CurrencyRUB
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return models.CurrencyEUR
	default:
		return models.CurrencyUSD
	}
}

// titleCase lowercases a shouting cover-page line and capitalizes each word,
// mirroring how issuer names are usually printed in prose.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range strings.ToLower(s) {
		if startOfWord && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		} else {
			b.WriteRune(r)
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				startOfWord = true
			}
		}
	}
	return b.String()
}
