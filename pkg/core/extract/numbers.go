package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var nonNumericRe = regexp.MustCompile(`[^\d.-]`)

// ParseNumber converts a formatted financial figure to a float. It accepts
// US ("1,234.56") and EU/RU ("1.234,56", "1 234 567") separator styles,
// parenthesized negatives and non-breaking spaces.
//
// Disambiguation when separators are ambiguous:
//   - both "." and "," present: the rightmost one is the decimal point
//   - only commas, more than one: thousands separators
//   - a single separator: decimal point
//
// Unparseable input yields 0, never an error; extraction treats 0 as
// "not found" throughout.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			// 1,234.56 style
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// 1.234,56 style
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	case hasComma:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case hasDot:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	s = nonNumericRe.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
