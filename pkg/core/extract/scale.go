package extract

import (
	"regexp"
	"strings"
)

// =============================================================================
// SCALE DETECTION - "(in millions)" phrases, then revenue-magnitude inference
// =============================================================================

var (
	billionPhrases = []string{
		"in billions", "в миллиардах", "($ in billions)", "($ in b)", "amounts in billions",
	}
	millionPhrases = []string{
		"in millions", "в миллионах", "($ in millions)", "($ in mm)", "amounts in millions",
		"figures in millions", "millions of dollars",
	}
	thousandPhrases = []string{
		"in thousands", "в тысячах", "($ in thousands)", "($ in k)", "amounts in thousands",
	}

	// Probe captures open on a digit so the lazy gap cannot satisfy the
	// whole match with a stretch of whitespace.
	scaleProbeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total\s+Revenue[^.\d%]*?(\d[\d\s,]*)`),
		regexp.MustCompile(`(?i)Revenue[^.\d%]*?(\d[\d\s,]*)`),
		regexp.MustCompile(`(?i)Выручка[^.\d%]*?(\d[\d\s,]*)`),
	}
)

// DetectScale returns the multiplier that converts reported figures to
// absolute units, with a human-readable unit name. Explicit unit phrases win;
// without one, a revenue figure in (1, 500000) is assumed to be stated in
// millions, since no filer of this document class reports sub-million revenue
// in absolute units.
func DetectScale(text string) (float64, string) {
	lower := strings.ToLower(text)

	for _, kw := range billionPhrases {
		if strings.Contains(lower, kw) {
			return 1e9, "billions"
		}
	}
	for _, kw := range millionPhrases {
		if strings.Contains(lower, kw) {
			return 1e6, "millions"
		}
	}
	for _, kw := range thousandPhrases {
		if strings.Contains(lower, kw) {
			return 1e3, "thousands"
		}
	}

	var probe float64
	for _, re := range scaleProbeRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := ParseNumber(m[1]); v > 1 {
				probe = v
				break
			}
		}
	}
	if probe > 1 && probe < 500000 {
		return 1e6, "millions"
	}

	return 1, "units"
}
