// Package sentiment scores financial text with weighted keyword lexicons.
// The scorer is deterministic and offline: composite = (positive - negative)
// over total matched weight, normalized to [-1, 1]. It feeds the
// recommendation engine, which treats a missing summary as neutral.
package sentiment

import (
	"strings"
	"unicode"

	"finanalyzer/pkg/models"
)

// maxReportPages caps how much of a filing is scored. Sentiment lives in
// the opening narrative; the statement tables behind it are noise.
const maxReportPages = 5

// Analyzer scores text against the packaged lexicons.
type Analyzer struct {
	positive     map[string]float64
	negative     map[string]float64
	intensifiers map[string]float64
	negators     map[string]bool
}

// NewAnalyzer builds an Analyzer with the built-in dictionaries.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		positive:     positiveLexicon(),
		negative:     negativeLexicon(),
		intensifiers: intensifierLexicon(),
		negators:     negatorLexicon(),
	}
}

// Analyze scores a text block. A negated sentiment word counts for the
// opposite side; an intensifier within two words scales the weight.
func (a *Analyzer) Analyze(text string) *models.SentimentSummary {
	words := tokenize(text)

	var posScore, negScore float64
	var posHits, negHits int

	for i, word := range words {
		weight, pos := a.positive[word]
		if !pos {
			weight = a.negative[word]
			if weight == 0 {
				continue
			}
		}
		weight *= a.intensity(words, i)
		if a.negated(words, i) {
			pos = !pos
		}
		if pos {
			posScore += weight
			posHits++
		} else {
			negScore += weight
			negHits++
		}
	}

	var composite float64
	if total := posScore + negScore; total > 0 {
		composite = (posScore - negScore) / total
	}

	return &models.SentimentSummary{
		CompositeScore:    composite,
		DominantSentiment: label(composite),
		PositiveHits:      posHits,
		NegativeHits:      negHits,
	}
}

// AnalyzeReport scores the opening pages of a filing.
func (a *Analyzer) AnalyzeReport(pages []string) *models.SentimentSummary {
	limit := len(pages)
	if limit > maxReportPages {
		limit = maxReportPages
	}
	return a.Analyze(strings.Join(pages[:limit], " "))
}

// label maps a composite score to the dominant-sentiment vocabulary.
func label(composite float64) string {
	switch {
	case composite > 0.1:
		return "positive"
	case composite < -0.1:
		return "negative"
	default:
		return "neutral"
	}
}

// negated reports whether any of the three preceding words negates.
func (a *Analyzer) negated(words []string, i int) bool {
	start := i - 3
	if start < 0 {
		start = 0
	}
	for j := start; j < i; j++ {
		if a.negators[words[j]] {
			return true
		}
	}
	return false
}

// intensity returns the multiplier of the nearest preceding intensifier
// within two words, or 1.
func (a *Analyzer) intensity(words []string, i int) float64 {
	start := i - 2
	if start < 0 {
		start = 0
	}
	for j := start; j < i; j++ {
		if mult, ok := a.intensifiers[words[j]]; ok {
			return mult
		}
	}
	return 1.0
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	var words []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}
