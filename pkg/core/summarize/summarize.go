// Package summarize turns filing text and a finished model into analyst
// prose: a bullet summary, a risk list and an executive narrative. A hosted
// model writes them when one is configured; otherwise deterministic
// templates run, so the pipeline works fully offline.
package summarize

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"finanalyzer/pkg/core/llm"
	"finanalyzer/pkg/core/utils"
	"finanalyzer/pkg/models"
)

const (
	summarySystem   = "You are a senior equity research analyst. Write tight, factual prose with no preamble."
	riskSystem      = `You are a risk officer reviewing a filing. Respond with JSON only: {"risks": ["...", "...", "..."]}.`
	narrativeSystem = "You are a portfolio manager writing for an investment committee."
)

// Summarizer generates the AI sections of an analysis. Either client may
// be nil; every method degrades to a template before it fails.
type Summarizer struct {
	provider  llm.Provider
	narrative *NarrativeClient
}

// New wraps a provider, attaching the direct narrative client when its
// key is present in the environment.
func New(provider llm.Provider) *Summarizer {
	return &Summarizer{provider: provider, narrative: NarrativeClientFromEnv()}
}

// NewFromEnv builds a Summarizer from whatever keys the environment holds.
func NewFromEnv() *Summarizer {
	return New(llm.FromEnv())
}

// Summarize condenses filing text into a few professional bullet points.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	if text == "" {
		return "No text provided for summarization."
	}

	window := analyticalWindow(text)
	prompt := "Summarize the following financial results into 3-4 professional bullet points. TEXT: " + window

	if s.provider != nil {
		out, err := s.provider.GenerateResponse(ctx, prompt, summarySystem, nil)
		if err == nil && out != "" {
			return out
		}
		log.Printf("[SUMMARY] provider failed: %v; using template", err)
	}
	return templateSummary(window)
}

// ExtractRisks pulls the top business risks out of filing text. The model
// is asked for a JSON list; malformed output goes through SmartParse and
// then a sentence-split heuristic before the template takes over.
func (s *Summarizer) ExtractRisks(ctx context.Context, text string) []string {
	if text == "" {
		return []string{"No text provided."}
	}

	window := sliceBytes(text, 0, 3000)

	if s.provider != nil {
		prompt := `Extract the top 3 financial risks from this filing excerpt as JSON {"risks": [...]}. TEXT: ` + window
		out, err := s.provider.GenerateResponse(ctx, prompt, riskSystem, map[string]interface{}{
			"response_format": "json_object",
		})
		if err == nil {
			var payload struct {
				Risks []string `json:"risks"`
			}
			if _, perr := utils.SmartParse(out, &payload); perr == nil && len(payload.Risks) > 0 {
				if len(payload.Risks) > 3 {
					payload.Risks = payload.Risks[:3]
				}
				return payload.Risks
			}
			if risks := splitRisks(out); len(risks) > 0 {
				return risks
			}
		} else {
			log.Printf("[SUMMARY] risk extraction failed: %v; using template", err)
		}
	}
	return templateRisks(window)
}

// ExecutiveNarrative writes a three-sentence investment story from the
// finished model. aiSummary is the Summarize output, folded in as findings.
func (s *Summarizer) ExecutiveNarrative(ctx context.Context, m *models.LinkedModel, aiSummary string) string {
	latest := m.LastHistoricalIncome()
	if latest == nil {
		return "Investment narrative could not be generated."
	}

	revenue := models.Val(latest.Revenue)
	margin := m.Assumptions.OperatingMargin
	rec := string(m.Recommendation)
	if rec == "" {
		rec = "N/A"
	}
	target := models.Val(m.TargetPrice)
	upside := models.Val(m.UpsidePotential)

	prompt := fmt.Sprintf(
		"Provide a 3-sentence investment narrative for %s. Revenue: $%s, Margin: %.1f%%, Rating: %s, Target: $%.2f (%+.1f%%). Findings: %s",
		m.CompanyName, formatAmount(revenue), margin*100, rec, target, upside*100,
		sliceBytes(aiSummary, 0, 300),
	)

	if s.narrative != nil {
		out, err := s.narrative.Generate(ctx, narrativeSystem, prompt)
		if err == nil && out != "" {
			return out
		}
		log.Printf("[SUMMARY] narrative client failed: %v", err)
	}
	if s.provider != nil {
		out, err := s.provider.GenerateResponse(ctx, prompt, narrativeSystem, nil)
		if err == nil && out != "" {
			return out
		}
		log.Printf("[SUMMARY] narrative provider failed: %v; using template", err)
	}

	finding := firstSentence(aiSummary)
	if finding == "" {
		finding = "Fundamental drivers are detailed in the forecast and valuation sections."
	}
	return fmt.Sprintf(
		"%s reported revenue of $%s with an operating margin of %.1f%%. The linked model rates the stock %s with a target price of $%.2f (%+.1f%% against the current quote). %s",
		m.CompanyName, formatAmount(revenue), margin*100, rec, target, upside*100, finding,
	)
}

// --- Text windows ---

// analyticalWindow skips the legal cover page of an SEC filing when one is
// present. Checkbox boilerplate in the first pages drowns any summary, so
// the window moves past it to the results discussion.
func analyticalWindow(text string) string {
	head := sliceBytes(text, 0, 3000)
	if strings.Contains(head, "Indicate by check mark") || strings.Contains(head, "Registrant") {
		return sliceBytes(text, 3000, 7000)
	}
	return sliceBytes(text, 0, 4000)
}

// sliceBytes is a bounds-clamped byte slice.
func sliceBytes(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

// --- Template fallbacks ---

// templateSummary bullets the first sentences of the analytical window.
func templateSummary(window string) string {
	sentences := splitSentences(window)
	if len(sentences) == 0 {
		return "AI Summary unavailable."
	}
	if len(sentences) > 4 {
		sentences = sentences[:4]
	}
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString("- ")
		b.WriteString(s)
		b.WriteString(".\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var riskMarkers = []string{
	"risk", "litigation", "competition", "regulatory",
	"uncertain", "adverse", "depend",
}

// templateRisks keeps sentences that read like risk disclosures.
func templateRisks(window string) []string {
	var risks []string
	for _, sentence := range splitSentences(window) {
		lower := strings.ToLower(sentence)
		for _, marker := range riskMarkers {
			if strings.Contains(lower, marker) {
				risks = append(risks, sentence)
				break
			}
		}
		if len(risks) == 3 {
			break
		}
	}
	if len(risks) == 0 {
		return []string{"Risk extraction unavailable."}
	}
	return risks
}

// splitRisks breaks model prose into at most three risk statements.
func splitRisks(text string) []string {
	var risks []string
	for _, part := range strings.Split(text, ".") {
		if len(part) > 10 {
			risks = append(risks, strings.TrimSpace(part))
		}
		if len(risks) == 3 {
			break
		}
	}
	return risks
}

func splitSentences(text string) []string {
	var sentences []string
	for _, part := range strings.Split(text, ".") {
		trimmed := strings.TrimSpace(part)
		if len(trimmed) > 10 {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func firstSentence(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	return strings.TrimPrefix(sentences[0], "- ") + "."
}

// formatAmount renders a dollar amount with thousands separators and no
// decimals.
func formatAmount(v float64) string {
	digits := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	if v < 0 {
		return "-" + b.String()
	}
	return b.String()
}
