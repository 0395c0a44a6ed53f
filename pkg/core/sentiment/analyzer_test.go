package sentiment

import (
	"math"
	"testing"
)

func TestAnalyzePositiveText(t *testing.T) {
	got := NewAnalyzer().Analyze("record profit and strong growth")

	// 1. All four matches are bullish, so the ratio collapses to 1.
	if got.CompositeScore != 1.0 {
		t.Fatalf("CompositeScore = %g, want 1.0", got.CompositeScore)
	}
	if got.DominantSentiment != "positive" {
		t.Errorf("DominantSentiment = %q, want positive", got.DominantSentiment)
	}
	if got.PositiveHits != 4 || got.NegativeHits != 0 {
		t.Errorf("hits = %d/%d, want 4/0", got.PositiveHits, got.NegativeHits)
	}
}

func TestAnalyzeNegativeText(t *testing.T) {
	got := NewAnalyzer().Analyze("losses widened amid litigation and impairment charges")

	if got.CompositeScore != -1.0 {
		t.Fatalf("CompositeScore = %g, want -1.0", got.CompositeScore)
	}
	if got.DominantSentiment != "negative" {
		t.Errorf("DominantSentiment = %q, want negative", got.DominantSentiment)
	}
	if got.NegativeHits != 3 {
		t.Errorf("NegativeHits = %d, want 3", got.NegativeHits)
	}
}

func TestAnalyzeMixedTextIsNeutral(t *testing.T) {
	// strong (0.6) against declining (0.7) nets out inside the dead band.
	got := NewAnalyzer().Analyze("strong yet declining demand")

	want := (0.6 - 0.7) / (0.6 + 0.7)
	if math.Abs(got.CompositeScore-want) > 1e-9 {
		t.Fatalf("CompositeScore = %g, want %g", got.CompositeScore, want)
	}
	if got.DominantSentiment != "neutral" {
		t.Errorf("DominantSentiment = %q, want neutral", got.DominantSentiment)
	}
}

func TestAnalyzeIntensifierShiftsBalance(t *testing.T) {
	// "extremely" scales strong to 0.6*1.8, tipping the same sentence
	// from neutral to positive.
	got := NewAnalyzer().Analyze("extremely strong yet declining demand")

	want := (1.08 - 0.7) / (1.08 + 0.7)
	if math.Abs(got.CompositeScore-want) > 1e-9 {
		t.Fatalf("CompositeScore = %g, want %g", got.CompositeScore, want)
	}
	if got.DominantSentiment != "positive" {
		t.Errorf("DominantSentiment = %q, want positive", got.DominantSentiment)
	}
}

func TestAnalyzeNegationFlipsPolarity(t *testing.T) {
	got := NewAnalyzer().Analyze("no growth expected")

	if got.CompositeScore != -1.0 {
		t.Fatalf("CompositeScore = %g, want -1.0", got.CompositeScore)
	}
	if got.PositiveHits != 0 || got.NegativeHits != 1 {
		t.Errorf("hits = %d/%d, want 0/1", got.PositiveHits, got.NegativeHits)
	}
}

func TestAnalyzeBoilerplateRiskIsDamped(t *testing.T) {
	// "risks" carries a reduced weight so standard filing language does
	// not swamp a genuine signal.
	got := NewAnalyzer().Analyze("growth despite risks")

	want := (0.6 - 0.3) / (0.6 + 0.3)
	if math.Abs(got.CompositeScore-want) > 1e-9 {
		t.Fatalf("CompositeScore = %g, want %g", got.CompositeScore, want)
	}
	if got.DominantSentiment != "positive" {
		t.Errorf("DominantSentiment = %q, want positive", got.DominantSentiment)
	}
}

func TestAnalyzeEmptyTextIsNeutral(t *testing.T) {
	got := NewAnalyzer().Analyze("")

	if got.CompositeScore != 0 {
		t.Errorf("CompositeScore = %g, want 0", got.CompositeScore)
	}
	if got.DominantSentiment != "neutral" {
		t.Errorf("DominantSentiment = %q, want neutral", got.DominantSentiment)
	}
}

func TestAnalyzeNoMatchesIsNeutral(t *testing.T) {
	got := NewAnalyzer().Analyze("the quarterly filing discusses segment operations")

	if got.CompositeScore != 0 || got.PositiveHits != 0 || got.NegativeHits != 0 {
		t.Errorf("got score=%g hits=%d/%d, want all zero",
			got.CompositeScore, got.PositiveHits, got.NegativeHits)
	}
}

func TestAnalyzeReportCapsPages(t *testing.T) {
	// Page six is sharply negative but sits past the scoring window.
	pages := []string{"strong growth", "", "", "", "", "massive losses and decline"}
	got := NewAnalyzer().AnalyzeReport(pages)

	if got.CompositeScore != 1.0 {
		t.Fatalf("CompositeScore = %g, want 1.0", got.CompositeScore)
	}
	if got.PositiveHits != 2 || got.NegativeHits != 0 {
		t.Errorf("hits = %d/%d, want 2/0", got.PositiveHits, got.NegativeHits)
	}
}

func TestAnalyzeReportEmptyIsNeutral(t *testing.T) {
	got := NewAnalyzer().AnalyzeReport(nil)

	if got.CompositeScore != 0 {
		t.Errorf("CompositeScore = %g, want 0", got.CompositeScore)
	}
	if got.DominantSentiment != "neutral" {
		t.Errorf("DominantSentiment = %q, want neutral", got.DominantSentiment)
	}
}
