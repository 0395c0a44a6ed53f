package classify

import (
	"math"
	"strings"
	"testing"

	"finanalyzer/pkg/models"
)

const gaapText = "Prepared in accordance with US GAAP as issued by the FASB. " +
	"Statement of Operations. Treasury stock repurchases continued."

const ifrsText = "These consolidated statements comply with International Financial " +
	"Reporting Standards (IFRS) as issued by the IASB. " +
	"Statement of Financial Position. Finance costs rose."

func TestClassifyGAAP(t *testing.T) {
	// "us gaap" x1 (+2) + "fasb" x1 (+2) + statement name (+5)
	// + "treasury stock" (+3) + FASB body x1 (+1.5) = 13.5
	res := Classify(gaapText)

	if res.Standard != models.StandardGAAP {
		t.Fatalf("Expected GAAP, got %s", res.Standard)
	}
	if math.Abs(res.Evidence.GAAPScore-13.5) > 0.0001 {
		t.Errorf("Expected GAAP score 13.5, got %f", res.Evidence.GAAPScore)
	}
	if res.Evidence.IFRSScore != 0 {
		t.Errorf("Expected IFRS score 0, got %f", res.Evidence.IFRSScore)
	}
	// 13.5 / 13.51 exceeds the cap.
	if math.Abs(res.Confidence-0.99) > 0.0001 {
		t.Errorf("Expected confidence 0.99, got %f", res.Confidence)
	}
}

func TestClassifyIFRS(t *testing.T) {
	// Keywords: full phrase (+2), "ifrs" (+2), "ias" inside "iasb" (+2),
	// "iasb" (+2); statement name (+5); "finance costs" (+3);
	// IASB body x1 (+1.5) = 17.5.
	res := Classify(ifrsText)

	if res.Standard != models.StandardIFRS {
		t.Fatalf("Expected IFRS, got %s", res.Standard)
	}
	if math.Abs(res.Evidence.IFRSScore-17.5) > 0.0001 {
		t.Errorf("Expected IFRS score 17.5, got %f", res.Evidence.IFRSScore)
	}
	if res.Confidence != 0.99 {
		t.Errorf("Expected confidence 0.99, got %f", res.Confidence)
	}
}

func TestClassifyMixedDominance(t *testing.T) {
	// A GAAP filing that mentions IFRS once still classifies GAAP, with
	// confidence diluted by the opposing evidence.
	res := Classify(gaapText + " while ifrs is not applied")

	if res.Standard != models.StandardGAAP {
		t.Fatalf("Expected GAAP, got %s", res.Standard)
	}
	want := 13.5 / (13.5 + 2 + 0.01)
	if math.Abs(res.Confidence-want) > 0.0001 {
		t.Errorf("Expected confidence %f, got %f", want, res.Confidence)
	}
}

func TestClassifyUnknownWhenSilent(t *testing.T) {
	res := Classify("The quarterly dividend was declared and paid in January.")

	if res.Standard != models.StandardUnknown {
		t.Fatalf("Expected UNKNOWN, got %s", res.Standard)
	}
	if res.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %f", res.Confidence)
	}
}

func TestClassifyScoreFloor(t *testing.T) {
	// One regulatory-body mention (1.5) wins against zero but does not clear
	// the floor, so the call stays UNKNOWN.
	res := Classify("Reviewed by the PCAOB.")

	if math.Abs(res.Evidence.GAAPScore-1.5) > 0.0001 {
		t.Fatalf("Expected GAAP score 1.5, got %f", res.Evidence.GAAPScore)
	}
	if res.Standard != models.StandardUnknown {
		t.Errorf("Expected UNKNOWN below floor, got %s", res.Standard)
	}
}

func TestRegulatoryBodyWordBoundary(t *testing.T) {
	// "section" must not count as an SEC body mention; the keyword counter
	// may still see the substring, but the body counter must not.
	res := Classify("As described in section 4 of this agreement between the parties.")

	for _, m := range res.Evidence.RegulatoryMentions {
		if strings.Contains(m, "SEC") {
			t.Errorf("Unexpected SEC body mention from 'section': %v", res.Evidence.RegulatoryMentions)
		}
	}
}

func TestKeyDifferences(t *testing.T) {
	gaap := KeyDifferences(models.StandardGAAP)
	if gaap["development_costs"] != "Expensed as incurred (R&D)" {
		t.Errorf("Unexpected GAAP development_costs: %q", gaap["development_costs"])
	}

	ifrs := KeyDifferences(models.StandardIFRS)
	if !strings.Contains(ifrs["inventory_valuation"], "LIFO prohibited") {
		t.Errorf("Unexpected IFRS inventory_valuation: %q", ifrs["inventory_valuation"])
	}

	if len(KeyDifferences(models.StandardUnknown)) != 0 {
		t.Error("Expected empty map for UNKNOWN")
	}
}

func TestSuggestAdjustments(t *testing.T) {
	out := SuggestAdjustments(models.StandardGAAP, nil)
	if len(out) != 5 {
		t.Fatalf("Expected 5 GAAP suggestions, got %d", len(out))
	}
	if !strings.Contains(out[0], "LIFO") {
		t.Errorf("Expected LIFO check first, got %q", out[0])
	}

	// No inventory on the books: the inventory-method check is pruned.
	fs := &models.FinancialStatements{
		BalanceSheets: []models.BalanceSheet{{Inventory: models.Ptr(0)}},
	}
	out = SuggestAdjustments(models.StandardGAAP, fs)
	if len(out) != 4 {
		t.Fatalf("Expected 4 suggestions without inventory, got %d", len(out))
	}
	for _, s := range out {
		if strings.Contains(s, "LIFO") {
			t.Errorf("Inventory suggestion should be pruned: %q", s)
		}
	}

	out = SuggestAdjustments(models.StandardUnknown, nil)
	if len(out) != 1 || !strings.Contains(out[0], "manual review") {
		t.Errorf("Unexpected UNKNOWN suggestions: %v", out)
	}
}
