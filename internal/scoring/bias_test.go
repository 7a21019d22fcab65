package scoring

import (
	"testing"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

func strPtr(s string) *string { return &s }

func TestConfirmationBiasTwoIndicators(t *testing.T) {
	d := models.Decision{
		Reasoning: "Obviously the benefit is huge, a big advantage with positive outlook and more benefits",
	}
	biases := AnalyzeDecision(d)

	var found *CognitiveBias
	for i := range biases {
		if biases[i].Type == BiasConfirmation {
			found = &biases[i]
		}
	}
	if found == nil {
		t.Fatal("expected confirmation_bias")
	}
	if len(found.Indicators) != 2 {
		t.Fatalf("indicators = %v, want 2", found.Indicators)
	}
	if found.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", found.Confidence)
	}
}

func TestConfirmationBiasBalancedReasoningClean(t *testing.T) {
	d := models.Decision{
		Reasoning: "The benefit is real but the drawback and risk are considerable",
	}
	for _, b := range AnalyzeDecision(d) {
		if b.Type == BiasConfirmation {
			t.Errorf("balanced reasoning should not trigger confirmation bias: %+v", b)
		}
	}
}

func TestOptimismBiasRequiresTwoIndicators(t *testing.T) {
	// Superlative outcome with a risk mention: only one indicator, no bias.
	d := models.Decision{
		ExpectedOutcome: "A perfect launch, though the schedule risk is real",
	}
	for _, b := range AnalyzeDecision(d) {
		if b.Type == BiasOptimism {
			t.Errorf("one indicator should not trigger optimism bias")
		}
	}

	// Superlative outcome, no risk words, high confidence at low load.
	conf, load := 9, 2
	d = models.Decision{
		ExpectedOutcome: "The ideal result, everything excellent",
		ConfidenceLevel: &conf,
		CognitiveLoad:   &load,
	}
	var found *CognitiveBias
	for _, b := range AnalyzeDecision(d) {
		if b.Type == BiasOptimism {
			b := b
			found = &b
		}
	}
	if found == nil {
		t.Fatal("expected optimism_bias")
	}
	if len(found.Indicators) != 3 {
		t.Errorf("indicators = %v, want 3", found.Indicators)
	}
	if found.Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", found.Confidence)
	}
}

func TestAnchoringNumericToken(t *testing.T) {
	d := models.Decision{
		Context:   "Vendor quoted $40,000 for the contract, later revised to $35,000",
		Reasoning: "We negotiated but kept comparing against $40,000 the whole time",
	}
	var found *CognitiveBias
	for _, b := range AnalyzeDecision(d) {
		if b.Type == BiasAnchoring {
			b := b
			found = &b
		}
	}
	if found == nil {
		t.Fatal("expected anchoring")
	}
	if found.Confidence != 0.6 {
		t.Errorf("confidence = %v, want fixed 0.6", found.Confidence)
	}
}

func TestSunkCostBothIndicators(t *testing.T) {
	d := models.Decision{
		Reasoning: "We have already invested two years and can't give up now",
	}
	var found *CognitiveBias
	for _, b := range AnalyzeDecision(d) {
		if b.Type == BiasSunkCost {
			b := b
			found = &b
		}
	}
	if found == nil {
		t.Fatal("expected sunk_cost")
	}
	if len(found.Indicators) != 2 {
		t.Errorf("indicators = %v, want 2", found.Indicators)
	}
	if found.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", found.Confidence)
	}
}

func TestOutcomeSimilarity(t *testing.T) {
	if got := OutcomeSimilarity("ship the feature on time", "ship the feature on time"); got != 1.0 {
		t.Errorf("identical texts = %v, want 1.0", got)
	}
	if got := OutcomeSimilarity("alpha beta", "gamma delta"); got != 0 {
		t.Errorf("disjoint texts = %v, want 0", got)
	}
	got := OutcomeSimilarity("a b c d", "a b c e")
	if got <= 0.5 || got >= 0.7 {
		t.Errorf("partial overlap = %v, want 3/5", got)
	}
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -30)
	conf := 8

	decisions := []models.Decision{
		{
			ID:              "d1",
			Reasoning:       "Obviously the right call",
			ExpectedOutcome: "ship the feature on time",
			ActualOutcome:   strPtr("ship the feature on time"),
			ConfidenceLevel: &conf,
			CreatedAt:       now.AddDate(0, 0, -5).UnixMilli(),
		},
		{
			ID:        "d2",
			Reasoning: "clearly correct",
			CreatedAt: now.AddDate(0, 0, -3).UnixMilli(),
		},
		{
			// Outside the period; must be excluded.
			ID:        "d3",
			Reasoning: "obviously",
			CreatedAt: now.AddDate(0, 0, -60).UnixMilli(),
		},
	}

	report := BuildReport(decisions, start, now)
	if report.TotalDecisions != 2 {
		t.Fatalf("totalDecisions = %d, want 2", report.TotalDecisions)
	}
	if len(report.MostCommonBiases) == 0 || report.MostCommonBiases[0].Type != BiasConfirmation {
		t.Fatalf("mostCommonBiases = %+v", report.MostCommonBiases)
	}
	if report.MostCommonBiases[0].Occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", report.MostCommonBiases[0].Occurrences)
	}
	if report.MostCommonBiases[0].Percentage != 100 {
		t.Errorf("percentage = %v, want 100", report.MostCommonBiases[0].Percentage)
	}
	if report.AccuracyRate != 100 {
		t.Errorf("accuracyRate = %v, want 100", report.AccuracyRate)
	}
	if report.AverageConfidence != 4 {
		t.Errorf("averageConfidence = %v, want 4", report.AverageConfidence)
	}
	if len(report.Recommendations) != 1 {
		t.Errorf("recommendations = %v", report.Recommendations)
	}
}
