package scoring

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

// BiasType tags a detected cognitive bias.
type BiasType string

const (
	BiasConfirmation BiasType = "confirmation_bias"
	BiasAnchoring    BiasType = "anchoring"
	BiasSunkCost     BiasType = "sunk_cost"
	BiasAvailability BiasType = "availability_heuristic"
	BiasOptimism     BiasType = "optimism_bias"
	BiasLossAversion BiasType = "loss_aversion"
	BiasGroupthink   BiasType = "groupthink"
)

// CognitiveBias is one detected bias with the textual indicators that
// triggered it, in detection order.
type CognitiveBias struct {
	Type       BiasType `json:"type"`
	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators"`
}

var (
	positiveWords = regexp.MustCompile(`pro|benefit|advantage|positive`)
	negativeWords = regexp.MustCompile(`con|drawback|disadvantage|negative|risk`)
	superlatives  = regexp.MustCompile(`perfect|ideal|best|excellent|amazing`)
	riskWords     = regexp.MustCompile(`risk|challenge|problem|difficulty|issue`)
	initialWords  = regexp.MustCompile(`first|initial|originally|started with`)
	numericTokens = regexp.MustCompile(`\$[\d,]+|\d+%`)
	pastInvest    = regexp.MustCompile(`already invested|spent so much|come this far|waste`)
	commitment    = regexp.MustCompile(`can't give up|too late to stop|committed`)
)

// AnalyzeDecision runs every bias detector against a decision's free text.
func AnalyzeDecision(d models.Decision) []CognitiveBias {
	var biases []CognitiveBias
	if b := detectConfirmationBias(d); b != nil {
		biases = append(biases, *b)
	}
	if b := detectOptimismBias(d); b != nil {
		biases = append(biases, *b)
	}
	if b := detectAnchoring(d); b != nil {
		biases = append(biases, *b)
	}
	if b := detectSunkCost(d); b != nil {
		biases = append(biases, *b)
	}
	return biases
}

func detectConfirmationBias(d models.Decision) *CognitiveBias {
	reasoning := strings.ToLower(d.Reasoning)
	var indicators []string

	pros := len(positiveWords.FindAllString(reasoning, -1))
	cons := len(negativeWords.FindAllString(reasoning, -1))
	if pros > cons*3 {
		indicators = append(indicators, "Reasoning heavily focuses on positive aspects")
	}
	if strings.Contains(reasoning, "obviously") || strings.Contains(reasoning, "clearly") {
		indicators = append(indicators, "Uses absolutist language dismissing alternatives")
	}

	if len(indicators) == 0 {
		return nil
	}
	return &CognitiveBias{
		Type:       BiasConfirmation,
		Confidence: min(float64(len(indicators))*0.3, 0.85),
		Indicators: indicators,
	}
}

func detectOptimismBias(d models.Decision) *CognitiveBias {
	if d.ExpectedOutcome == "" {
		return nil
	}
	outcome := strings.ToLower(d.ExpectedOutcome)
	var indicators []string

	if superlatives.MatchString(outcome) {
		indicators = append(indicators, "Uses extremely positive language in expected outcome")
	}
	if !riskWords.MatchString(outcome) {
		indicators = append(indicators, "No risk factors mentioned in expected outcome")
	}
	if d.ConfidenceLevel != nil && d.CognitiveLoad != nil && *d.ConfidenceLevel >= 8 && *d.CognitiveLoad <= 3 {
		indicators = append(indicators, "High confidence despite low cognitive effort")
	}

	if len(indicators) < 2 {
		return nil
	}
	return &CognitiveBias{
		Type:       BiasOptimism,
		Confidence: min(float64(len(indicators))*0.25, 0.8),
		Indicators: indicators,
	}
}

func detectAnchoring(d models.Decision) *CognitiveBias {
	context := strings.ToLower(d.Context)
	reasoning := strings.ToLower(d.Reasoning)
	var indicators []string

	if initialWords.MatchString(reasoning) {
		indicators = append(indicators, "Heavy reliance on initial information")
	}

	// The first currency/percent token in context reappearing in reasoning
	// suggests the decision never moved off the anchor.
	if anchors := numericTokens.FindAllString(context, -1); len(anchors) > 0 {
		for _, n := range numericTokens.FindAllString(reasoning, -1) {
			if n == anchors[0] {
				indicators = append(indicators, "Decision anchored to initial numerical value")
				break
			}
		}
	}

	if len(indicators) == 0 {
		return nil
	}
	return &CognitiveBias{Type: BiasAnchoring, Confidence: 0.6, Indicators: indicators}
}

func detectSunkCost(d models.Decision) *CognitiveBias {
	reasoning := strings.ToLower(d.Reasoning)
	var indicators []string

	if pastInvest.MatchString(reasoning) {
		indicators = append(indicators, "References to past investments driving decision")
	}
	if commitment.MatchString(reasoning) {
		indicators = append(indicators, "Emotional attachment to prior commitment")
	}

	if len(indicators) == 0 {
		return nil
	}
	return &CognitiveBias{
		Type:       BiasSunkCost,
		Confidence: min(float64(len(indicators))*0.35, 0.9),
		Indicators: indicators,
	}
}

// BiasFrequency is one bias type's share of a reporting period.
type BiasFrequency struct {
	Type        BiasType `json:"type"`
	Occurrences int      `json:"occurrences"`
	Percentage  float64  `json:"percentage"`
}

// BiasReport aggregates bias detection over a date range.
type BiasReport struct {
	Start             time.Time       `json:"start"`
	End               time.Time       `json:"end"`
	TotalDecisions    int             `json:"totalDecisions"`
	MostCommonBiases  []BiasFrequency `json:"mostCommonBiases"`
	AccuracyRate      float64         `json:"accuracyRate"`
	AverageConfidence float64         `json:"averageConfidence"`
	Recommendations   []string        `json:"recommendations"`
}

// BuildReport tallies bias frequency, outcome accuracy, and average recorded
// confidence across the decisions created within [start, end].
func BuildReport(decisions []models.Decision, start, end time.Time) BiasReport {
	startMs, endMs := start.UnixMilli(), end.UnixMilli()

	var inPeriod []models.Decision
	for _, d := range decisions {
		if d.CreatedAt >= startMs && d.CreatedAt <= endMs {
			inPeriod = append(inPeriod, d)
		}
	}

	freq := make(map[BiasType]int)
	withOutcome := 0
	accurate := 0
	totalConfidence := 0
	for _, d := range inPeriod {
		for _, b := range AnalyzeDecision(d) {
			freq[b.Type]++
		}
		if d.ActualOutcome != nil && *d.ActualOutcome != "" {
			withOutcome++
			if OutcomeSimilarity(d.ExpectedOutcome, *d.ActualOutcome) > 0.7 {
				accurate++
			}
		}
		if d.ConfidenceLevel != nil {
			totalConfidence += *d.ConfidenceLevel
		}
	}

	common := make([]BiasFrequency, 0, len(freq))
	for t, n := range freq {
		common = append(common, BiasFrequency{
			Type:        t,
			Occurrences: n,
			Percentage:  float64(n) / float64(len(inPeriod)) * 100,
		})
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].Occurrences != common[j].Occurrences {
			return common[i].Occurrences > common[j].Occurrences
		}
		return common[i].Type < common[j].Type
	})

	report := BiasReport{
		Start:            start,
		End:              end,
		TotalDecisions:   len(inPeriod),
		MostCommonBiases: common,
		Recommendations:  recommendations(freq),
	}
	if withOutcome > 0 {
		report.AccuracyRate = float64(accurate) / float64(withOutcome) * 100
	}
	if len(inPeriod) > 0 {
		report.AverageConfidence = float64(totalConfidence) / float64(len(inPeriod))
	}
	return report
}

// OutcomeSimilarity is the Jaccard similarity of the two texts' word sets.
func OutcomeSimilarity(expected, actual string) float64 {
	a := wordSet(expected)
	b := wordSet(actual)
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}

func recommendations(freq map[BiasType]int) []string {
	var out []string
	if freq[BiasConfirmation] > 0 {
		out = append(out, "Actively seek disconfirming evidence before making decisions")
	}
	if freq[BiasOptimism] > 0 {
		out = append(out, "List potential risks and worst-case scenarios explicitly")
	}
	if freq[BiasSunkCost] > 0 {
		out = append(out, "Evaluate decisions based on future value, not past investment")
	}
	return out
}
