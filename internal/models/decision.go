package models

// Decision is a locally cached decision record. The free-text fields feed the
// cognitive-bias heuristics in the scoring package.
type Decision struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Context         string     `json:"context"`
	ChosenOption    string     `json:"chosenOption"`
	Reasoning       string     `json:"reasoning"`
	ExpectedOutcome string     `json:"expectedOutcome"`
	ActualOutcome   *string    `json:"actualOutcome"`
	EmotionalState  *string    `json:"emotionalState"`
	CognitiveLoad   *int       `json:"cognitiveLoad"`
	ConfidenceLevel *int       `json:"confidenceLevel"`
	CreatedAt       int64      `json:"createdAt"`
	UpdatedAt       int64      `json:"updatedAt"`
	SyncStatus      SyncStatus `json:"syncStatus"`
}
