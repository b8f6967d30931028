package domain

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// RecommendationResult is the synthesized advice derived from a CostResult
// and a ScoreResult. Message is the single-sentence form; Priority and Tips
// are the extended form.
type RecommendationResult struct {
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
	Tips     []string `json:"tips,omitempty"`
}
