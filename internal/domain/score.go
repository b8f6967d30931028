package domain

// ScoreResult is the Discipline Scorer output: a weighted 0-100 overall
// score with its three component sub-scores and a generated explanation.
type ScoreResult struct {
	Status      DataStatus `json:"status"`
	Overall     int        `json:"overall"`
	Frequency   int        `json:"frequency"`
	Consistency int        `json:"consistency"`
	Timing      int        `json:"timing"`
	Explanation string     `json:"explanation"`
}
