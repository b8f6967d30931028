package domain

// CostType tags the sign of the cost delta between actual behavior and the
// disciplined counterfactual.
type CostType string

const (
	CostTypeSaved CostType = "saved" // actual behavior cheaper or equal
	CostTypeLost  CostType = "lost"  // discipline rule would have done better
)

// CostResult is the Cost/Savings Calculator output. Amount is always
// non-negative; Type carries the sign.
type CostResult struct {
	Status             DataStatus `json:"status"`
	Amount             float64    `json:"costOrSavedAmount"`
	Type               CostType   `json:"costType"`
	Currency           string     `json:"currency"`
	ActualCostBasis    float64    `json:"actualCostBasis"`
	SimulatedCostBasis float64    `json:"simulatedCostBasis"`
	ConversionCount    int        `json:"conversionCount"`
}
