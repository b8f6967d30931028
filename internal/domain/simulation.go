package domain

import "time"

// SimulatedConversion is one hypothetical conversion generated by the
// discipline simulator. Exists only within one simulation run; never
// persisted as ground truth.
type SimulatedConversion struct {
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"` // synthetic rate at conversion time
	Currency  string    `json:"currency"`
}

// SimulationResult is the counterfactual fixed-monthly-conversion schedule
// derived from observed behavior.
type SimulationResult struct {
	Status               DataStatus            `json:"status"`
	Conversions          []SimulatedConversion `json:"simulatedConversions"`
	ConversionPercentage float64               `json:"conversionPercentage"` // fraction of balance per month
	TargetDayOfMonth     int                   `json:"targetDayOfMonth"`     // 1..28
	TotalAmount          float64               `json:"totalSimulatedAmount"`
	AverageAmount        float64               `json:"averageSimulatedAmount"`
}
