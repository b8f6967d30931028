package domain

// DataStatus tags a stage result as computed or as the insufficient-data
// sentinel. Stages never return errors for short inputs; they return a
// zeroed result tagged StatusInsufficientData instead.
type DataStatus string

const (
	StatusComputed         DataStatus = "computed"
	StatusInsufficientData DataStatus = "insufficient-data"
)

// MinEventsForAnalysis is the minimum number of conversion events required
// before frequency classification, simulation and scoring carry statistical
// meaning. Below this every stage returns its insufficient-data sentinel.
const MinEventsForAnalysis = 2
