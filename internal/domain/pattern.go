package domain

import "time"

// FrequencyPattern classifies the cadence of a conversion event sequence.
type FrequencyPattern string

const (
	FrequencyDaily            FrequencyPattern = "daily"
	FrequencyWeekly           FrequencyPattern = "weekly"
	FrequencyBiWeekly         FrequencyPattern = "bi-weekly"
	FrequencyMonthly          FrequencyPattern = "monthly"
	FrequencyIrregular        FrequencyPattern = "irregular"
	FrequencyInsufficientData FrequencyPattern = "insufficient-data"
)

// PatternResult is the Pattern Detector output: frequency classification
// plus aggregate statistics over the conversion sequence.
type PatternResult struct {
	Conversions        []ConversionEvent `json:"conversions"`
	TotalConversions   int               `json:"totalConversions"`
	Frequency          FrequencyPattern  `json:"frequency"`
	AverageAmount      float64           `json:"averageAmount"`
	TotalVolume        float64           `json:"totalVolume"`
	AverageDaysBetween *float64          `json:"averageDaysBetweenConversions"` // nil with <2 events
	FirstConversion    *time.Time        `json:"firstConversionDate"`
	LastConversion     *time.Time        `json:"lastConversionDate"`
}
