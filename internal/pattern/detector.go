// Package pattern computes inter-event gap statistics over a conversion
// sequence and classifies it into a frequency bucket.
package pattern

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"conversion-insight/internal/domain"
)

// Classification thresholds. A sequence is considered regular when the
// coefficient of variation of its day-gaps stays below regularCVThreshold;
// the avgDays bands then pick the bucket.
const (
	regularCVThreshold = 0.3
	dailyMaxDays       = 2.0
	weeklyMaxDays      = 9.0
	biWeeklyMaxDays    = 16.0
	monthlyMaxDays     = 35.0
)

// Detect classifies a conversion sequence and computes its aggregate
// statistics. Events must be sorted ascending by timestamp. Always returns
// a result; fewer than 2 events yields the insufficient-data sentinel with
// a nil AverageDaysBetween.
func Detect(events []domain.ConversionEvent) domain.PatternResult {
	result := domain.PatternResult{
		Conversions:      events,
		TotalConversions: len(events),
		Frequency:        domain.FrequencyInsufficientData,
	}

	for _, e := range events {
		result.TotalVolume += e.Amount
	}
	if len(events) > 0 {
		result.AverageAmount = result.TotalVolume / float64(len(events))
		first := events[0].Timestamp
		last := events[len(events)-1].Timestamp
		result.FirstConversion = &first
		result.LastConversion = &last
	}

	if len(events) < domain.MinEventsForAnalysis {
		return result
	}

	gaps := DayGaps(events)
	avgDays := stat.Mean(gaps, nil)
	stdDev := stat.PopStdDev(gaps, nil)

	cv := 0.0
	if avgDays > 0 {
		cv = stdDev / avgDays
	}

	result.AverageDaysBetween = &avgDays
	result.Frequency = classify(avgDays, cv)
	return result
}

// DayGaps returns the consecutive day-gaps of an ascending event sequence.
// Length is len(events)-1; callers must pass at least 2 events.
func DayGaps(events []domain.ConversionEvent) []float64 {
	gaps := make([]float64, 0, len(events)-1)
	for i := 1; i < len(events); i++ {
		gaps = append(gaps, events[i].Timestamp.Sub(events[i-1].Timestamp).Hours()/24)
	}
	return gaps
}

// MeanGapDays returns the mean consecutive day-gap, or 0 with fewer than
// 2 events.
func MeanGapDays(events []domain.ConversionEvent) float64 {
	if len(events) < 2 {
		return 0
	}
	return stat.Mean(DayGaps(events), nil)
}

// classify maps gap statistics to a frequency bucket. High dispersion is
// irregular regardless of the mean gap; so is a regular cadence slower
// than monthly.
func classify(avgDays, cv float64) domain.FrequencyPattern {
	if cv >= regularCVThreshold || math.IsNaN(cv) {
		return domain.FrequencyIrregular
	}
	switch {
	case avgDays <= dailyMaxDays:
		return domain.FrequencyDaily
	case avgDays <= weeklyMaxDays:
		return domain.FrequencyWeekly
	case avgDays <= biWeeklyMaxDays:
		return domain.FrequencyBiWeekly
	case avgDays <= monthlyMaxDays:
		return domain.FrequencyMonthly
	default:
		return domain.FrequencyIrregular
	}
}
