// Package simulation generates the counterfactual discipline rule: convert
// a fixed percentage of balance on a fixed day every month, with both
// parameters derived from the wallet's actual behavior.
package simulation

import (
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/pricing"
)

// Parameter bounds. The derived conversion percentage is clamped so a
// single outlier amount cannot produce a degenerate schedule; the target
// day is clamped to 28 to avoid month-length edge cases.
const (
	minPercentage     = 0.10
	maxPercentage     = 0.90
	defaultPercentage = 0.5
	maxTargetDay      = 28
)

// Simulator derives and prices counterfactual conversion schedules.
type Simulator struct {
	rates pricing.RateSource
}

// NewSimulator creates a simulator pricing synthetic conversions through
// the given rate source.
func NewSimulator(rates pricing.RateSource) *Simulator {
	return &Simulator{rates: rates}
}

// Simulate derives the discipline rule from events (sorted ascending) and
// generates one synthetic conversion per calendar month across the
// observed date range. Fewer than 2 events yields an empty simulation
// tagged insufficient-data with zeroed parameters.
func (s *Simulator) Simulate(events []domain.ConversionEvent, balance float64, currency string) domain.SimulationResult {
	if len(events) < domain.MinEventsForAnalysis {
		return domain.SimulationResult{
			Status:      domain.StatusInsufficientData,
			Conversions: []domain.SimulatedConversion{},
		}
	}

	currency = strings.ToUpper(currency)
	percentage := conversionPercentage(events, balance)
	targetDay := targetDayOfMonth(events)
	amount := balance * percentage

	first := events[0].Timestamp
	last := events[len(events)-1].Timestamp

	month := monthStart(first)
	// The first event's month is skipped when its date already passed the
	// target day within that month.
	if first.Day() > targetDay {
		month = month.AddDate(0, 1, 0)
	}
	end := monthStart(last)

	var conversions []domain.SimulatedConversion
	for ; !month.After(end); month = month.AddDate(0, 1, 0) {
		ts := time.Date(month.Year(), month.Month(), targetDay, 0, 0, 0, 0, time.UTC)
		conversions = append(conversions, domain.SimulatedConversion{
			Timestamp: ts,
			Amount:    amount,
			Price:     s.rates.Rate(ts, currency),
			Currency:  currency,
		})
	}

	result := domain.SimulationResult{
		Status:               domain.StatusComputed,
		Conversions:          conversions,
		ConversionPercentage: percentage,
		TargetDayOfMonth:     targetDay,
		TotalAmount:          amount * float64(len(conversions)),
	}
	if len(conversions) > 0 {
		result.AverageAmount = result.TotalAmount / float64(len(conversions))
	}
	return result
}

// conversionPercentage is the mean actual amount as a fraction of balance,
// clamped to [minPercentage, maxPercentage]. Non-positive balance falls
// back to the default.
func conversionPercentage(events []domain.ConversionEvent, balance float64) float64 {
	if balance <= 0 || len(events) == 0 {
		return defaultPercentage
	}

	amounts := make([]float64, len(events))
	for i, e := range events {
		amounts[i] = e.Amount
	}

	p := stat.Mean(amounts, nil) / balance
	if p < minPercentage {
		return minPercentage
	}
	if p > maxPercentage {
		return maxPercentage
	}
	return p
}

// targetDayOfMonth is the modal calendar day across events, ties broken by
// first occurrence in ascending event order, clamped to [1, maxTargetDay].
func targetDayOfMonth(events []domain.ConversionEvent) int {
	counts := make(map[int]int)
	best := 1
	bestCount := 0
	for _, e := range events {
		day := e.Timestamp.Day()
		counts[day]++
		if counts[day] > bestCount {
			best = day
			bestCount = counts[day]
		}
	}

	if best > maxTargetDay {
		return maxTargetDay
	}
	return best
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
