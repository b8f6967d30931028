// Package scoring rates the wallet's actual conversion behavior on three
// independent axes and combines them into one weighted 0-100 score.
package scoring

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/pattern"
)

// Component weights. Frequency regularity dominates; amount consistency
// and day-of-month timing split the remainder.
const (
	frequencyWeight   = 0.4
	consistencyWeight = 0.3
	timingWeight      = 0.3
)

// monthlyTargetDays is the cadence the frequency axis measures against.
const monthlyTargetDays = 30.0

// timingWindowDays is how far from the modal day an event may land and
// still count as on schedule.
const timingWindowDays = 3

// Score rates events (sorted ascending) for conversion discipline. Fewer
// than 2 events yields a zero score tagged insufficient-data.
func Score(events []domain.ConversionEvent) domain.ScoreResult {
	if len(events) < domain.MinEventsForAnalysis {
		return domain.ScoreResult{
			Status:      domain.StatusInsufficientData,
			Explanation: "Not enough conversion history to evaluate discipline. At least two conversions are required.",
		}
	}

	frequency := frequencyScore(pattern.MeanGapDays(events))
	consistency := consistencyScore(events)
	timing := timingScore(events)

	overall := int(math.Round(
		float64(frequency)*frequencyWeight +
			float64(consistency)*consistencyWeight +
			float64(timing)*timingWeight))

	return domain.ScoreResult{
		Status:      domain.StatusComputed,
		Overall:     overall,
		Frequency:   frequency,
		Consistency: consistency,
		Timing:      timing,
		Explanation: explain(frequency, consistency, timing),
	}
}

// frequencyScore steps down as the mean gap drifts from a monthly cadence.
func frequencyScore(avgGapDays float64) int {
	drift := math.Abs(avgGapDays - monthlyTargetDays)
	switch {
	case drift <= 2:
		return 100
	case drift <= 5:
		return 85
	case drift <= 10:
		return 70
	case drift <= 15:
		return 50
	case drift <= 20:
		return 30
	default:
		return 15
	}
}

// consistencyScore steps down as the coefficient of variation of the
// conversion amounts grows. A zero mean amount makes the CV undefined and
// short-circuits to the lowest band.
func consistencyScore(events []domain.ConversionEvent) int {
	amounts := make([]float64, len(events))
	for i, e := range events {
		amounts[i] = e.Amount
	}

	mean := stat.Mean(amounts, nil)
	if mean == 0 {
		return 10
	}
	cv := stat.PopStdDev(amounts, nil) / mean

	switch {
	case cv < 0.10:
		return 100
	case cv < 0.25:
		return 75
	case cv < 0.40:
		return 50
	case cv < 0.60:
		return 25
	default:
		return 10
	}
}

// timingScore steps down as fewer events land within the timing window of
// the modal day-of-month. Day distance wraps around month ends:
// min(diff, 31-diff).
func timingScore(events []domain.ConversionEvent) int {
	modal := mostCommonDay(events)

	onSchedule := 0
	for _, e := range events {
		if dayDistance(e.Timestamp.Day(), modal) <= timingWindowDays {
			onSchedule++
		}
	}
	fraction := float64(onSchedule) / float64(len(events))

	switch {
	case fraction >= 0.9:
		return 100
	case fraction >= 0.75:
		return 80
	case fraction >= 0.6:
		return 60
	case fraction >= 0.4:
		return 40
	case fraction >= 0.25:
		return 20
	default:
		return 10
	}
}

// mostCommonDay is the modal calendar day, ties broken by first occurrence
// in event order.
func mostCommonDay(events []domain.ConversionEvent) int {
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
	return best
}

// dayDistance is the calendar distance between two days-of-month with
// month-end wraparound.
func dayDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if wrapped := 31 - d; wrapped < d {
		return wrapped
	}
	return d
}

// explain concatenates one sentence per component, chosen by score band.
func explain(frequency, consistency, timing int) string {
	parts := []string{
		bandSentence(frequency,
			"Your conversion cadence is very close to a disciplined monthly rhythm.",
			"Your conversion cadence is reasonably regular but drifts from a monthly rhythm.",
			"Your conversion cadence is uneven; gaps between conversions vary widely.",
			"Your conversion cadence shows no recognizable rhythm."),
		bandSentence(consistency,
			"Conversion amounts are highly consistent.",
			"Conversion amounts are fairly consistent with some variation.",
			"Conversion amounts vary noticeably between conversions.",
			"Conversion amounts are erratic."),
		bandSentence(timing,
			"Conversions reliably land on the same day of the month.",
			"Conversions usually land near the same day of the month.",
			"Conversion days drift across the month.",
			"Conversion days show no fixed pattern."),
	}
	return strings.Join(parts, " ")
}

// bandSentence picks the sentence for a component score using the
// >=80 / >=50 / >=25 / else bands.
func bandSentence(score int, high, good, fair, poor string) string {
	switch {
	case score >= 80:
		return high
	case score >= 50:
		return good
	case score >= 25:
		return fair
	default:
		return poor
	}
}
