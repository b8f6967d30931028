package scoring

import (
	"reflect"
	"testing"
	"time"

	"conversion-insight/internal/domain"
)

func event(ts time.Time, amount float64) domain.ConversionEvent {
	return domain.ConversionEvent{Timestamp: ts, Amount: amount, Token: "USDC"}
}

// monthlyEvents builds n events spaced exactly 30 days apart, identical
// amounts, identical day-of-month drift characteristics.
func monthlyEvents(n int, amount float64) []domain.ConversionEvent {
	start := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	events := make([]domain.ConversionEvent, n)
	for i := range events {
		events[i] = event(start.AddDate(0, 0, i*30), amount)
	}
	return events
}

func TestScore_InsufficientData(t *testing.T) {
	for _, events := range [][]domain.ConversionEvent{
		nil,
		{event(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 100)},
	} {
		result := Score(events)
		if result.Status != domain.StatusInsufficientData {
			t.Errorf("expected insufficient-data status, got %s", result.Status)
		}
		if result.Overall != 0 {
			t.Errorf("expected overall 0, got %d", result.Overall)
		}
		if result.Explanation == "" {
			t.Error("expected an explanation for insufficient data")
		}
	}
}

func TestScore_PerfectDiscipline(t *testing.T) {
	// Exactly 30-day spacing, identical amounts, stable day-of-month
	// (30-day steps stay within ±3 of the modal day) → 100 on every axis.
	result := Score(monthlyEvents(4, 500))

	if result.Frequency != 100 {
		t.Errorf("expected frequency 100, got %d", result.Frequency)
	}
	if result.Consistency != 100 {
		t.Errorf("expected consistency 100, got %d", result.Consistency)
	}
	if result.Timing != 100 {
		t.Errorf("expected timing 100, got %d", result.Timing)
	}
	if result.Overall != 100 {
		t.Errorf("expected overall 100, got %d", result.Overall)
	}
}

func TestScore_OverallIsWeightedAverage(t *testing.T) {
	// Weekly cadence (|7-30| = 23 → 15), identical amounts (100), same
	// weekday but drifting day-of-month.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := make([]domain.ConversionEvent, 5)
	for i := range events {
		events[i] = event(start.AddDate(0, 0, i*7), 200)
	}

	result := Score(events)
	if result.Frequency != 15 {
		t.Errorf("expected frequency 15 for weekly cadence, got %d", result.Frequency)
	}
	if result.Consistency != 100 {
		t.Errorf("expected consistency 100 for identical amounts, got %d", result.Consistency)
	}

	want := int(float64(result.Frequency)*0.4 + float64(result.Consistency)*0.3 + float64(result.Timing)*0.3 + 0.5)
	if result.Overall != want {
		t.Errorf("expected overall %d, got %d", want, result.Overall)
	}
}

func TestFrequencyScore_Bands(t *testing.T) {
	cases := []struct {
		avgGap float64
		want   int
	}{
		{30, 100},
		{28, 100},
		{25.5, 85},
		{21, 70},
		{16, 50},
		{11, 30},
		{7, 15},
		{60, 15},
	}
	for _, tc := range cases {
		if got := frequencyScore(tc.avgGap); got != tc.want {
			t.Errorf("avgGap %v: expected %d, got %d", tc.avgGap, tc.want, got)
		}
	}
}

func TestConsistencyScore_Bands(t *testing.T) {
	ts := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	build := func(amounts ...float64) []domain.ConversionEvent {
		events := make([]domain.ConversionEvent, len(amounts))
		for i, a := range amounts {
			events[i] = event(ts.AddDate(0, 1, 0), a)
		}
		return events
	}

	// Identical amounts → CV 0 → 100.
	if got := consistencyScore(build(100, 100, 100)); got != 100 {
		t.Errorf("identical amounts: expected 100, got %d", got)
	}
	// Wildly varying amounts → CV >= 0.60 → 10.
	if got := consistencyScore(build(10, 500, 20)); got != 10 {
		t.Errorf("erratic amounts: expected 10, got %d", got)
	}
}

func TestConsistencyScore_ZeroMeanGuard(t *testing.T) {
	ts := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	events := []domain.ConversionEvent{
		event(ts, 0),
		event(ts.AddDate(0, 1, 0), 0),
	}

	// Zero mean makes CV undefined; must return a defined default, not NaN.
	if got := consistencyScore(events); got != 10 {
		t.Errorf("zero-mean amounts: expected defined default 10, got %d", got)
	}
}

func TestTimingScore_MonthEndWraparound(t *testing.T) {
	// Days 30, 1, 2: with wraparound min(diff, 31-diff), day 30 is only 2
	// away from day 1, so every event counts as on schedule.
	events := []domain.ConversionEvent{
		event(time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), 100),
		event(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 100),
		event(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), 100),
	}

	if got := timingScore(events); got != 100 {
		t.Errorf("expected wraparound timing 100, got %d", got)
	}
}

func TestTimingScore_ScatteredDays(t *testing.T) {
	events := []domain.ConversionEvent{
		event(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 100),
		event(time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC), 100),
		event(time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), 100),
		event(time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC), 100),
	}

	// Modal day 3 (first seen); only 1 of 4 within ±3 → fraction 0.25 → 20.
	if got := timingScore(events); got != 20 {
		t.Errorf("expected scattered timing 20, got %d", got)
	}
}

func TestScore_Idempotent(t *testing.T) {
	events := monthlyEvents(5, 300)

	first := Score(events)
	second := Score(events)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected repeated scoring on the same input to be identical")
	}
}

func TestScore_ExplanationTracksBands(t *testing.T) {
	result := Score(monthlyEvents(4, 500))
	if result.Explanation == "" {
		t.Fatal("expected an explanation")
	}
}
