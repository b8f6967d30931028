package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/storage"
	"conversion-insight/internal/storage/memory"
)

func computedOutcome(wallet string, overall int, generatedAt time.Time) domain.AnalysisOutcome {
	avg := 30.0
	first := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	return domain.AnalysisOutcome{
		Wallet:        wallet,
		Currency:      "USD",
		Balance:       1000,
		TransferCount: 3,
		Pattern: domain.PatternResult{
			TotalConversions:   3,
			Frequency:          domain.FrequencyMonthly,
			AverageAmount:      300,
			TotalVolume:        900,
			AverageDaysBetween: &avg,
			FirstConversion:    &first,
			LastConversion:     &last,
		},
		Simulation: domain.SimulationResult{
			Status:               domain.StatusComputed,
			ConversionPercentage: 0.3,
			TargetDayOfMonth:     15,
			TotalAmount:          900,
			AverageAmount:        300,
			Conversions: []domain.SimulatedConversion{
				{Timestamp: first, Amount: 300, Price: 0.999, Currency: "USD"},
				{Timestamp: first.AddDate(0, 1, 0), Amount: 300, Price: 1.001, Currency: "USD"},
				{Timestamp: last, Amount: 300, Price: 1.0, Currency: "USD"},
			},
		},
		Cost: domain.CostResult{
			Status:             domain.StatusComputed,
			Amount:             12.5,
			Type:               domain.CostTypeSaved,
			Currency:           "USD",
			ActualCostBasis:    1.2,
			SimulatedCostBasis: 13.7,
			ConversionCount:    3,
		},
		Score: domain.ScoreResult{
			Status:      domain.StatusComputed,
			Overall:     overall,
			Frequency:   overall,
			Consistency: overall,
			Timing:      overall,
			Explanation: "Conversion timing is highly consistent.",
		},
		Recommendation: domain.RecommendationResult{
			Message:  "Your current approach saved you $12.50. Keep it up.",
			Priority: domain.PriorityLow,
		},
		GeneratedAt: generatedAt,
	}
}

func TestRenderMarkdown(t *testing.T) {
	outcome := computedOutcome("0xabc", 85, time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC))
	md := RenderMarkdown(&outcome)

	for _, want := range []string{
		"# Conversion Discipline Report",
		"Wallet: 0xabc",
		"| Conversions Found | 3 |",
		"| Frequency | monthly |",
		"| Overall | 85 |",
		"| Amount Saved | 12.50 USD |",
		"Converting 30% of balance on day 15 of each month:",
		"| 2024-01-15 | 300.00 USD | 0.9990 |",
		"**Priority: low**",
		"Keep it up.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_InsufficientData(t *testing.T) {
	outcome := domain.AnalysisOutcome{
		Wallet:   "0xempty",
		Currency: "USD",
		Pattern: domain.PatternResult{
			Frequency: domain.FrequencyInsufficientData,
		},
		Simulation: domain.SimulationResult{Status: domain.StatusInsufficientData},
		Cost:       domain.CostResult{Status: domain.StatusInsufficientData},
		Score:      domain.ScoreResult{Status: domain.StatusInsufficientData},
		Recommendation: domain.RecommendationResult{
			Message:  "Not enough conversion history to analyze yet.",
			Priority: domain.PriorityLow,
		},
		GeneratedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	md := RenderMarkdown(&outcome)

	for _, want := range []string{
		"Not enough conversion history to score.",
		"Not enough conversion history to compare costs.",
		"No simulated schedule available.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderConversionsCSV(t *testing.T) {
	events := []domain.ConversionEvent{
		{
			Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Amount:    250,
			Token:     "USDC",
			ToAddress: "0xdest",
			TxHash:    "0xhash1",
		},
	}

	csv := RenderConversionsCSV(events)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if lines[0] != "timestamp,amount,token,to_address,tx_hash" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "2024-01-15T10:30:00Z,250.000000,USDC,0xdest,0xhash1" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestRenderScheduleCSV(t *testing.T) {
	sim := domain.SimulationResult{
		Status: domain.StatusComputed,
		Conversions: []domain.SimulatedConversion{
			{Timestamp: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), Amount: 300, Price: 1.0005, Currency: "USD"},
		},
	}

	csv := RenderScheduleCSV(sim)

	if !strings.Contains(csv, "2024-02-15,300.000000,1.000500,USD") {
		t.Errorf("unexpected csv:\n%s", csv)
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAnalysisStore()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, overall := range []int{60, 75, 85} {
		createdAt := base.AddDate(0, 0, i)
		record := &domain.AnalysisRecord{
			ID:        storage.NewRecordID(),
			Wallet:    "0xTrend",
			Outcome:   computedOutcome("0xTrend", overall, createdAt),
			CreatedAt: createdAt,
		}
		if err := store.Insert(ctx, record); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	gen := NewGenerator(store).WithClock(func() time.Time {
		return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	})

	md, err := gen.Generate(ctx, "0xtrend")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(md, "## Score History") {
		t.Error("expected score history section")
	}
	// Newest outcome leads the report
	if !strings.Contains(md, "| Overall | 85 |") {
		t.Error("expected latest overall score in summary")
	}
	// Trend rows are oldest first
	idx60 := strings.Index(md, "| 2024-03-01 00:00 | 60 |")
	idx85 := strings.Index(md, "| 2024-03-03 00:00 | 85 |")
	if idx60 == -1 || idx85 == -1 || idx60 > idx85 {
		t.Errorf("expected trend rows oldest first, got:\n%s", md)
	}
	if !strings.Contains(md, "Report generated: 2024-04-01T00:00:00Z") {
		t.Error("expected injected clock timestamp")
	}
}

func TestGenerator_Generate_NoAnalyses(t *testing.T) {
	gen := NewGenerator(memory.NewAnalysisStore())

	_, err := gen.Generate(context.Background(), "0xnobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
