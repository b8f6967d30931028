// Package reporting renders analysis outcomes as Markdown and CSV for
// the CLI and offline review.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"conversion-insight/internal/domain"
)

// RenderMarkdown renders an analysis outcome as a Markdown document.
func RenderMarkdown(o *domain.AnalysisOutcome) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Conversion Discipline Report\n\n")
	sb.WriteString(fmt.Sprintf("Wallet: %s\n\n", o.Wallet))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", o.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Transfers Examined | %d |\n", o.TransferCount))
	sb.WriteString(fmt.Sprintf("| Conversions Found | %d |\n", o.Pattern.TotalConversions))
	sb.WriteString(fmt.Sprintf("| Frequency | %s |\n", o.Pattern.Frequency))
	sb.WriteString(fmt.Sprintf("| Average Amount | %.2f %s |\n", o.Pattern.AverageAmount, o.Currency))
	sb.WriteString(fmt.Sprintf("| Total Volume | %.2f %s |\n", o.Pattern.TotalVolume, o.Currency))
	if o.Pattern.AverageDaysBetween != nil {
		sb.WriteString(fmt.Sprintf("| Avg Days Between | %.1f |\n", *o.Pattern.AverageDaysBetween))
	}
	if o.Pattern.FirstConversion != nil && o.Pattern.LastConversion != nil {
		sb.WriteString(fmt.Sprintf("| Period | %s to %s |\n",
			o.Pattern.FirstConversion.Format("2006-01-02"),
			o.Pattern.LastConversion.Format("2006-01-02")))
	}
	sb.WriteString("\n")

	// Discipline Score
	sb.WriteString("## Discipline Score\n\n")
	if o.Score.Status == domain.StatusComputed {
		sb.WriteString("| Component | Score |\n")
		sb.WriteString("|-----------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Overall | %d |\n", o.Score.Overall))
		sb.WriteString(fmt.Sprintf("| Frequency | %d |\n", o.Score.Frequency))
		sb.WriteString(fmt.Sprintf("| Consistency | %d |\n", o.Score.Consistency))
		sb.WriteString(fmt.Sprintf("| Timing | %d |\n", o.Score.Timing))
		sb.WriteString("\n")
		sb.WriteString(o.Score.Explanation)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("Not enough conversion history to score.\n\n")
	}

	// Cost Comparison
	sb.WriteString("## Cost Comparison\n\n")
	if o.Cost.Status == domain.StatusComputed {
		direction := "Saved"
		if o.Cost.Type == domain.CostTypeLost {
			direction = "Lost"
		}
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Actual Cost Basis | %.2f %s |\n", o.Cost.ActualCostBasis, o.Cost.Currency))
		sb.WriteString(fmt.Sprintf("| Simulated Cost Basis | %.2f %s |\n", o.Cost.SimulatedCostBasis, o.Cost.Currency))
		sb.WriteString(fmt.Sprintf("| Amount %s | %.2f %s |\n", direction, o.Cost.Amount, o.Cost.Currency))
		sb.WriteString("\n")
	} else {
		sb.WriteString("Not enough conversion history to compare costs.\n\n")
	}

	// Simulated Schedule
	sb.WriteString("## Simulated Monthly Schedule\n\n")
	if o.Simulation.Status == domain.StatusComputed && len(o.Simulation.Conversions) > 0 {
		sb.WriteString(fmt.Sprintf("Converting %.0f%% of balance on day %d of each month:\n\n",
			o.Simulation.ConversionPercentage*100, o.Simulation.TargetDayOfMonth))
		sb.WriteString("| Date | Amount | Rate |\n")
		sb.WriteString("|------|--------|------|\n")
		for _, c := range o.Simulation.Conversions {
			sb.WriteString(fmt.Sprintf("| %s | %.2f %s | %.4f |\n",
				c.Timestamp.Format("2006-01-02"), c.Amount, c.Currency, c.Price))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No simulated schedule available.\n\n")
	}

	// Recommendation
	sb.WriteString("## Recommendation\n\n")
	sb.WriteString(fmt.Sprintf("**Priority: %s**\n\n", o.Recommendation.Priority))
	sb.WriteString(o.Recommendation.Message)
	sb.WriteString("\n")
	if len(o.Recommendation.Tips) > 0 {
		sb.WriteString("\n")
		for _, tip := range o.Recommendation.Tips {
			sb.WriteString(fmt.Sprintf("- %s\n", tip))
		}
	}
	sb.WriteString("\n")

	return sb.String()
}
