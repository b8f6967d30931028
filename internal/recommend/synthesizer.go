// Package recommend maps a cost result and a score result to
// human-readable advice.
package recommend

import (
	"fmt"

	"conversion-insight/internal/domain"
)

// Rule thresholds. Amounts below smallAmount are treated as noise-level;
// praiseworthy behavior needs a high score and no meaningful loss.
const (
	smallAmount     = 5.0
	negligibleLoss  = 10.0
	praiseScoreMin  = 80
	weakScoreCutoff = 40
)

// currencySymbols covers the accepted codes; anything else renders with
// an explicit code suffix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
}

// Synthesize produces the recommendation for one analysis. Decision rules
// apply in order, first match wins:
//
//  1. fewer than 2 conversions → insufficient data
//  2. high score, saved, small amount → praise
//  3. lost more than the noise threshold → targeted weakness message
//  4. saved more than the noise threshold → praise with amount
//  5. small non-zero amount either way → mild improvement
//  6. any other positive amount → generic positive
//  7. zero → neutral
func Synthesize(cost domain.CostResult, score domain.ScoreResult) domain.RecommendationResult {
	switch {
	case cost.ConversionCount < domain.MinEventsForAnalysis:
		return domain.RecommendationResult{
			Message:  "Not enough conversion history yet. Convert at least twice so we can analyze your pattern.",
			Priority: domain.PriorityLow,
			Tips:     []string{"Keep using your wallet normally; analysis unlocks after your second conversion."},
		}

	case score.Overall >= praiseScoreMin && cost.Type == domain.CostTypeSaved && cost.Amount < negligibleLoss:
		return domain.RecommendationResult{
			Message:  "Excellent discipline. Your conversion pattern is already close to optimal, keep it up.",
			Priority: domain.PriorityLow,
			Tips:     []string{"No changes needed; your current schedule is working."},
		}

	case cost.Type == domain.CostTypeLost && cost.Amount > smallAmount:
		weakness, tips := weakestComponent(score)
		return domain.RecommendationResult{
			Message: fmt.Sprintf("Your conversion pattern cost you %s compared to a fixed monthly schedule. %s",
				formatAmount(cost.Amount, cost.Currency), weakness),
			Priority: domain.PriorityHigh,
			Tips:     tips,
		}

	case cost.Type == domain.CostTypeSaved && cost.Amount > smallAmount:
		return domain.RecommendationResult{
			Message: fmt.Sprintf("Nice work: your timing saved you %s compared to a fixed monthly schedule.",
				formatAmount(cost.Amount, cost.Currency)),
			Priority: domain.PriorityLow,
			Tips:     []string{"Your instincts beat the mechanical rule; keep monitoring your pattern."},
		}

	case cost.Amount > 0 && cost.Amount <= smallAmount:
		return domain.RecommendationResult{
			Message:  "Your pattern performs about as well as a fixed monthly schedule; small tweaks to regularity could still help.",
			Priority: domain.PriorityMedium,
			Tips:     []string{"Pick one day of the month and convert a fixed share of your balance on it."},
		}

	case cost.Amount > 0:
		return domain.RecommendationResult{
			Message:  "Your conversions are in good shape overall.",
			Priority: domain.PriorityLow,
		}

	default:
		return domain.RecommendationResult{
			Message:  "Your conversion pattern matches a disciplined monthly schedule almost exactly.",
			Priority: domain.PriorityLow,
		}
	}
}

// weakestComponent names the lowest-scoring axis when it is genuinely weak,
// with matching tips; a balanced-but-losing pattern gets generic advice.
func weakestComponent(score domain.ScoreResult) (string, []string) {
	name := "frequency"
	lowest := score.Frequency
	if score.Consistency < lowest {
		name = "consistency"
		lowest = score.Consistency
	}
	if score.Timing < lowest {
		name = "timing"
		lowest = score.Timing
	}

	if lowest >= weakScoreCutoff {
		return "Moving to a fixed monthly rhythm would have performed better.",
			[]string{"Convert a fixed percentage of your balance once a month.",
				"Automate the conversion so market timing stops tempting you."}
	}

	switch name {
	case "consistency":
		return "Your conversion amounts swing too much; steadier amounts would have performed better.",
			[]string{"Convert a similar amount each time instead of reacting to balance spikes.",
				"Derive the amount from a fixed percentage of your balance."}
	case "timing":
		return "Your conversions drift across the month; picking one day would have performed better.",
			[]string{"Choose a day of the month (1st-28th) and stick to it.",
				"Set a recurring reminder for your conversion day."}
	default:
		return "Your conversion schedule is too erratic; a regular monthly cadence would have performed better.",
			[]string{"Space conversions about a month apart.",
				"Skip ad-hoc conversions between scheduled ones."}
	}
}

// formatAmount renders an amount in standard currency notation for the
// given code.
func formatAmount(amount float64, currency string) string {
	if symbol, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", symbol, amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}
