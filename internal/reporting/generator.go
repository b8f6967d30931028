package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/storage"
)

// historyLimit bounds how many past analyses feed the trend section.
const historyLimit = 12

// Generator produces wallet reports from stored analyses.
type Generator struct {
	analyses storage.AnalysisStore
	now      func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(analyses storage.AnalysisStore) *Generator {
	return &Generator{
		analyses: analyses,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate renders the latest analysis for a wallet as Markdown, with a
// score trend over the preceding analyses when more than one exists.
// Returns storage.ErrNotFound if the wallet has no analyses.
func (g *Generator) Generate(ctx context.Context, wallet string) (string, error) {
	latest, err := g.analyses.GetLatestByWallet(ctx, wallet)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(RenderMarkdown(&latest.Outcome))

	history, err := g.analyses.GetByWallet(ctx, wallet, historyLimit)
	if err != nil {
		return "", err
	}
	if len(history) > 1 {
		sb.WriteString(renderTrend(history))
	}

	sb.WriteString(fmt.Sprintf("Report generated: %s\n", g.now().Format(time.RFC3339)))
	return sb.String(), nil
}

// renderTrend renders the score progression across stored analyses,
// oldest first.
func renderTrend(history []*domain.AnalysisRecord) string {
	var sb strings.Builder

	sb.WriteString("## Score History\n\n")
	sb.WriteString("| Analyzed At | Overall | Frequency | Consistency | Timing |\n")
	sb.WriteString("|-------------|---------|-----------|-------------|--------|\n")

	// history arrives newest first
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		if r.Outcome.Score.Status != domain.StatusComputed {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Outcome.Score.Overall,
			r.Outcome.Score.Frequency,
			r.Outcome.Score.Consistency,
			r.Outcome.Score.Timing))
	}
	sb.WriteString("\n")

	return sb.String()
}
