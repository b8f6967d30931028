// Package pipeline wires the analysis stages together: normalization →
// pattern detection → {simulation, scoring}, simulation → cost,
// {cost, scoring} → recommendation.
package pipeline

import (
	"context"
	"strings"
	"time"

	"conversion-insight/internal/cost"
	"conversion-insight/internal/domain"
	"conversion-insight/internal/normalization"
	"conversion-insight/internal/observability"
	"conversion-insight/internal/pattern"
	"conversion-insight/internal/pricing"
	"conversion-insight/internal/recommend"
	"conversion-insight/internal/scoring"
	"conversion-insight/internal/simulation"
)

// DefaultRateSeed seeds the synthetic rate model when no rate source is
// injected.
const DefaultRateSeed = 1

// Options configures an Analyzer.
type Options struct {
	// Rates prices actual and simulated conversions. Defaults to the
	// synthetic model with DefaultRateSeed.
	Rates pricing.RateSource
	// MissingTimestampPolicy controls normalization of transfers without a
	// timestamp. Defaults to UseCurrentTime.
	MissingTimestampPolicy normalization.MissingTimestampPolicy
	// Clock supplies "now" for normalization and result stamping. Defaults
	// to time.Now.
	Clock func() time.Time
	// Metrics, when set, records pipeline observability metrics.
	Metrics *observability.Metrics
}

// Request is one analysis invocation.
type Request struct {
	Wallet    string
	Transfers []domain.RawTransfer
	Balance   float64
	Currency  string
}

// Analyzer runs the full analysis pipeline. Stateless across invocations;
// safe for concurrent use.
type Analyzer struct {
	normalizer *normalization.Normalizer
	simulator  *simulation.Simulator
	calculator *cost.Calculator
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewAnalyzer creates an analyzer from options.
func NewAnalyzer(opts Options) *Analyzer {
	rates := opts.Rates
	if rates == nil {
		rates = pricing.NewSyntheticModel(DefaultRateSeed)
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Analyzer{
		normalizer: normalization.NewNormalizer(opts.MissingTimestampPolicy, normalization.WithClock(now)),
		simulator:  simulation.NewSimulator(rates),
		calculator: cost.NewCalculator(rates),
		metrics:    opts.Metrics,
		now:        now,
	}
}

// Analyze runs every stage over the request's transfers and aggregates the
// results. It never fails for short inputs: each stage reports its own
// insufficient-data sentinel.
func (a *Analyzer) Analyze(_ context.Context, req Request) *domain.AnalysisOutcome {
	started := a.now()
	currency := strings.ToUpper(req.Currency)

	events := a.normalizer.Normalize(req.Transfers, req.Wallet)

	patternResult := pattern.Detect(events)
	simResult := a.simulator.Simulate(events, req.Balance, currency)
	costResult := a.calculator.Calculate(events, req.Balance, currency)
	scoreResult := scoring.Score(events)
	recommendation := recommend.Synthesize(costResult, scoreResult)

	outcome := &domain.AnalysisOutcome{
		Wallet:         req.Wallet,
		Currency:       currency,
		Balance:        req.Balance,
		TransferCount:  len(req.Transfers),
		Pattern:        patternResult,
		Simulation:     simResult,
		Cost:           costResult,
		Score:          scoreResult,
		Recommendation: recommendation,
		GeneratedAt:    a.now(),
	}

	if a.metrics != nil {
		a.metrics.AnalysesRun.WithLabelValues(string(costResult.Status)).Inc()
		a.metrics.AnalysisDuration.Observe(a.now().Sub(started).Seconds())
		a.metrics.ConversionsFound.Observe(float64(len(events)))
	}

	return outcome
}
