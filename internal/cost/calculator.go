// Package cost prices actual and simulated conversion series and computes
// the signed cost delta between them.
//
// The comparative metric is the peg-deviation cost basis: amount converted
// multiplied by the shortfall of the realized exchange rate from the $1.00
// stablecoin peg.
package cost

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/pricing"
	"conversion-insight/internal/simulation"
)

// Calculator compares actual conversion behavior against the discipline
// rule counterfactual.
type Calculator struct {
	rates pricing.RateSource
	sim   *simulation.Simulator
}

// NewCalculator creates a calculator. Actual events are priced through
// rates; simulated prices are reused from the simulator's own output, so
// the simulated side is priced exactly once.
func NewCalculator(rates pricing.RateSource) *Calculator {
	return &Calculator{
		rates: rates,
		sim:   simulation.NewSimulator(rates),
	}
}

// Calculate computes the cost delta for events (sorted ascending) against
// the simulated discipline schedule. Fewer than 2 events yields a zeroed
// saved result tagged insufficient-data.
func (c *Calculator) Calculate(events []domain.ConversionEvent, balance float64, currency string) domain.CostResult {
	currency = strings.ToUpper(currency)

	if len(events) < domain.MinEventsForAnalysis {
		return domain.CostResult{
			Status:          domain.StatusInsufficientData,
			Type:            domain.CostTypeSaved,
			Currency:        currency,
			ConversionCount: len(events),
		}
	}

	sim := c.sim.Simulate(events, balance, currency)

	actualRates := make([]float64, len(events))
	totalActual := 0.0
	for i, e := range events {
		actualRates[i] = c.rates.Rate(e.Timestamp, currency)
		totalActual += e.Amount
	}
	avgActualRate := stat.Mean(actualRates, nil)

	simPrices := make([]float64, len(sim.Conversions))
	for i, s := range sim.Conversions {
		simPrices[i] = s.Price
	}
	avgSimRate := 0.0
	if len(simPrices) > 0 {
		avgSimRate = stat.Mean(simPrices, nil)
	}

	actualBasis := totalActual * (1 - avgActualRate)
	simulatedBasis := sim.TotalAmount * (1 - avgSimRate)
	delta := simulatedBasis - actualBasis

	costType := domain.CostTypeSaved
	if delta < 0 {
		costType = domain.CostTypeLost
	}

	return domain.CostResult{
		Status:             domain.StatusComputed,
		Amount:             math.Abs(delta),
		Type:               costType,
		Currency:           currency,
		ActualCostBasis:    actualBasis,
		SimulatedCostBasis: simulatedBasis,
		ConversionCount:    len(events),
	}
}
