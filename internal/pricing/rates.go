// Package pricing supplies exchange rates for stablecoin conversions.
//
// The only shipped implementation is a synthetic model: a placeholder
// stand-in for a real price oracle, explicitly non-authoritative. Callers
// take the RateSource interface so a real oracle can be swapped in by
// configuration.
package pricing

import (
	"math"
	"math/rand"
	"strings"
	"time"
)

// RateSource supplies an exchange rate for a stablecoin at a point in time.
// Implementations must be pure: identical inputs return identical rates,
// and concurrent calls are safe.
type RateSource interface {
	Rate(t time.Time, currency string) float64
}

// Synthetic model parameters. USD oscillates smoothly around the $1.00 peg
// with a small deterministic jitter; EUR is derived from USD via a slower
// sinusoidal FX factor.
const (
	pegRate       = 1.0
	usdAmplitude  = 0.002
	usdPeriodDays = 62.0
	jitterBound   = 0.0005
	eurBase       = 0.92
	eurAmplitude  = 0.01
	eurPeriodDays = 126.0
)

// anchor is the epoch the sinusoids are phased from.
var anchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SyntheticModel is a seedable synthetic exchange-rate model. The jitter
// term is derived from the seed and the timestamp, so the model is fully
// deterministic and reproducible across calls and processes.
type SyntheticModel struct {
	seed int64
}

// NewSyntheticModel creates a synthetic rate model with the given seed.
// Two models with the same seed produce identical rates.
func NewSyntheticModel(seed int64) *SyntheticModel {
	return &SyntheticModel{seed: seed}
}

// Rate returns the synthetic exchange rate for the given currency at t.
// Currency codes are matched case-insensitively; anything other than EUR
// prices like USD (spec'd constraint, not validated here).
func (m *SyntheticModel) Rate(t time.Time, currency string) float64 {
	days := t.Sub(anchor).Hours() / 24

	usd := pegRate + usdAmplitude*math.Sin(2*math.Pi*days/usdPeriodDays) + m.jitter(t)

	if strings.EqualFold(currency, "EUR") {
		return usd * (eurBase + eurAmplitude*math.Sin(2*math.Pi*days/eurPeriodDays))
	}
	return usd
}

// jitter returns a deterministic pseudo-random perturbation in
// [-jitterBound, +jitterBound], keyed on (seed, timestamp).
func (m *SyntheticModel) jitter(t time.Time) float64 {
	src := rand.NewSource(m.seed ^ t.Unix()*0x9E3779B9)
	r := rand.New(src)
	return (r.Float64()*2 - 1) * jitterBound
}
