// Package normalization converts raw transfer records into ordered
// conversion events: outbound transfers from the tracked wallet only,
// sorted ascending by timestamp.
package normalization

import (
	"sort"
	"strings"
	"time"

	"conversion-insight/internal/domain"
)

// MissingTimestampPolicy decides what to do with a transfer whose timestamp
// is absent or unparseable. The policy is an explicit choice, never a silent
// guess.
type MissingTimestampPolicy int

const (
	// UseCurrentTime stamps the event with the normalizer's clock. Ordering
	// of such events relative to real timestamps depends on when
	// normalization runs.
	UseCurrentTime MissingTimestampPolicy = iota
	// ExcludeEvent drops the transfer entirely.
	ExcludeEvent
	// SortLast keeps the event with a zero timestamp and orders it after
	// every timestamped event, stable among its peers.
	SortLast
)

// Normalizer filters and orders raw transfers. Deterministic given a fixed
// clock; no side effects.
type Normalizer struct {
	policy MissingTimestampPolicy
	now    func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the time source used by UseCurrentTime. Tests inject
// a fixed clock to keep normalization deterministic.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// NewNormalizer creates a normalizer with the given missing-timestamp policy.
func NewNormalizer(policy MissingTimestampPolicy, opts ...Option) *Normalizer {
	n := &Normalizer{
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns the conversion events for wallet, ascending by
// timestamp. A transfer qualifies iff its sender equals wallet
// case-insensitively and its recipient is non-null.
func (n *Normalizer) Normalize(transfers []domain.RawTransfer, wallet string) []domain.ConversionEvent {
	timestamped := make([]domain.ConversionEvent, 0, len(transfers))
	var untimed []domain.ConversionEvent

	for _, t := range transfers {
		if !strings.EqualFold(t.From, wallet) || t.To == nil {
			continue
		}

		ts, ok := parseTimestamp(t.Timestamp)
		if !ok {
			switch n.policy {
			case ExcludeEvent:
				continue
			case SortLast:
				untimed = append(untimed, buildEvent(t, time.Time{}))
				continue
			default:
				ts = n.now()
			}
		}

		timestamped = append(timestamped, buildEvent(t, ts))
	}

	sort.SliceStable(timestamped, func(i, j int) bool {
		return timestamped[i].Timestamp.Before(timestamped[j].Timestamp)
	})

	return append(timestamped, untimed...)
}

// parseTimestamp parses an optional ISO-8601 timestamp. An unparseable
// value is treated the same as a missing one.
func parseTimestamp(raw *string) (time.Time, bool) {
	if raw == nil || *raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func buildEvent(t domain.RawTransfer, ts time.Time) domain.ConversionEvent {
	return domain.ConversionEvent{
		Timestamp: ts,
		Amount:    t.Value,
		Token:     t.Asset,
		ToAddress: *t.To,
		TxHash:    t.Hash,
	}
}
