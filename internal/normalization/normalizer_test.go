package normalization

import (
	"testing"
	"time"

	"conversion-insight/internal/domain"
)

const wallet = "0xAbCd000000000000000000000000000000000001"

func strPtr(s string) *string { return &s }

func rawTransfer(from string, to *string, value float64, ts *string) domain.RawTransfer {
	return domain.RawTransfer{
		BlockNum:  "0x10",
		Hash:      "0xhash",
		From:      from,
		To:        to,
		Value:     value,
		Asset:     "USDC",
		Category:  "erc20",
		Timestamp: ts,
	}
}

func TestNormalize_FiltersInboundTransfers(t *testing.T) {
	n := NewNormalizer(UseCurrentTime)

	transfers := []domain.RawTransfer{
		rawTransfer("0xsomeoneelse", strPtr(wallet), 100, strPtr("2024-01-10T00:00:00Z")),
		rawTransfer(wallet, strPtr("0xdest"), 50, strPtr("2024-01-11T00:00:00Z")),
	}

	events := n.Normalize(transfers, wallet)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Amount != 50 {
		t.Errorf("expected outbound transfer amount 50, got %v", events[0].Amount)
	}
}

func TestNormalize_WalletMatchIsCaseInsensitive(t *testing.T) {
	n := NewNormalizer(UseCurrentTime)

	upper := "0xABCD000000000000000000000000000000000001"
	transfers := []domain.RawTransfer{
		rawTransfer(upper, strPtr("0xdest"), 10, strPtr("2024-01-10T00:00:00Z")),
	}

	events := n.Normalize(transfers, wallet)
	if len(events) != 1 {
		t.Fatalf("expected case-insensitive sender match, got %d events", len(events))
	}
}

func TestNormalize_ExcludesNullRecipient(t *testing.T) {
	n := NewNormalizer(UseCurrentTime)

	transfers := []domain.RawTransfer{
		rawTransfer(wallet, nil, 10, strPtr("2024-01-10T00:00:00Z")),
	}

	if events := n.Normalize(transfers, wallet); len(events) != 0 {
		t.Fatalf("expected transfer with null recipient excluded, got %d events", len(events))
	}
}

func TestNormalize_SortsAscendingByTimestamp(t *testing.T) {
	n := NewNormalizer(UseCurrentTime)

	transfers := []domain.RawTransfer{
		rawTransfer(wallet, strPtr("0xdest"), 3, strPtr("2024-03-01T00:00:00Z")),
		rawTransfer(wallet, strPtr("0xdest"), 1, strPtr("2024-01-01T00:00:00Z")),
		rawTransfer(wallet, strPtr("0xdest"), 2, strPtr("2024-02-01T00:00:00Z")),
	}

	events := n.Normalize(transfers, wallet)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []float64{1, 2, 3} {
		if events[i].Amount != want {
			t.Errorf("position %d: expected amount %v, got %v", i, want, events[i].Amount)
		}
	}
}

func TestNormalize_MissingTimestampUseCurrentTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n := NewNormalizer(UseCurrentTime, WithClock(func() time.Time { return now }))

	transfers := []domain.RawTransfer{
		rawTransfer(wallet, strPtr("0xdest"), 10, nil),
	}

	events := n.Normalize(transfers, wallet)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].Timestamp.Equal(now) {
		t.Errorf("expected injected clock time %v, got %v", now, events[0].Timestamp)
	}
}

func TestNormalize_MissingTimestampExcludeEvent(t *testing.T) {
	n := NewNormalizer(ExcludeEvent)

	transfers := []domain.RawTransfer{
		rawTransfer(wallet, strPtr("0xdest"), 10, nil),
		rawTransfer(wallet, strPtr("0xdest"), 20, strPtr("2024-01-10T00:00:00Z")),
	}

	events := n.Normalize(transfers, wallet)
	if len(events) != 1 {
		t.Fatalf("expected untimed event excluded, got %d events", len(events))
	}
	if events[0].Amount != 20 {
		t.Errorf("expected the timestamped event to survive, got amount %v", events[0].Amount)
	}
}

func TestNormalize_MissingTimestampSortLast(t *testing.T) {
	n := NewNormalizer(SortLast)

	transfers := []domain.RawTransfer{
		rawTransfer(wallet, strPtr("0xdest"), 1, nil),
		rawTransfer(wallet, strPtr("0xdest"), 2, strPtr("2024-05-10T00:00:00Z")),
		rawTransfer(wallet, strPtr("0xdest"), 3, nil),
	}

	events := n.Normalize(transfers, wallet)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Amount != 2 {
		t.Errorf("expected timestamped event first, got amount %v", events[0].Amount)
	}
	// Untimed events keep input order among themselves.
	if events[1].Amount != 1 || events[2].Amount != 3 {
		t.Errorf("expected untimed events last in input order, got %v then %v", events[1].Amount, events[2].Amount)
	}
}

func TestNormalize_UnparseableTimestampTreatedAsMissing(t *testing.T) {
	n := NewNormalizer(ExcludeEvent)

	transfers := []domain.RawTransfer{
		rawTransfer(wallet, strPtr("0xdest"), 10, strPtr("not-a-date")),
	}

	if events := n.Normalize(transfers, wallet); len(events) != 0 {
		t.Fatalf("expected unparseable timestamp handled by policy, got %d events", len(events))
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := NewNormalizer(UseCurrentTime)
	if events := n.Normalize(nil, wallet); len(events) != 0 {
		t.Fatalf("expected no events for empty input, got %d", len(events))
	}
}
