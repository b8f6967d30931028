package memory

import (
	"context"
	"errors"
	"testing"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/storage"
)

func TestTransferArchiveStore_InsertBulkAndGet(t *testing.T) {
	s := NewTransferArchiveStore()
	ctx := context.Background()

	to := "0xdest"
	batch1 := []domain.RawTransfer{
		{Hash: "0x1", From: "0xw", To: &to, Value: 10, Asset: "USDC"},
		{Hash: "0x2", From: "0xw", To: &to, Value: 20, Asset: "USDC"},
	}
	batch2 := []domain.RawTransfer{
		{Hash: "0x3", From: "0xw", To: &to, Value: 30, Asset: "USDC"},
	}

	if err := s.InsertBulk(ctx, "0xWallet", batch1); err != nil {
		t.Fatalf("insert batch1: %v", err)
	}
	if err := s.InsertBulk(ctx, "0xwallet", batch2); err != nil {
		t.Fatalf("insert batch2: %v", err)
	}

	transfers, err := s.GetByWallet(ctx, "0xWALLET")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(transfers) != 3 {
		t.Fatalf("expected 3 transfers, got %d", len(transfers))
	}
	for i, hash := range []string{"0x1", "0x2", "0x3"} {
		if transfers[i].Hash != hash {
			t.Errorf("position %d: expected %s, got %s", i, hash, transfers[i].Hash)
		}
	}
}

func TestTransferArchiveStore_EmptyInputIsNoOp(t *testing.T) {
	s := NewTransferArchiveStore()
	ctx := context.Background()

	if err := s.InsertBulk(ctx, "0xw", nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	transfers, _ := s.GetByWallet(ctx, "0xw")
	if len(transfers) != 0 {
		t.Errorf("expected no transfers, got %d", len(transfers))
	}
}

func TestTransferArchiveStore_EmptyWalletRejected(t *testing.T) {
	s := NewTransferArchiveStore()

	err := s.InsertBulk(context.Background(), "", []domain.RawTransfer{{Hash: "0x1"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTransferArchiveStore_UnknownWalletIsEmpty(t *testing.T) {
	s := NewTransferArchiveStore()

	transfers, err := s.GetByWallet(context.Background(), "0xnobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(transfers) != 0 {
		t.Errorf("expected empty result, got %d", len(transfers))
	}
}
