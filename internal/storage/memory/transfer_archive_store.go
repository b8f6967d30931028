package memory

import (
	"context"
	"strings"
	"sync"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/storage"
)

// TransferArchiveStore is an in-memory implementation of
// storage.TransferArchiveStore.
type TransferArchiveStore struct {
	mu   sync.RWMutex
	data map[string][]domain.RawTransfer // keyed by lower-cased wallet
}

// NewTransferArchiveStore creates a new in-memory transfer archive.
func NewTransferArchiveStore() *TransferArchiveStore {
	return &TransferArchiveStore{
		data: make(map[string][]domain.RawTransfer),
	}
}

// Compile-time interface check.
var _ storage.TransferArchiveStore = (*TransferArchiveStore)(nil)

// InsertBulk archives transfers for a wallet. Empty input is a no-op.
func (s *TransferArchiveStore) InsertBulk(_ context.Context, wallet string, transfers []domain.RawTransfer) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}
	if len(transfers) == 0 {
		return nil
	}

	key := strings.ToLower(wallet)

	s.mu.Lock()
	s.data[key] = append(s.data[key], transfers...)
	s.mu.Unlock()
	return nil
}

// GetByWallet retrieves archived transfers for a wallet in insertion order.
func (s *TransferArchiveStore) GetByWallet(_ context.Context, wallet string) ([]domain.RawTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[strings.ToLower(wallet)]
	out := make([]domain.RawTransfer, len(stored))
	copy(out, stored)
	return out, nil
}
