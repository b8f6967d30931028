package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/storage"
)

// AnalysisStore is an in-memory implementation of storage.AnalysisStore.
type AnalysisStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AnalysisRecord // keyed by record ID
}

// NewAnalysisStore creates a new in-memory analysis store.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{
		data: make(map[string]*domain.AnalysisRecord),
	}
}

// Compile-time interface check.
var _ storage.AnalysisStore = (*AnalysisStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the ID exists.
func (s *AnalysisStore) Insert(_ context.Context, r *domain.AnalysisRecord) error {
	if r == nil || r.ID == "" || r.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := *r
	stored.Wallet = strings.ToLower(r.Wallet)
	s.data[r.ID] = &stored
	return nil
}

// GetByID retrieves a record by ID. Returns ErrNotFound if not exists.
func (s *AnalysisStore) GetByID(_ context.Context, id string) (*domain.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *r
	return &copy, nil
}

// GetByWallet retrieves up to limit records for a wallet, newest first.
func (s *AnalysisStore) GetByWallet(_ context.Context, wallet string, limit int) ([]*domain.AnalysisRecord, error) {
	wallet = strings.ToLower(wallet)

	s.mu.RLock()
	var records []*domain.AnalysisRecord
	for _, r := range s.data {
		if r.Wallet == wallet {
			copy := *r
			records = append(records, &copy)
		}
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetLatestByWallet retrieves the most recent record for a wallet.
func (s *AnalysisStore) GetLatestByWallet(ctx context.Context, wallet string) (*domain.AnalysisRecord, error) {
	records, err := s.GetByWallet(ctx, wallet, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}
