package storage

import (
	"context"

	"conversion-insight/internal/domain"
)

// AnalysisStore provides access to persisted analysis records.
type AnalysisStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, r *domain.AnalysisRecord) error

	// GetByID retrieves a record by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.AnalysisRecord, error)

	// GetByWallet retrieves up to limit records for a wallet, newest first.
	// Wallet matching is case-insensitive. limit <= 0 means no limit.
	GetByWallet(ctx context.Context, wallet string, limit int) ([]*domain.AnalysisRecord, error)

	// GetLatestByWallet retrieves the most recent record for a wallet.
	// Returns ErrNotFound if the wallet has no records.
	GetLatestByWallet(ctx context.Context, wallet string) (*domain.AnalysisRecord, error)
}

// TransferArchiveStore archives the raw transfers each analysis consumed,
// for audit and re-analysis without refetching.
type TransferArchiveStore interface {
	// InsertBulk archives transfers for a wallet. Empty input is a no-op.
	InsertBulk(ctx context.Context, wallet string, transfers []domain.RawTransfer) error

	// GetByWallet retrieves archived transfers for a wallet in insertion
	// order. Wallet matching is case-insensitive.
	GetByWallet(ctx context.Context, wallet string) ([]domain.RawTransfer, error)
}
