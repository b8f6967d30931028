package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/storage"
)

// AnalysisStore implements storage.AnalysisStore using PostgreSQL. The full
// outcome is stored as JSONB alongside the columns queries filter on.
type AnalysisStore struct {
	pool *Pool
}

// NewAnalysisStore creates a new AnalysisStore.
func NewAnalysisStore(pool *Pool) *AnalysisStore {
	return &AnalysisStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AnalysisStore = (*AnalysisStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the ID exists.
func (s *AnalysisStore) Insert(ctx context.Context, r *domain.AnalysisRecord) error {
	if r == nil || r.ID == "" || r.Wallet == "" {
		return storage.ErrInvalidInput
	}

	outcome, err := json.Marshal(r.Outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	query := `
		INSERT INTO analyses (
			id, wallet, currency, frequency, overall_score, cost_type, cost_amount, outcome, created_at
		) VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.pool.Exec(ctx, query,
		r.ID,
		r.Wallet,
		r.Outcome.Currency,
		string(r.Outcome.Pattern.Frequency),
		r.Outcome.Score.Overall,
		string(r.Outcome.Cost.Type),
		r.Outcome.Cost.Amount,
		outcome,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// GetByID retrieves a record by ID. Returns ErrNotFound if not exists.
func (s *AnalysisStore) GetByID(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	query := `
		SELECT id, wallet, outcome, created_at
		FROM analyses
		WHERE id = $1
	`

	r, err := scanAnalysis(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get analysis by id: %w", err)
	}
	return r, nil
}

// GetByWallet retrieves up to limit records for a wallet, newest first.
func (s *AnalysisStore) GetByWallet(ctx context.Context, wallet string, limit int) ([]*domain.AnalysisRecord, error) {
	query := `
		SELECT id, wallet, outcome, created_at
		FROM analyses
		WHERE wallet = lower($1)
		ORDER BY created_at DESC, id DESC
	`
	args := []any{wallet}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get analyses by wallet: %w", err)
	}
	defer rows.Close()

	var records []*domain.AnalysisRecord
	for rows.Next() {
		r, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return records, nil
}

// GetLatestByWallet retrieves the most recent record for a wallet.
func (s *AnalysisStore) GetLatestByWallet(ctx context.Context, wallet string) (*domain.AnalysisRecord, error) {
	query := `
		SELECT id, wallet, outcome, created_at
		FROM analyses
		WHERE wallet = lower($1)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	r, err := scanAnalysis(s.pool.QueryRow(ctx, query, wallet))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest analysis: %w", err)
	}
	return r, nil
}

// scanAnalysis scans one analyses row.
func scanAnalysis(row pgx.Row) (*domain.AnalysisRecord, error) {
	var (
		r         domain.AnalysisRecord
		outcome   []byte
		createdAt time.Time
	)
	if err := row.Scan(&r.ID, &r.Wallet, &outcome, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(outcome, &r.Outcome); err != nil {
		return nil, fmt.Errorf("unmarshal outcome: %w", err)
	}
	r.CreatedAt = createdAt
	return &r, nil
}
