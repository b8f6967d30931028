package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/storage"
)

// TransferArchiveStore implements storage.TransferArchiveStore using
// ClickHouse. Raw transfers are append-only audit data, a natural fit for
// a columnar store.
type TransferArchiveStore struct {
	conn *Conn
}

// NewTransferArchiveStore creates a new TransferArchiveStore.
func NewTransferArchiveStore(conn *Conn) *TransferArchiveStore {
	return &TransferArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TransferArchiveStore = (*TransferArchiveStore)(nil)

// InsertBulk archives transfers for a wallet. Empty input is a no-op.
func (s *TransferArchiveStore) InsertBulk(ctx context.Context, wallet string, transfers []domain.RawTransfer) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}
	if len(transfers) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO transfer_archive (
			wallet, seq, block_num, hash, from_address, to_address,
			value, asset, category, contract_address, contract_decimal,
			transfer_timestamp, inserted_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	insertedAt := time.Now().UTC()
	for i, t := range transfers {
		err = batch.Append(
			strings.ToLower(wallet), uint32(i),
			t.BlockNum, t.Hash, t.From, t.To,
			t.Value, t.Asset, t.Category,
			t.RawContract.Address, t.RawContract.Decimal,
			t.Timestamp, insertedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByWallet retrieves archived transfers for a wallet in insertion order.
func (s *TransferArchiveStore) GetByWallet(ctx context.Context, wallet string) ([]domain.RawTransfer, error) {
	query := `
		SELECT block_num, hash, from_address, to_address,
		       value, asset, category, contract_address, contract_decimal,
		       transfer_timestamp
		FROM transfer_archive
		WHERE wallet = ?
		ORDER BY inserted_at ASC, seq ASC
	`

	rows, err := s.conn.Query(ctx, query, strings.ToLower(wallet))
	if err != nil {
		return nil, fmt.Errorf("get transfers by wallet: %w", err)
	}
	defer rows.Close()

	var transfers []domain.RawTransfer
	for rows.Next() {
		var t domain.RawTransfer
		err := rows.Scan(
			&t.BlockNum, &t.Hash, &t.From, &t.To,
			&t.Value, &t.Asset, &t.Category,
			&t.RawContract.Address, &t.RawContract.Decimal,
			&t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}
