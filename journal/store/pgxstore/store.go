package pgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/journal/store/dbrow"
)

// Sentinel errors for store operations
var (
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrTempTableFailed    = errors.New("temporary table operation failed")
	ErrCopyFailed         = errors.New("bulk copy operation failed")
	ErrInsertFailed       = errors.New("insert operation failed")
	ErrCheckpointFailed   = errors.New("checkpoint update failed")
	ErrLastSequenceFailed = errors.New("failed to get last sequence")
)

// Store implements journal.Store using pgx
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL store with an existing connection pool
// Returns the store and a closer function
func New(pool *pgxpool.Pool) (*Store, func()) {
	store := &Store{pool: pool}
	closer := func() {
		pool.Close()
	}
	return store, closer
}

// LastSequence returns the highest persisted audit sequence (checkpoint)
func (s *Store) LastSequence(ctx context.Context) (uint64, error) {
	var lastSeq int64
	err := s.pool.QueryRow(ctx, "SELECT COALESCE(last_sequence, 0) FROM journal_checkpoint").Scan(&lastSeq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLastSequenceFailed, err)
	}
	return uint64(lastSeq), nil
}

// SaveBatch saves a batch of audit entries using pgx CopyFrom for maximum performance
// Uses a temporary table approach so replayed sequences are dropped instead of erroring
func (s *Store) SaveBatch(ctx context.Context, entries []audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	// Convert audit.Entry to [][]any format for pgx.CopyFromRows
	rows := dbrow.AuditEntriesToRows(entries)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // No-op if commit succeeds

	// Create temporary table for bulk insert
	_, err = tx.Exec(ctx, `
		CREATE TEMPORARY TABLE temp_audit_events (
			sequence BIGINT,
			id UUID,
			kind TEXT,
			account TEXT,
			counterparty TEXT,
			amount TEXT,
			paused BOOLEAN,
			occurred_at TIMESTAMP WITH TIME ZONE
		) ON COMMIT DROP
	`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTempTableFailed, err)
	}

	// Use CopyFrom for extremely fast bulk insert into temporary table
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"temp_audit_events"},
		[]string{"sequence", "id", "kind", "account", "counterparty", "amount", "paused", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCopyFailed, err)
	}

	// Insert from temporary table to main table with conflict resolution
	// created_at will be populated by database DEFAULT CURRENT_TIMESTAMP
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_events (sequence, id, kind, account, counterparty, amount, paused, occurred_at)
		SELECT sequence, id, kind, account, counterparty, amount, paused, occurred_at
		FROM temp_audit_events
		ON CONFLICT (sequence) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInsertFailed, err)
	}

	// Entries arrive in audit order, so the last one has the highest sequence
	checkpointSeq := int64(entries[len(entries)-1].Sequence)

	// Update checkpoint (singleton table with proper upsert)
	_, err = tx.Exec(ctx, `
		INSERT INTO journal_checkpoint (single_row, last_sequence) VALUES (TRUE, $1)
		ON CONFLICT (single_row) DO UPDATE SET last_sequence = GREATEST(journal_checkpoint.last_sequence, $1)
	`, checkpointSeq)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointFailed, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	return nil
}
