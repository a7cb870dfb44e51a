// Package journal persists the audit log to durable storage. The Writer
// consumes the audit entry stream and flushes batches to the store, so the
// externally observable event history survives process restarts.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/screwyprof/faucet/audit"
)

// Sentinel errors for failure cases
var (
	ErrSaveBatchFailed    = errors.New("save batch failed")
	ErrCheckpointReadback = errors.New("checkpoint retrieval failed")
)

// Default configuration values
const (
	DefaultBatchSize     = 64
	DefaultFlushInterval = 2 * time.Second
)

// Store provides persistence for audit entries
type Store interface {
	// LastSequence returns the highest persisted sequence number, zero if none
	LastSequence(ctx context.Context) (uint64, error)
	// SaveBatch persists a batch of entries and advances the checkpoint.
	// It must tolerate replays of already-persisted sequences.
	SaveBatch(ctx context.Context, entries []audit.Entry) error
}

// Clock abstracts time for production and testing
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

// Event represents a writer lifecycle event
type Event any

type WriterStarted struct {
	FlushInterval time.Duration
	BatchSize     int
}

type FlushCompleted struct {
	Count        int
	LastSequence uint64
}

type WriterError struct {
	Err error
}

type WriterShutdown struct {
	Reason error // nil when the audit log closed normally
}
