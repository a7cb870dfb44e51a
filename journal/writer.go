package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/pkg/clock"
)

// Option configures the Writer
// ----------------------------
type Option func(*Writer)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(w *Writer) { w.clock = c }
}

// WithFlushInterval sets how long entries may sit in the buffer
func WithFlushInterval(d time.Duration) Option {
	return func(w *Writer) { w.flushInterval = d }
}

// WithBatchSize sets the buffer size that forces an immediate flush
func WithBatchSize(n int) Option {
	return func(w *Writer) { w.batchSize = n }
}

// shutdownFlushTimeout bounds the final flush once shutdown has been requested
const shutdownFlushTimeout = 5 * time.Second

// Writer drains the audit entry stream into the store in batches
// --------------------------------------------------------------
// A batch is flushed when it reaches the batch size or when the flush
// interval elapses, whichever comes first. A failed flush keeps the batch
// and retries on the next trigger; the store deduplicates by sequence.
type Writer struct {
	entries       <-chan audit.Entry
	store         Store
	clock         Clock
	flushInterval time.Duration
	batchSize     int
	events        chan Event
}

// NewWriter constructs a Writer with required dependencies and options.
// By default it uses a real clock, a 2s flush interval and batches of 64.
func NewWriter(entries <-chan audit.Entry, store Store, opts ...Option) *Writer {
	w := &Writer{
		entries:       entries,
		store:         store,
		clock:         clock.SystemClock{},
		flushInterval: DefaultFlushInterval,
		batchSize:     DefaultBatchSize,
		events:        make(chan Event, 10),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the writer and returns the events channel and done channel.
//
// Shutdown pattern:
//  1. Close the audit log (or cancel the context) to request shutdown
//  2. The writer flushes what it holds and closes the events channel
//  3. Wait for complete shutdown: <-done
func (w *Writer) Start(ctx context.Context) (<-chan Event, <-chan struct{}) {
	done := make(chan struct{})
	go func() {
		defer close(w.events)
		defer close(done)
		w.run(ctx)
	}()
	return w.events, done
}

// run drains the stream, respecting context cancellation
func (w *Writer) run(ctx context.Context) {
	w.events <- WriterStarted{
		FlushInterval: w.flushInterval,
		BatchSize:     w.batchSize,
	}

	var pending []audit.Entry
	tick := w.clock.After(w.flushInterval)

	for {
		select {
		case <-ctx.Done():
			w.finalFlush(pending)
			w.events <- WriterShutdown{Reason: ctx.Err()}
			return

		case entry, ok := <-w.entries:
			if !ok {
				// audit log closed: flush the remainder and stop
				w.finalFlush(pending)
				w.events <- WriterShutdown{Reason: nil}
				return
			}
			pending = append(pending, entry)
			if len(pending) >= w.batchSize {
				pending = w.flush(ctx, pending)
			}

		case <-tick:
			pending = w.flush(ctx, pending)
			tick = w.clock.After(w.flushInterval)
		}
	}
}

// flush persists the batch; on failure the batch is kept for the next trigger
func (w *Writer) flush(ctx context.Context, pending []audit.Entry) []audit.Entry {
	if len(pending) == 0 {
		return pending
	}

	if err := w.store.SaveBatch(ctx, pending); err != nil {
		w.events <- WriterError{Err: fmt.Errorf("%w: %w", ErrSaveBatchFailed, err)}
		return pending
	}

	w.events <- FlushCompleted{
		Count:        len(pending),
		LastSequence: pending[len(pending)-1].Sequence,
	}
	return nil
}

// finalFlush makes a bounded last attempt to persist what is still buffered
func (w *Writer) finalFlush(pending []audit.Entry) {
	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancel()
	w.flush(ctx, pending)
}
