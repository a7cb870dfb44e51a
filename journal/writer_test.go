package journal_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/faucet"
	"github.com/screwyprof/faucet/journal"
	"github.com/screwyprof/faucet/pkg/ethaddr"
	"github.com/screwyprof/faucet/token"
)

// TestWriterBatching tests the core batching behaviour
func TestWriterBatching(t *testing.T) {
	t.Parallel()

	t.Run("it flushes once the batch size is reached", func(t *testing.T) {
		t.Parallel()

		// Arrange
		savedBatchesCh, store := storeCapturingBatches()
		entries, w := writerWithBatchSize(2)(store)

		// Act
		done := runWriter(t, w)
		entries <- entry(1)
		entries <- entry(2)
		close(entries)
		<-done

		// Assert
		assertEntriesWereSaved(t, savedBatchesCh, 1, 2)
	})

	t.Run("it flushes the buffer when the interval elapses", func(t *testing.T) {
		t.Parallel()

		// Arrange
		savedBatchesCh, store := storeCapturingBatches()
		clock := createTestClock()
		entries, w := clockControlledWriter(store, clock)

		flushes := make(chan journal.FlushCompleted, 1)
		events, done := w.Start(t.Context())
		subCloser := journal.NewSubscriber(events,
			journal.OnFlushCompleted(func(e journal.FlushCompleted) { flushes <- e }),
		)
		t.Cleanup(subCloser)

		// Act
		entries <- entry(7)
		clock.tick <- time.Now()
		flush := <-flushes
		close(entries)
		<-done

		// Assert
		assert.Equal(t, 1, flush.Count)
		assert.Equal(t, uint64(7), flush.LastSequence)
		assertEntriesWereSaved(t, savedBatchesCh, 7)
	})

	t.Run("it flushes the remainder when the stream closes", func(t *testing.T) {
		t.Parallel()

		// Arrange
		savedBatchesCh, store := storeCapturingBatches()
		entries, w := writerWithBatchSize(100)(store)

		// Act
		done := runWriter(t, w)
		entries <- entry(1)
		entries <- entry(2)
		entries <- entry(3)
		close(entries)
		<-done

		// Assert
		assertEntriesWereSaved(t, savedBatchesCh, 1, 2, 3)
	})

	t.Run("it flushes the remainder on context cancellation", func(t *testing.T) {
		t.Parallel()

		// Arrange
		savedBatchesCh, store := storeCapturingBatches()
		entries, w := writerWithBatchSize(100)(store)

		ctx, cancel := context.WithCancel(t.Context())
		events, done := w.Start(ctx)

		shutdownCh := make(chan journal.WriterShutdown, 1)
		subCloser := journal.NewSubscriber(events,
			journal.OnWriterShutdown(func(e journal.WriterShutdown) { shutdownCh <- e }),
		)
		t.Cleanup(subCloser)

		// Act
		entries <- entry(42)
		cancel()
		<-done

		// Assert
		shutdown := <-shutdownCh
		assert.ErrorIs(t, shutdown.Reason, context.Canceled)
		assertEntriesWereSaved(t, savedBatchesCh, 42)
	})
}

// TestWriterFailureHandling tests retry behaviour when the store fails
func TestWriterFailureHandling(t *testing.T) {
	t.Parallel()

	t.Run("it keeps the batch and retries after a failed flush", func(t *testing.T) {
		t.Parallel()

		// Arrange
		store := storeFailingOnce()
		clock := createTestClock()
		entries, w := clockControlledWriter(store, clock)

		errorsCh := make(chan journal.WriterError, 1)
		flushes := make(chan journal.FlushCompleted, 1)
		events, done := w.Start(t.Context())
		subCloser := journal.NewSubscriber(events,
			journal.OnWriterError(func(e journal.WriterError) { errorsCh <- e }),
			journal.OnFlushCompleted(func(e journal.FlushCompleted) { flushes <- e }),
		)
		t.Cleanup(subCloser)

		// Act
		entries <- entry(1)
		clock.tick <- time.Now() // first flush fails
		writerErr := <-errorsCh
		clock.tick <- time.Now() // retry succeeds
		flush := <-flushes
		close(entries)
		<-done

		// Assert
		assert.ErrorIs(t, writerErr.Err, journal.ErrSaveBatchFailed)
		assert.Equal(t, 1, flush.Count)
		require.Len(t, store.Batches(), 1)
		assert.Equal(t, uint64(1), store.Batches()[0][0].Sequence)
	})
}

// TestWriterDrainPersistence tests the production shutdown ordering: the
// writer runs on its own context and stops when the audit log closes, so
// claims served while the HTTP server drains still reach the store
func TestWriterDrainPersistence(t *testing.T) {
	t.Parallel()

	t.Run("it persists claims served after the shutdown signal", func(t *testing.T) {
		t.Parallel()

		// Arrange - the daemon wiring: audit log feeding the writer,
		// ledger and gate behind the service
		owner := ethaddr.MustParse("0x00000000000000000000000000000000000f0001")
		admin := ethaddr.MustParse("0x00000000000000000000000000000000000f0002")
		gateAddr := ethaddr.MustParse("0x00000000000000000000000000000000000f0003")
		alice := ethaddr.MustParse("0x00000000000000000000000000000000000000a1")

		savedBatchesCh, store := storeCapturingBatches()

		auditLog := audit.NewLog()
		ledger := token.NewLedger(owner, auditLog)
		gate := faucet.NewGate(gateAddr, admin, ledger, auditLog)
		require.NoError(t, ledger.SetMinter(owner, gateAddr))
		svc := faucet.NewService(ledger, gate)

		w := journal.NewWriter(auditLog.Subscribe(16), store,
			journal.WithBatchSize(100),
			journal.WithClock(createTestClock()),
		)
		events, done := w.Start(context.Background())
		subCloser := journal.NewSubscriber(events)
		t.Cleanup(subCloser)

		// Act - the shutdown signal fires first; an in-flight claim
		// completes while the server drains, then the log closes
		signalCtx, stop := context.WithCancel(t.Context())
		stop()
		<-signalCtx.Done()

		_, err := svc.Claim(alice)
		require.NoError(t, err)

		auditLog.Close()
		<-done

		// Assert - the claim's Transfer and TokensClaimed entries were saved
		assertEntriesWereSaved(t, savedBatchesCh, 1, 2)
	})
}

// TestWriterEventEmission tests lifecycle event emission
func TestWriterEventEmission(t *testing.T) {
	t.Parallel()

	t.Run("it emits a started event with its configuration", func(t *testing.T) {
		t.Parallel()

		// Arrange
		_, store := storeCapturingBatches()
		entries := make(chan audit.Entry)
		w := journal.NewWriter(entries, store,
			journal.WithBatchSize(8),
			journal.WithFlushInterval(time.Minute),
			journal.WithClock(createTestClock()),
		)

		startedCh := make(chan journal.WriterStarted, 1)
		events, done := w.Start(t.Context())
		subCloser := journal.NewSubscriber(events,
			journal.OnWriterStarted(func(e journal.WriterStarted) { startedCh <- e }),
		)
		t.Cleanup(subCloser)

		// Act
		started := <-startedCh
		close(entries)
		<-done

		// Assert
		assert.Equal(t, 8, started.BatchSize)
		assert.Equal(t, time.Minute, started.FlushInterval)
	})

	t.Run("it emits a shutdown event when the stream closes", func(t *testing.T) {
		t.Parallel()

		// Arrange
		_, store := storeCapturingBatches()
		entries, w := writerWithBatchSize(10)(store)

		shutdownCh := make(chan journal.WriterShutdown, 1)
		events, done := w.Start(t.Context())
		subCloser := journal.NewSubscriber(events,
			journal.OnWriterShutdown(func(e journal.WriterShutdown) { shutdownCh <- e }),
		)
		t.Cleanup(subCloser)

		// Act
		close(entries)
		<-done

		// Assert
		shutdown := <-shutdownCh
		assert.NoError(t, shutdown.Reason, "normal shutdown carries no reason")
	})
}

// Test data helpers

func entry(seq uint64) audit.Entry {
	return audit.Entry{
		Sequence:   seq,
		ID:         uuid.New(),
		Kind:       audit.KindTokensClaimed,
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Test setup helpers

func createTestClock() *fakeClock {
	return &fakeClock{tick: make(chan time.Time, 10)}
}

func writerWithBatchSize(n int) func(*mockStore) (chan audit.Entry, *journal.Writer) {
	return func(store *mockStore) (chan audit.Entry, *journal.Writer) {
		// Unbuffered so a completed send means the writer holds the entry
		entries := make(chan audit.Entry)
		w := journal.NewWriter(entries, store,
			journal.WithBatchSize(n),
			journal.WithClock(createTestClock()), // ticks never fire unless driven
		)
		return entries, w
	}
}

func clockControlledWriter(store *mockStore, clock *fakeClock) (chan audit.Entry, *journal.Writer) {
	// Unbuffered so a completed send means the writer holds the entry
	entries := make(chan audit.Entry)
	w := journal.NewWriter(entries, store,
		journal.WithBatchSize(100),
		journal.WithClock(clock),
	)
	return entries, w
}

func storeCapturingBatches() (chan []audit.Entry, *mockStore) {
	savedBatchesCh := make(chan []audit.Entry, 10)
	store := &mockStore{
		onSave: func(ctx context.Context, batch []audit.Entry) error {
			savedBatchesCh <- batch
			return nil
		},
	}
	return savedBatchesCh, store
}

func storeFailingOnce() *mockStore {
	failed := false
	store := &mockStore{}
	store.onSave = func(ctx context.Context, batch []audit.Entry) error {
		if !failed {
			failed = true
			return fmt.Errorf("connection refused")
		}
		return nil
	}
	return store
}

func runWriter(t *testing.T, w *journal.Writer) <-chan struct{} {
	t.Helper()
	events, done := w.Start(t.Context())
	subCloser := journal.NewSubscriber(events)
	t.Cleanup(subCloser)
	return done
}

// Domain-specific assertions

func assertEntriesWereSaved(t *testing.T, savedBatchesCh chan []audit.Entry, sequences ...uint64) {
	t.Helper()
	close(savedBatchesCh)

	var allSaved []audit.Entry
	for batch := range savedBatchesCh {
		allSaved = append(allSaved, batch...)
	}

	require.Len(t, allSaved, len(sequences), "Expected %d entries to be saved", len(sequences))
	for i, seq := range sequences {
		assert.Equal(t, seq, allSaved[i].Sequence, "Entry %d should have sequence %d", i, seq)
	}
}

// Mock implementations

// fakeClock implements Clock interface for deterministic testing
type fakeClock struct {
	tick chan time.Time
}

func (f *fakeClock) After(_ time.Duration) <-chan time.Time {
	return f.tick
}

func (f *fakeClock) Now() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

// mockStore implements Store interface for testing
type mockStore struct {
	mu      sync.Mutex
	batches [][]audit.Entry
	lastSeq uint64
	onSave  func(ctx context.Context, batch []audit.Entry) error
}

func (m *mockStore) LastSequence(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSeq, nil
}

func (m *mockStore) SaveBatch(ctx context.Context, batch []audit.Entry) error {
	if m.onSave != nil {
		if err := m.onSave(ctx, batch); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, batch)
	if len(batch) > 0 {
		m.lastSeq = batch[len(batch)-1].Sequence
	}
	return nil
}

func (m *mockStore) Batches() [][]audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}
