//go:build acceptance

package pgxstore_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/journal/store/pgxstore"
	"github.com/screwyprof/faucet/migrator/migratortest"
	"github.com/screwyprof/faucet/pkg/ethaddr"
)

// TestJournalStoreAcceptance tests the journal store against real PostgreSQL
func TestJournalStoreAcceptance(t *testing.T) {
	t.Parallel()

	t.Run("it persists a batch and advances the checkpoint", func(t *testing.T) {
		t.Parallel()

		// Arrange
		pool := migratortest.CreateJournalTestDatabase(t, "../../../migrator/migrations", 0)
		store, _ := pgxstore.New(pool)

		entries := []audit.Entry{entry(1), entry(2), entry(3)}

		// Act
		err := store.SaveBatch(t.Context(), entries)

		// Assert
		require.NoError(t, err)
		assertEventCount(t, pool, 3)

		lastSeq, err := store.LastSequence(t.Context())
		require.NoError(t, err)
		assert.Equal(t, uint64(3), lastSeq)
	})

	t.Run("it tolerates replays of already persisted sequences", func(t *testing.T) {
		t.Parallel()

		// Arrange
		pool := migratortest.CreateJournalTestDatabase(t, "../../../migrator/migrations", 0)
		store, _ := pgxstore.New(pool)

		first := []audit.Entry{entry(1), entry(2)}
		require.NoError(t, store.SaveBatch(t.Context(), first))

		// Act - replay the second entry together with a new one
		replay := []audit.Entry{entry(2), entry(3)}
		err := store.SaveBatch(t.Context(), replay)

		// Assert - no duplicates, checkpoint at the highest sequence
		require.NoError(t, err)
		assertEventCount(t, pool, 3)

		lastSeq, err := store.LastSequence(t.Context())
		require.NoError(t, err)
		assert.Equal(t, uint64(3), lastSeq)
	})

	t.Run("it reports the initialized checkpoint before any batch", func(t *testing.T) {
		t.Parallel()

		// Arrange
		pool := migratortest.CreateJournalTestDatabase(t, "../../../migrator/migrations", 42)
		store, _ := pgxstore.New(pool)

		// Act
		lastSeq, err := store.LastSequence(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(42), lastSeq)
	})

	t.Run("it stores the event payload columns per kind", func(t *testing.T) {
		t.Parallel()

		// Arrange
		pool := migratortest.CreateJournalTestDatabase(t, "../../../migrator/migrations", 0)
		store, _ := pgxstore.New(pool)

		account := ethaddr.MustParse("0x00000000000000000000000000000000000000a1")
		claimed := audit.Entry{
			Sequence:   1,
			ID:         uuid.New(),
			Kind:       audit.KindTokensClaimed,
			OccurredAt: time.Now().UTC(),
			Event: audit.TokensClaimed{
				Account: account,
				Amount:  uint256.NewInt(100),
			},
		}
		paused := audit.Entry{
			Sequence:   2,
			ID:         uuid.New(),
			Kind:       audit.KindPauseChanged,
			OccurredAt: time.Now().UTC(),
			Event:      audit.PauseChanged{Paused: true},
		}

		// Act
		require.NoError(t, store.SaveBatch(t.Context(), []audit.Entry{claimed, paused}))

		// Assert
		var gotAccount, gotAmount *string
		err := pool.QueryRow(t.Context(),
			"SELECT account, amount FROM audit_events WHERE sequence = 1").Scan(&gotAccount, &gotAmount)
		require.NoError(t, err)
		require.NotNil(t, gotAccount)
		require.NotNil(t, gotAmount)
		assert.Equal(t, account.String(), *gotAccount)
		assert.Equal(t, "100", *gotAmount)

		var gotPaused *bool
		err = pool.QueryRow(t.Context(),
			"SELECT paused FROM audit_events WHERE sequence = 2").Scan(&gotPaused)
		require.NoError(t, err)
		require.NotNil(t, gotPaused)
		assert.True(t, *gotPaused)
	})
}

// Test data helpers

func entry(seq uint64) audit.Entry {
	return audit.Entry{
		Sequence:   seq,
		ID:         uuid.New(),
		Kind:       audit.KindPauseChanged,
		OccurredAt: time.Now().UTC(),
		Event:      audit.PauseChanged{Paused: false},
	}
}

// Domain-specific assertions

func assertEventCount(t *testing.T, pool *pgxpool.Pool, expected int64) {
	t.Helper()

	var count int64
	err := pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM audit_events").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, expected, count)
}
