package pgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgxc "github.com/zolstein/pgx-collect"

	"github.com/screwyprof/faucet/web/history"
	"github.com/screwyprof/faucet/web/store/dbrow"
)

// Sentinel errors for store operations
var (
	ErrQueryFailed = errors.New("event query failed")
)

// EventsFinder implements event querying using pgx
type EventsFinder struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL events finder with an existing connection pool
// Returns the finder and a closer function
func New(pool *pgxpool.Pool) (*EventsFinder, func()) {
	finder := &EventsFinder{pool: pool}
	closer := func() {
		pool.Close()
	}
	return finder, closer
}

// FindEvents queries audit events based on the provided criteria
// Uses LIMIT n+1 technique for efficient pagination without separate count query
func (f *EventsFinder) FindEvents(ctx context.Context, criteria history.EventsCriteria) (*history.EventsPage, error) {
	query, args := NewEventsQuery().ForCriteria(criteria).Build()

	rows, err := f.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	dbRows, err := pgxc.CollectRows(rows, pgxc.RowToStructByName[dbrow.Event])
	if err != nil {
		return nil, fmt.Errorf("%w: scan failed: %w", ErrQueryFailed, err)
	}

	events := make([]history.Event, 0, len(dbRows))
	for _, dbRow := range dbRows {
		events = append(events, toHistoryEvent(dbRow))
	}

	// Determine if there are more pages using LIMIT n+1 technique
	hasMore := len(events) > int(criteria.ItemsPerPage())
	if hasMore {
		// Remove the extra record we requested to detect "has more"
		events = events[:criteria.ItemsPerPage()]
	}

	return &history.EventsPage{
		Events:  events,
		HasMore: hasMore,
		Number:  criteria.Page,
		Size:    criteria.Size,
	}, nil
}

// toHistoryEvent converts a database row to the domain read model
func toHistoryEvent(dbRow dbrow.Event) history.Event {
	return history.Event{
		Sequence:     uint64(dbRow.Sequence),
		ID:           dbRow.ID,
		Kind:         dbRow.Kind,
		Account:      deref(dbRow.Account),
		Counterparty: deref(dbRow.Counterparty),
		Amount:       deref(dbRow.Amount),
		Paused:       dbRow.Paused,
		OccurredAt:   dbRow.OccurredAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
