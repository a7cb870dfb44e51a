package dbrow

import (
	"time"
)

// Event represents an audit event record as queried from the database
type Event struct {
	Sequence     int64     `db:"sequence"`
	ID           string    `db:"id"`
	Kind         string    `db:"kind"`
	Account      *string   `db:"account"`
	Counterparty *string   `db:"counterparty"`
	Amount       *string   `db:"amount"`
	Paused       *bool     `db:"paused"`
	OccurredAt   time.Time `db:"occurred_at"`
}
