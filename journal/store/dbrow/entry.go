package dbrow

import (
	"time"

	"github.com/screwyprof/faucet/audit"
)

// Entry represents an audit entry as stored in the database.
// Account, Counterparty, Amount and Paused are nullable: each event kind
// fills only the columns that apply to it.
type Entry struct {
	Sequence     int64      `db:"sequence"`
	ID           string     `db:"id"`
	Kind         string     `db:"kind"`
	Account      *string    `db:"account"`
	Counterparty *string    `db:"counterparty"`
	Amount       *string    `db:"amount"`
	Paused       *bool      `db:"paused"`
	OccurredAt   time.Time  `db:"occurred_at"`
	// created_at is handled by database DEFAULT CURRENT_TIMESTAMP
}

// AuditEntriesToRows converts audit entries directly to [][]any for pgx.CopyFromRows
func AuditEntriesToRows(entries []audit.Entry) [][]any {
	rows := make([][]any, len(entries))

	for i, entry := range entries {
		row := Entry{
			Sequence:   int64(entry.Sequence),
			ID:         entry.ID.String(),
			Kind:       entry.Kind,
			OccurredAt: entry.OccurredAt,
		}

		switch e := entry.Event.(type) {
		case audit.Transfer:
			row.Account = strPtr(e.To.String())
			row.Counterparty = strPtr(e.From.String())
			row.Amount = strPtr(e.Amount.Dec())
		case audit.Approval:
			row.Account = strPtr(e.Owner.String())
			row.Counterparty = strPtr(e.Spender.String())
			row.Amount = strPtr(e.Amount.Dec())
		case audit.MinterChanged:
			row.Account = strPtr(e.NewMinter.String())
		case audit.TokensClaimed:
			row.Account = strPtr(e.Account.String())
			row.Amount = strPtr(e.Amount.Dec())
		case audit.PauseChanged:
			paused := e.Paused
			row.Paused = &paused
		}

		rows[i] = []any{
			row.Sequence,
			row.ID,
			row.Kind,
			row.Account,
			row.Counterparty,
			row.Amount,
			row.Paused,
			row.OccurredAt,
		}
	}

	return rows
}

func strPtr(s string) *string { return &s }
