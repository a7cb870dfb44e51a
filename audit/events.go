// Package audit is the append-only, ordered log of externally observable
// state changes. The ledger and the claim gate record events here; the
// journal writer and the live stream consume them.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/screwyprof/faucet/pkg/ethaddr"
)

// Event kinds as persisted and streamed
const (
	KindTransfer      = "Transfer"
	KindApproval      = "Approval"
	KindMinterChanged = "MinterChanged"
	KindTokensClaimed = "TokensClaimed"
	KindPauseChanged  = "PauseChanged"
)

// Event is an externally observable state change
type Event interface {
	Kind() string
}

// Recorder accepts events for the audit log
type Recorder interface {
	Record(e Event)
}

// Transfer records tokens moving between accounts.
// Mints carry the zero address as From.
type Transfer struct {
	From   ethaddr.Address
	To     ethaddr.Address
	Amount *uint256.Int
}

func (Transfer) Kind() string { return KindTransfer }

// Approval records an allowance being set (overwritten, not accumulated)
type Approval struct {
	Owner   ethaddr.Address
	Spender ethaddr.Address
	Amount  *uint256.Int
}

func (Approval) Kind() string { return KindApproval }

// MinterChanged records the ledger's minter identity being replaced
type MinterChanged struct {
	NewMinter ethaddr.Address
}

func (MinterChanged) Kind() string { return KindMinterChanged }

// TokensClaimed records a successful faucet claim
type TokensClaimed struct {
	Account   ethaddr.Address
	Amount    *uint256.Int
	Timestamp time.Time
}

func (TokensClaimed) Kind() string { return KindTokensClaimed }

// PauseChanged records the faucet pause flag being set.
// Emitted on every SetPaused call, including no-op overwrites.
type PauseChanged struct {
	Paused bool
}

func (PauseChanged) Kind() string { return KindPauseChanged }

// Entry is an event as it appears in the log: sequenced, identified and timestamped
type Entry struct {
	Sequence   uint64
	ID         uuid.UUID
	Kind       string
	OccurredAt time.Time
	Event      Event
}
