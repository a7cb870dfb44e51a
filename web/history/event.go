// Package history is the read side of the audit log: typed criteria for
// querying persisted events and the page abstraction the handlers serve.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/screwyprof/faucet/pkg/ethaddr"
)

// Sentinel errors for event criteria construction
var (
	ErrInvalidAccount = errors.New("invalid account")
	ErrInvalidKind    = errors.New("invalid kind")
	ErrInvalidPerPage = errors.New("invalid per_page")
)

// EventsFinder defines the interface for querying audit events
type EventsFinder interface {
	FindEvents(ctx context.Context, criteria EventsCriteria) (*EventsPage, error)
}

// Event is an audit log entry as read back from storage.
// Account, Counterparty and Amount are empty when the event kind
// does not carry them; Paused is nil except for pause events.
type Event struct {
	Sequence     uint64
	ID           string
	Kind         string
	Account      string
	Counterparty string
	Amount       string
	Paused       *bool
	OccurredAt   time.Time
}

// EventsCriteria specifies criteria for querying events using domain Value Objects
type EventsCriteria struct {
	Account AccountFilter // Account filter. Zero value means no account filtering
	Kind    KindFilter    // Event kind filter. Empty means no kind filtering
	Page    Page          // 1-based page number
	Size    PerPage       // Items per page
}

// ItemsPerPage returns the number of items requested per page
func (c EventsCriteria) ItemsPerPage() uint64 {
	return c.Size.Uint64()
}

// ItemsToSkip returns the number of items to skip for pagination
func (c EventsCriteria) ItemsToSkip() uint64 {
	return (c.Page.Uint64() - 1) * c.Size.Uint64()
}

// NewEventsCriteria creates EventsCriteria from raw request values with validation
func NewEventsCriteria(account, kind string, page, perPage uint64) (EventsCriteria, error) {
	a, err := ParseAccountFilter(account)
	if err != nil {
		return EventsCriteria{}, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}

	k, err := ParseKindFilter(kind)
	if err != nil {
		return EventsCriteria{}, fmt.Errorf("%w: %w", ErrInvalidKind, err)
	}

	p := ParsePageFromUint64(page)

	pp, err := ParsePerPageFromUint64(perPage)
	if err != nil {
		return EventsCriteria{}, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
	}

	return EventsCriteria{
		Account: a,
		Kind:    k,
		Page:    p,
		Size:    pp,
	}, nil
}

// AccountFilter narrows a query to events involving one address
type AccountFilter struct {
	address ethaddr.Address
	set     bool
}

// ParseAccountFilter creates an AccountFilter from a hex string.
// An empty string means no account filtering.
func ParseAccountFilter(s string) (AccountFilter, error) {
	if s == "" {
		return AccountFilter{}, nil
	}

	addr, err := ethaddr.Parse(s)
	if err != nil {
		return AccountFilter{}, err
	}

	return AccountFilter{address: addr, set: true}, nil
}

// IsSet reports whether the filter is active
func (f AccountFilter) IsSet() bool { return f.set }

// String returns the filtered address in canonical hex form
func (f AccountFilter) String() string { return f.address.String() }
