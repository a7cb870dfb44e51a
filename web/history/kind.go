package history

import (
	"errors"
	"fmt"

	"github.com/screwyprof/faucet/audit"
)

// KindFilter narrows a query to one event kind.
// The empty string means no kind filtering.
type KindFilter string

// Kind validation errors
var (
	ErrUnknownKind = errors.New("unknown event kind")
)

// validKinds are the event kinds the audit log produces
var validKinds = map[string]struct{}{
	audit.KindTransfer:      {},
	audit.KindApproval:      {},
	audit.KindMinterChanged: {},
	audit.KindTokensClaimed: {},
	audit.KindPauseChanged:  {},
}

// ParseKindFilter creates a KindFilter with domain validation
func ParseKindFilter(kind string) (KindFilter, error) {
	// Empty means no kind filter
	if kind == "" {
		return KindFilter(""), nil
	}

	if _, ok := validKinds[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return KindFilter(kind), nil
}

// IsSet reports whether the filter is active
func (k KindFilter) IsSet() bool { return k != "" }

// String returns the underlying kind value
func (k KindFilter) String() string { return string(k) }
