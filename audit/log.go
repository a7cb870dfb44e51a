package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screwyprof/faucet/pkg/clock"
)

// Clock abstracts time for entry timestamps
type Clock interface {
	Now() time.Time
}

// Option configures the Log
type Option func(*Log)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(l *Log) { l.clock = c }
}

// WithStartSequence sets the first sequence number to assign.
// Used to resume numbering from the persisted journal checkpoint.
func WithStartSequence(seq uint64) Option {
	return func(l *Log) { l.next = seq }
}

// Log is the ordered, append-only event log.
// Entries are assigned strictly increasing sequence numbers under a single
// lock, so the order of the log is the order in which state changes were
// applied. Subscribers receive every entry in that order; a slow subscriber
// backpressures recording rather than losing entries.
type Log struct {
	mu      sync.Mutex
	clock   Clock
	next    uint64
	entries []Entry
	subs    []chan Entry
	closed  bool
}

// NewLog constructs a Log starting at sequence 1 with the system clock
func NewLog(opts ...Option) *Log {
	l := &Log{
		clock: clock.SystemClock{},
		next:  1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an event to the log and fans it out to subscribers
func (l *Log) Record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	entry := Entry{
		Sequence:   l.next,
		ID:         uuid.New(),
		Kind:       e.Kind(),
		OccurredAt: l.clock.Now(),
		Event:      e,
	}
	l.next++
	l.entries = append(l.entries, entry)

	for _, sub := range l.subs {
		sub <- entry
	}
}

// Subscribe returns a channel delivering every entry recorded after the call.
// The channel is closed when the log is closed.
func (l *Log) Subscribe(buffer int) <-chan Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Entry, buffer)
	l.subs = append(l.subs, ch)
	return ch
}

// Entries returns a copy of everything recorded so far, in order
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// LastSequence returns the sequence of the most recent entry, zero if empty
func (l *Log) LastSequence() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.next - 1
}

// Close stops recording and closes all subscriber channels
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true

	for _, sub := range l.subs {
		close(sub)
	}
}
