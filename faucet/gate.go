// Package faucet implements the rate-limited claim gate in front of the
// token ledger: a cooldown interval, a lifetime quota and a global pause
// switch, enforced atomically per account.
package faucet

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/pkg/clock"
	"github.com/screwyprof/faucet/pkg/ethaddr"
	"github.com/screwyprof/faucet/token"
)

// Claim limits, fixed at build time
var (
	// FaucetAmount is what a single successful claim pays out: 100 tokens
	FaucetAmount = token.Whole(100)
	// MaxClaimAmount is the lifetime cap per account: 1000 tokens
	MaxClaimAmount = token.Whole(1_000)
)

// CooldownTime is the minimum wait between successive claims by one account
const CooldownTime = 86400 * time.Second

// Sentinel errors for claim gating, in evaluation order
var (
	ErrFaucetPaused         = errors.New("faucet is paused")
	ErrCooldownActive       = errors.New("claim cooldown is still active")
	ErrLifetimeLimitReached = errors.New("lifetime claim limit reached")
	ErrReentrantCall        = errors.New("reentrant claim call rejected")
	ErrUnauthorized         = errors.New("caller is not the faucet admin")
	ErrMintFailed           = errors.New("mint failed")
)

// Minter is the gate's entry point into the ledger
type Minter interface {
	Mint(caller, to ethaddr.Address, amount *uint256.Int) error
}

// Clock abstracts time so cooldown behaviour can be tested
type Clock interface {
	Now() time.Time
}

// Option configures the Gate
type Option func(*Gate)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// Claim describes one successful claim
type Claim struct {
	Account   ethaddr.Address
	Amount    *uint256.Int
	Timestamp time.Time
}

// record is the per-account claim bookkeeping.
// A nil totalClaimed means the account has never claimed.
type record struct {
	lastClaimAt  time.Time
	totalClaimed *uint256.Int
}

// Gate guards the ledger's mint operation.
//
// The gate itself is not goroutine-safe: the execution substrate is expected
// to serialize mutating calls (Service does this in-process). The only
// concurrency control the gate carries is the reentrancy latch, which rejects
// a nested claim triggered synchronously from within the mint call.
type Gate struct {
	account ethaddr.Address // the gate's own identity, registered as the ledger's minter
	admin   ethaddr.Address
	minter  Minter
	clock   Clock
	events  audit.Recorder

	paused  bool
	claims  map[ethaddr.Address]record
	entered bool
}

// NewGate constructs a claim gate.
// account is the identity the gate mints with; admin may pause and unpause.
func NewGate(account, admin ethaddr.Address, minter Minter, events audit.Recorder, opts ...Option) *Gate {
	g := &Gate{
		account: account,
		admin:   admin,
		minter:  minter,
		clock:   clock.SystemClock{},
		events:  events,
		claims:  make(map[ethaddr.Address]record),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequestClaim attempts a claim for the calling account.
//
// Gating conditions are evaluated in a fixed order - pause, cooldown,
// lifetime cap - and the first failure determines the returned error. On
// success the gate's own bookkeeping is updated before the mint; if the mint
// then fails, the bookkeeping is rolled back so the whole claim is
// all-or-nothing.
func (g *Gate) RequestClaim(caller ethaddr.Address) (Claim, error) {
	if g.entered {
		return Claim{}, ErrReentrantCall
	}
	g.entered = true
	defer func() { g.entered = false }()

	now := g.clock.Now()
	if err := g.eligibility(caller, now); err != nil {
		return Claim{}, err
	}

	previous, existed := g.claims[caller]
	g.claims[caller] = record{
		lastClaimAt:  now,
		totalClaimed: new(uint256.Int).Add(claimedOf(previous), FaucetAmount),
	}

	if err := g.minter.Mint(g.account, caller, FaucetAmount); err != nil {
		// roll the bookkeeping back; the claim must not leave partial state
		if existed {
			g.claims[caller] = previous
		} else {
			delete(g.claims, caller)
		}
		return Claim{}, fmt.Errorf("%w: %w", ErrMintFailed, err)
	}

	claim := Claim{Account: caller, Amount: FaucetAmount.Clone(), Timestamp: now}
	g.events.Record(audit.TokensClaimed{Account: caller, Amount: claim.Amount, Timestamp: now})
	return claim, nil
}

// eligibility checks the three gating conditions in claim order.
// RequestClaim and CanClaim share it so the read-only predicate cannot drift
// from the mutating path.
func (g *Gate) eligibility(account ethaddr.Address, now time.Time) error {
	if g.paused {
		return ErrFaucetPaused
	}

	rec := g.claims[account]
	if !rec.lastClaimAt.IsZero() && now.Before(rec.lastClaimAt.Add(CooldownTime)) {
		return fmt.Errorf("%w: next claim at %s",
			ErrCooldownActive, rec.lastClaimAt.Add(CooldownTime).UTC().Format(time.RFC3339))
	}

	wouldClaim := new(uint256.Int).Add(claimedOf(rec), FaucetAmount)
	if wouldClaim.Gt(MaxClaimAmount) {
		return fmt.Errorf("%w: claimed %s of %s",
			ErrLifetimeLimitReached, claimedOf(rec).Dec(), MaxClaimAmount.Dec())
	}

	return nil
}

// CanClaim reports whether a RequestClaim by the account would succeed right now
func (g *Gate) CanClaim(account ethaddr.Address) bool {
	return g.eligibility(account, g.clock.Now()) == nil
}

// RemainingAllowance returns how much the account may still claim over its lifetime
func (g *Gate) RemainingAllowance(account ethaddr.Address) *uint256.Int {
	claimed := claimedOf(g.claims[account])
	if claimed.Gt(MaxClaimAmount) || claimed.Eq(MaxClaimAmount) {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Sub(MaxClaimAmount, claimed)
}

// TotalClaimed returns the cumulative amount the account has claimed
func (g *Gate) TotalClaimed(account ethaddr.Address) *uint256.Int {
	return claimedOf(g.claims[account]).Clone()
}

// LastClaimAt returns the time of the most recent successful claim,
// the zero time if the account has never claimed
func (g *Gate) LastClaimAt(account ethaddr.Address) time.Time {
	return g.claims[account].lastClaimAt
}

// NextClaimAt returns when the account's cooldown expires,
// the zero time if the account has never claimed
func (g *Gate) NextClaimAt(account ethaddr.Address) time.Time {
	last := g.claims[account].lastClaimAt
	if last.IsZero() {
		return time.Time{}
	}
	return last.Add(CooldownTime)
}

// SetPaused sets the global pause flag. Admin only.
// The flag is overwritten unconditionally and a PauseChanged event is
// emitted even when the value does not change.
func (g *Gate) SetPaused(caller ethaddr.Address, paused bool) error {
	if caller != g.admin {
		return fmt.Errorf("%w: only %s can pause", ErrUnauthorized, g.admin)
	}

	g.paused = paused

	g.events.Record(audit.PauseChanged{Paused: paused})
	return nil
}

// Paused returns the global pause flag
func (g *Gate) Paused() bool {
	return g.paused
}

// Account returns the gate's own identity
func (g *Gate) Account() ethaddr.Address {
	return g.account
}

// Admin returns the identity allowed to pause the faucet
func (g *Gate) Admin() ethaddr.Address {
	return g.admin
}

func claimedOf(rec record) *uint256.Int {
	if rec.totalClaimed == nil {
		return uint256.NewInt(0)
	}
	return rec.totalClaimed
}
