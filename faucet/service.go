package faucet

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/screwyprof/faucet/pkg/ethaddr"
	"github.com/screwyprof/faucet/token"
)

// AccountStatus is a consistent snapshot of one account as the frontend sees it
type AccountStatus struct {
	Address            ethaddr.Address
	Balance            *uint256.Int
	CanClaim           bool
	RemainingAllowance *uint256.Int
	TotalClaimed       *uint256.Int
	LastClaimAt        time.Time
	NextClaimAt        time.Time
}

// Status is the global faucet state plus the build-time claim parameters
type Status struct {
	Paused         bool
	TotalSupply    *uint256.Int
	MaxSupply      *uint256.Int
	FaucetAmount   *uint256.Int
	MaxClaimAmount *uint256.Int
	Cooldown       time.Duration
}

// Service is the serialized entry point to the ledger and the gate.
//
// On chain, the consensus substrate runs state-mutating calls one at a time.
// In process, this mutex plays that role: every operation - claim, pause,
// read snapshot - runs to completion before the next begins, so the gate and
// ledger themselves stay free of locking beyond the reentrancy latch.
type Service struct {
	mu     sync.Mutex
	ledger *token.Ledger
	gate   *Gate
}

// NewService wraps a ledger and its gate behind one serialization point
func NewService(ledger *token.Ledger, gate *Gate) *Service {
	return &Service{
		ledger: ledger,
		gate:   gate,
	}
}

// Claim runs a claim attempt for the account
func (s *Service) Claim(account ethaddr.Address) (Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gate.RequestClaim(account)
}

// SetPaused flips the global pause switch on behalf of caller
func (s *Service) SetPaused(caller ethaddr.Address, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gate.SetPaused(caller, paused)
}

// AccountStatus returns a consistent snapshot of the account's claim and balance state
func (s *Service) AccountStatus(account ethaddr.Address) AccountStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return AccountStatus{
		Address:            account,
		Balance:            s.ledger.BalanceOf(account),
		CanClaim:           s.gate.CanClaim(account),
		RemainingAllowance: s.gate.RemainingAllowance(account),
		TotalClaimed:       s.gate.TotalClaimed(account),
		LastClaimAt:        s.gate.LastClaimAt(account),
		NextClaimAt:        s.gate.NextClaimAt(account),
	}
}

// Status returns the global faucet state
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Paused:         s.gate.Paused(),
		TotalSupply:    s.ledger.TotalSupply(),
		MaxSupply:      token.MaxSupply.Clone(),
		FaucetAmount:   FaucetAmount.Clone(),
		MaxClaimAmount: MaxClaimAmount.Clone(),
		Cooldown:       CooldownTime,
	}
}
