// Package token implements the faucet token ledger: conserved-sum balances,
// delegated-spend allowances and a hard ceiling on issued supply.
//
// The ledger is not safe for concurrent use on its own. Calls are serialized
// by faucet.Service, which models the one-at-a-time execution the token
// contract gets on chain.
package token

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/screwyprof/faucet/audit"
	"github.com/screwyprof/faucet/pkg/ethaddr"
)

// Token metadata
const (
	Name     = "Faucet Token"
	Symbol   = "FCT"
	Decimals = 18
)

// Sentinel errors for ledger operations
var (
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrZeroAddress           = errors.New("the zero address is not a valid account")
	ErrSupplyExceeded        = errors.New("mint would exceed the maximum supply")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// baseUnitsPerToken is 10^18: one whole token in base units
var baseUnitsPerToken = uint256.NewInt(1_000_000_000_000_000_000)

// MaxSupply is the fixed upper bound on total issued supply: 100000 tokens
var MaxSupply = Whole(100_000)

// Whole converts a whole-token count into base units (18 decimals)
func Whole(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), baseUnitsPerToken)
}

// Ledger maintains the account balance and allowance tables.
// The sum of all balances never exceeds MaxSupply.
type Ledger struct {
	owner  ethaddr.Address
	minter ethaddr.Address

	totalSupply *uint256.Int
	balances    map[ethaddr.Address]*uint256.Int
	allowances  map[ethaddr.Address]map[ethaddr.Address]*uint256.Int

	events audit.Recorder
}

// NewLedger constructs an empty ledger owned by owner.
// The owner starts out as the minter until SetMinter hands the role over.
func NewLedger(owner ethaddr.Address, events audit.Recorder) *Ledger {
	return &Ledger{
		owner:       owner,
		minter:      owner,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[ethaddr.Address]*uint256.Int),
		allowances:  make(map[ethaddr.Address]map[ethaddr.Address]*uint256.Int),
		events:      events,
	}
}

// Mint credits amount to the given account and grows total supply.
// Only the designated minter may call it.
func (l *Ledger) Mint(caller, to ethaddr.Address, amount *uint256.Int) error {
	if caller != l.minter {
		return fmt.Errorf("%w: only the minter can mint", ErrUnauthorized)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: cannot mint to the zero address", ErrZeroAddress)
	}

	newSupply, overflow := new(uint256.Int).AddOverflow(l.totalSupply, amount)
	if overflow || newSupply.Gt(MaxSupply) {
		return fmt.Errorf("%w: supply %s + %s over cap %s",
			ErrSupplyExceeded, l.totalSupply.Dec(), amount.Dec(), MaxSupply.Dec())
	}

	l.totalSupply = newSupply
	l.credit(to, amount)

	l.events.Record(audit.Transfer{From: ethaddr.Zero, To: to, Amount: amount.Clone()})
	return nil
}

// Transfer moves amount from the caller's balance to another account
func (l *Ledger) Transfer(caller, to ethaddr.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("%w: cannot transfer to the zero address", ErrZeroAddress)
	}
	if l.balanceOf(caller).Lt(amount) {
		return fmt.Errorf("%w: balance %s, need %s",
			ErrInsufficientBalance, l.balanceOf(caller).Dec(), amount.Dec())
	}

	l.debit(caller, amount)
	l.credit(to, amount)

	l.events.Record(audit.Transfer{From: caller, To: to, Amount: amount.Clone()})
	return nil
}

// Approve sets (overwrites) the allowance a spender may take from the caller
func (l *Ledger) Approve(caller, spender ethaddr.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return fmt.Errorf("%w: cannot approve the zero address", ErrZeroAddress)
	}

	forOwner := l.allowances[caller]
	if forOwner == nil {
		forOwner = make(map[ethaddr.Address]*uint256.Int)
		l.allowances[caller] = forOwner
	}
	forOwner[spender] = amount.Clone()

	l.events.Record(audit.Approval{Owner: caller, Spender: spender, Amount: amount.Clone()})
	return nil
}

// TransferFrom moves amount from one account to another on the strength
// of an allowance previously granted to the caller
func (l *Ledger) TransferFrom(caller, from, to ethaddr.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("%w: cannot transfer to the zero address", ErrZeroAddress)
	}

	allowance := l.allowanceOf(from, caller)
	if allowance.Lt(amount) {
		return fmt.Errorf("%w: allowance %s, need %s",
			ErrInsufficientAllowance, allowance.Dec(), amount.Dec())
	}
	if l.balanceOf(from).Lt(amount) {
		return fmt.Errorf("%w: balance %s, need %s",
			ErrInsufficientBalance, l.balanceOf(from).Dec(), amount.Dec())
	}

	l.allowances[from][caller] = new(uint256.Int).Sub(allowance, amount)
	l.debit(from, amount)
	l.credit(to, amount)

	l.events.Record(audit.Transfer{From: from, To: to, Amount: amount.Clone()})
	return nil
}

// SetMinter hands the mint capability to a new identity. Owner only.
func (l *Ledger) SetMinter(caller, newMinter ethaddr.Address) error {
	if caller != l.owner {
		return fmt.Errorf("%w: only the owner can replace the minter", ErrUnauthorized)
	}
	if newMinter.IsZero() {
		return fmt.Errorf("%w: minter cannot be the zero address", ErrZeroAddress)
	}

	l.minter = newMinter

	l.events.Record(audit.MinterChanged{NewMinter: newMinter})
	return nil
}

// BalanceOf returns the balance of an account, zero for unknown accounts
func (l *Ledger) BalanceOf(account ethaddr.Address) *uint256.Int {
	return l.balanceOf(account).Clone()
}

// Allowance returns what spender may still take from owner
func (l *Ledger) Allowance(owner, spender ethaddr.Address) *uint256.Int {
	return l.allowanceOf(owner, spender).Clone()
}

// TotalSupply returns the amount of tokens issued so far
func (l *Ledger) TotalSupply() *uint256.Int {
	return l.totalSupply.Clone()
}

// Minter returns the identity currently allowed to mint
func (l *Ledger) Minter() ethaddr.Address {
	return l.minter
}

// Owner returns the ledger owner
func (l *Ledger) Owner() ethaddr.Address {
	return l.owner
}

func (l *Ledger) balanceOf(account ethaddr.Address) *uint256.Int {
	if balance, ok := l.balances[account]; ok {
		return balance
	}
	return uint256.NewInt(0)
}

func (l *Ledger) allowanceOf(owner, spender ethaddr.Address) *uint256.Int {
	if forOwner, ok := l.allowances[owner]; ok {
		if allowance, ok := forOwner[spender]; ok {
			return allowance
		}
	}
	return uint256.NewInt(0)
}

func (l *Ledger) credit(account ethaddr.Address, amount *uint256.Int) {
	l.balances[account] = new(uint256.Int).Add(l.balanceOf(account), amount)
}

func (l *Ledger) debit(account ethaddr.Address, amount *uint256.Int) {
	l.balances[account] = new(uint256.Int).Sub(l.balanceOf(account), amount)
}
