package handler

import (
	"github.com/screwyprof/faucet/faucet"
	"github.com/screwyprof/faucet/pkg/ethaddr"
)

// FaucetService is the serialized faucet entry point the handlers call
type FaucetService interface {
	Claim(account ethaddr.Address) (faucet.Claim, error)
	SetPaused(caller ethaddr.Address, paused bool) error
	AccountStatus(account ethaddr.Address) faucet.AccountStatus
	Status() faucet.Status
}
