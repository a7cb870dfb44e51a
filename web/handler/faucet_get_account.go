package handler

import (
	"net/http"

	"github.com/screwyprof/faucet/pkg/httpkit"
	"github.com/screwyprof/faucet/web/api"
	"github.com/screwyprof/faucet/web/handler/bind"
)

const GetAccountRoute = http.MethodGet + " " + "/faucet/accounts/{address}"

type FaucetGetAccount struct {
	svc FaucetService
}

func NewFaucetGetAccount(svc FaucetService) *FaucetGetAccount {
	return &FaucetGetAccount{
		svc: svc,
	}
}

func (h *FaucetGetAccount) AddRoutes(m *http.ServeMux) {
	m.Handle(GetAccountRoute, httpkit.HandlerFunc(h.GetAccount))
}

func (h *FaucetGetAccount) GetAccount(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	account, err := bind.AddressPathValue(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Unknown accounts are valid: they report a zero balance and an open claim
	status := h.svc.AccountStatus(account)

	resp := bind.AccountResponse(status)
	return httpkit.JSON(resp)
}
