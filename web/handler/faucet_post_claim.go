package handler

import (
	"net/http"

	"github.com/screwyprof/faucet/pkg/httpkit"
	"github.com/screwyprof/faucet/web/api"
	"github.com/screwyprof/faucet/web/handler/bind"
)

const PostClaimRoute = http.MethodPost + " " + "/faucet/claims"

type FaucetPostClaim struct {
	svc FaucetService
}

func NewFaucetPostClaim(svc FaucetService) *FaucetPostClaim {
	return &FaucetPostClaim{
		svc: svc,
	}
}

func (h *FaucetPostClaim) AddRoutes(m *http.ServeMux) {
	m.Handle(PostClaimRoute, httpkit.HandlerFunc(h.PostClaim))
}

func (h *FaucetPostClaim) PostClaim(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	// Parse the calling address from the request body
	account, err := bind.ClaimRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Run the claim through the serialized entry point
	claim, err := h.svc.Claim(account)
	if err != nil {
		return httpkit.JsonError(claimError(err))
	}

	// A claim mints tokens, so the response is a created resource
	resp := bind.ClaimResponse(claim)
	return httpkit.JSONWithStatus(resp, http.StatusCreated)
}
