package handler

import (
	"net/http"

	"github.com/screwyprof/faucet/pkg/httpkit"
	"github.com/screwyprof/faucet/web/api"
	"github.com/screwyprof/faucet/web/handler/bind"
)

const PutPauseRoute = http.MethodPut + " " + "/faucet/pause"

type FaucetPutPause struct {
	svc FaucetService
}

func NewFaucetPutPause(svc FaucetService) *FaucetPutPause {
	return &FaucetPutPause{
		svc: svc,
	}
}

func (h *FaucetPutPause) AddRoutes(m *http.ServeMux) {
	m.Handle(PutPauseRoute, httpkit.HandlerFunc(h.PutPause))
}

func (h *FaucetPutPause) PutPause(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	caller, paused, err := bind.PauseRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	if err := h.svc.SetPaused(caller, paused); err != nil {
		return httpkit.JsonError(claimError(err))
	}

	resp := bind.StatusResponse(h.svc.Status())
	return httpkit.JSON(resp)
}
