package handler

import (
	"net/http"

	"github.com/screwyprof/faucet/pkg/httpkit"
	"github.com/screwyprof/faucet/web/handler/bind"
)

const GetStatusRoute = http.MethodGet + " " + "/faucet/status"

type FaucetGetStatus struct {
	svc FaucetService
}

func NewFaucetGetStatus(svc FaucetService) *FaucetGetStatus {
	return &FaucetGetStatus{
		svc: svc,
	}
}

func (h *FaucetGetStatus) AddRoutes(m *http.ServeMux) {
	m.Handle(GetStatusRoute, httpkit.HandlerFunc(h.GetStatus))
}

func (h *FaucetGetStatus) GetStatus(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	resp := bind.StatusResponse(h.svc.Status())
	return httpkit.JSON(resp)
}
