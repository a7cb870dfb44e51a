package handler

import (
	"errors"

	"github.com/screwyprof/faucet/faucet"
	"github.com/screwyprof/faucet/web/api"
)

// claimError maps claim rejections to their HTTP representations.
// Rejection reasons are part of the protocol and safe to expose;
// anything else stays a generic internal error.
func claimError(err error) *api.Error {
	switch {
	case errors.Is(err, faucet.ErrFaucetPaused):
		return api.ServiceUnavailable(err)
	case errors.Is(err, faucet.ErrCooldownActive):
		return api.TooManyRequests(err)
	case errors.Is(err, faucet.ErrLifetimeLimitReached):
		return api.Forbidden(err)
	case errors.Is(err, faucet.ErrUnauthorized):
		return api.Unauthorized(err)
	default:
		return api.InternalServerError(err)
	}
}
