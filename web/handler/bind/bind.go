// Package bind translates between HTTP requests/responses and the domain
// types the handlers work with. Parsing errors stay here so handlers only
// deal with validated input.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/screwyprof/faucet/faucet"
	"github.com/screwyprof/faucet/pkg/ethaddr"
	"github.com/screwyprof/faucet/web/api"
	"github.com/screwyprof/faucet/web/history"
)

// Sentinel errors for request binding
var (
	ErrInvalidBody    = errors.New("invalid request body")
	ErrInvalidAddress = errors.New("invalid address parameter")
	ErrInvalidPage    = errors.New("invalid page parameter")
	ErrInvalidPerPage = errors.New("invalid per_page parameter")

	// Specific page validation errors
	ErrPageNotNumeric  = errors.New("page must be numeric")
	ErrPageNotPositive = errors.New("page must be positive")

	// Specific per_page validation errors
	ErrPerPageNotNumeric  = errors.New("per_page must be numeric")
	ErrPerPageNotPositive = errors.New("per_page must be positive")
)

// ClaimRequest binds the JSON body of POST /faucet/claims to the calling address
func ClaimRequest(r *http.Request) (ethaddr.Address, error) {
	var req api.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ethaddr.Address{}, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	addr, err := ethaddr.Parse(req.Address)
	if err != nil {
		return ethaddr.Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return addr, nil
}

// PauseRequest binds the JSON body of PUT /faucet/pause to the caller and the flag
func PauseRequest(r *http.Request) (ethaddr.Address, bool, error) {
	var req api.PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ethaddr.Address{}, false, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	addr, err := ethaddr.Parse(req.Address)
	if err != nil {
		return ethaddr.Address{}, false, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return addr, req.Paused, nil
}

// AddressPathValue binds the {address} path segment to a parsed address
func AddressPathValue(r *http.Request) (ethaddr.Address, error) {
	addr, err := ethaddr.Parse(r.PathValue("address"))
	if err != nil {
		return ethaddr.Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr, nil
}

// GetEventsRequest binds HTTP request to EventsRequest with defaults.
// Account and kind stay raw strings here; their domain validation
// happens when the criteria are constructed.
func GetEventsRequest(r *http.Request) (api.EventsRequest, error) {
	req := api.EventsRequest{
		Page:    history.DefaultPage,
		PerPage: history.DefaultPerPage,
	}

	query := r.URL.Query()

	req.Account = query.Get("account")
	req.Kind = query.Get("kind")

	// Parse page parameter
	if pageParam := query.Get("page"); pageParam != "" {
		page, err := parsePageNumber(pageParam)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPage, err)
		}
		req.Page = page
	}

	// Parse per_page parameter
	if perPageParam := query.Get("per_page"); perPageParam != "" {
		perPage, err := parsePerPageLimit(perPageParam)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
		}
		req.PerPage = perPage
	}

	return req, nil
}

// parsePageNumber validates that the page parameter is a positive integer
func parsePageNumber(pageParam string) (uint64, error) {
	page, err := strconv.ParseUint(pageParam, 10, 64)
	if err != nil {
		return 0, ErrPageNotNumeric
	}

	if page == 0 {
		return 0, ErrPageNotPositive
	}

	return page, nil
}

// parsePerPageLimit validates that the per_page parameter is a positive integer.
// The upper bound lives in the history package.
func parsePerPageLimit(perPageParam string) (uint64, error) {
	perPage, err := strconv.ParseUint(perPageParam, 10, 64)
	if err != nil {
		return 0, ErrPerPageNotNumeric
	}

	if perPage == 0 {
		return 0, ErrPerPageNotPositive
	}

	return perPage, nil
}

// ClaimResponse binds a successful claim to the API response format
func ClaimResponse(claim faucet.Claim) api.ClaimResponse {
	return api.ClaimResponse{
		Account:     claim.Account.String(),
		Amount:      claim.Amount.Dec(),
		ClaimedAt:   claim.Timestamp.Format(time.RFC3339),
		NextClaimAt: claim.Timestamp.Add(faucet.CooldownTime).Format(time.RFC3339),
	}
}

// AccountResponse binds an account snapshot to the API response format
func AccountResponse(status faucet.AccountStatus) api.AccountResponse {
	resp := api.AccountResponse{
		Address:            status.Address.String(),
		Balance:            status.Balance.Dec(),
		CanClaim:           status.CanClaim,
		RemainingAllowance: status.RemainingAllowance.Dec(),
		TotalClaimed:       status.TotalClaimed.Dec(),
	}

	// Accounts that never claimed have no claim timestamps
	if !status.LastClaimAt.IsZero() {
		resp.LastClaimAt = status.LastClaimAt.Format(time.RFC3339)
		resp.NextClaimAt = status.NextClaimAt.Format(time.RFC3339)
	}

	return resp
}

// StatusResponse binds the global faucet state to the API response format
func StatusResponse(status faucet.Status) api.StatusResponse {
	return api.StatusResponse{
		Paused:          status.Paused,
		TotalSupply:     status.TotalSupply.Dec(),
		MaxSupply:       status.MaxSupply.Dec(),
		FaucetAmount:    status.FaucetAmount.Dec(),
		MaxClaimAmount:  status.MaxClaimAmount.Dec(),
		CooldownSeconds: int64(status.Cooldown / time.Second),
	}
}

// GetEventsResponse binds domain events to the API response format
func GetEventsResponse(events []history.Event) api.EventsResponse {
	apiEvents := make([]api.Event, len(events))
	for i, ev := range events {
		apiEvents[i] = api.Event{
			Sequence:     strconv.FormatUint(ev.Sequence, 10),
			ID:           ev.ID,
			Kind:         ev.Kind,
			Account:      ev.Account,
			Counterparty: ev.Counterparty,
			Amount:       ev.Amount,
			Paused:       ev.Paused,
			OccurredAt:   ev.OccurredAt.Format(time.RFC3339),
		}
	}

	return api.EventsResponse{
		Data: apiEvents,
	}
}
