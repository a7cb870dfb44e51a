package api

// ClaimRequest is the JSON body for POST /faucet/claims.
// The address identifies the calling account, the way a signed
// transaction would on chain.
type ClaimRequest struct {
	Address string `json:"address"`
}

// ClaimResponse represents a successful claim
type ClaimResponse struct {
	Account     string `json:"account"`
	Amount      string `json:"amount"`
	ClaimedAt   string `json:"claimed_at"`
	NextClaimAt string `json:"next_claim_at"`
}

// PauseRequest is the JSON body for PUT /faucet/pause
type PauseRequest struct {
	Address string `json:"address"`
	Paused  bool   `json:"paused"`
}

// AccountResponse represents one account's claim and balance state
type AccountResponse struct {
	Address            string `json:"address"`
	Balance            string `json:"balance"`
	CanClaim           bool   `json:"can_claim"`
	RemainingAllowance string `json:"remaining_allowance"`
	TotalClaimed       string `json:"total_claimed"`
	LastClaimAt        string `json:"last_claim_at,omitempty"`
	NextClaimAt        string `json:"next_claim_at,omitempty"`
}

// StatusResponse represents the global faucet state and claim parameters
type StatusResponse struct {
	Paused          bool   `json:"paused"`
	TotalSupply     string `json:"total_supply"`
	MaxSupply       string `json:"max_supply"`
	FaucetAmount    string `json:"faucet_amount"`
	MaxClaimAmount  string `json:"max_claim_amount"`
	CooldownSeconds int64  `json:"cooldown_seconds"`
}

// EventsRequest represents the query parameters for GET /faucet/events
type EventsRequest struct {
	Account string `query:"account"`  // Optional account filter (hex address)
	Kind    string `query:"kind"`     // Optional event kind filter
	Page    uint64 `query:"page"`     // Page number for pagination (default: 1)
	PerPage uint64 `query:"per_page"` // Number of items per page (default: 50, max: 100)
}

// Event represents a single audit event in the API response
type Event struct {
	Sequence     string `json:"sequence"`
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Account      string `json:"account,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Paused       *bool  `json:"paused,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}

// EventsResponse represents the API response format for GET /faucet/events
type EventsResponse struct {
	Data []Event `json:"data"`
}
