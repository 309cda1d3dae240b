package dto

import "github.com/shopspring/decimal"

// CreatePlayerRequest is the request body for player registration.
type CreatePlayerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

// SpinRequest is the request body for a wager. Bet is a decimal amount in
// major units; it accepts both JSON numbers and strings.
type SpinRequest struct {
	Bet decimal.Decimal `json:"bet" binding:"required"`
}

// UpdateSeedsRequest is the request body for seed rotation. An empty client
// seed selects the service default.
type UpdateSeedsRequest struct {
	ClientSeed string `json:"client_seed" binding:"omitempty,min=1,max=100"`
}

// PlayerResponse is the response body for player creation.
type PlayerResponse struct {
	PlayerID       string `json:"player_id"`
	Username       string `json:"username"`
	Balance        string `json:"balance"`
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
	CreatedAt      string `json:"created_at"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// SpinResponse is the response for a settled wager.
type SpinResponse struct {
	Symbols []string `json:"symbols"`
	Win     string   `json:"win"`
	Balance string   `json:"balance"`
}

// ProvablyFairResponse is the active fairness commitment.
type ProvablyFairResponse struct {
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
	Nonce          int64  `json:"nonce"`
}

// RotateSeedsResponse reveals the retired server seed next to the new
// commitment.
type RotateSeedsResponse struct {
	OldServerSeed  string `json:"old_server_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
	Nonce          int64  `json:"nonce"`
}
