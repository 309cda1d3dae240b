package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player is the durable system-of-record view of an account: balance plus
// the provably-fair seed state consumed by the outcome generator.
type Player struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	BalanceCents   int64     `json:"balance_cents"`
	BalanceVersion int64     `json:"-"` // Monotonic guard for reconciliation overwrites
	ServerSeed     string    `json:"-"` // Secret until rotation reveals it
	ServerSeedHash string    `json:"server_seed_hash"`
	ClientSeed     string    `json:"client_seed"`
	Nonce          int64     `json:"nonce"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultClientSeed is assigned at creation; players may replace it on rotation.
const DefaultClientSeed = "default-client-seed"
