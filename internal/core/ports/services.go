package ports

import (
	"context"

	"slot-wager-service/internal/core/domain"

	"github.com/google/uuid"
)

// CryptoService provides the primitives of the provably-fair scheme.
type CryptoService interface {
	// GenerateSeed returns a fresh base64-encoded 32-byte secret seed.
	GenerateSeed() (string, error)
	// Hash returns the SHA-256 hex digest; used for seed commitments.
	Hash(input string) string
	// HMAC returns the HMAC-SHA256 hex digest of data keyed by key.
	HMAC(key, data string) string
}

// WalletService is the hot-tier wallet: cache-aside over the durable store
// with atomic debit/credit in minor units.
type WalletService interface {
	GetBalance(ctx context.Context, playerID uuid.UUID) (int64, error)
	Debit(ctx context.Context, playerID uuid.UUID, cents int64) error
	Credit(ctx context.Context, playerID uuid.UUID, cents int64) error
}

// OutcomeService derives the deterministic spin result for a player's current
// seed state, evaluates the win and persists the consumed nonce.
type OutcomeService interface {
	GenerateSpinResult(ctx context.Context, playerID uuid.UUID, betCents int64) (*domain.SpinResult, error)
}

// WinRule is one payout rule. Rules are held in strict priority order and the
// first match wins; adding a rule never changes existing ones.
type WinRule interface {
	Matches(symbols []string) bool
	Payout(betCents int64) int64
}

// GameService orchestrates one wager end to end.
type GameService interface {
	Spin(ctx context.Context, playerID uuid.UUID, betCents int64) (*SpinOutcome, error)
}

// SpinOutcome is the orchestrator's reply: symbols, win and the hot-tier
// balance observed after settlement.
type SpinOutcome struct {
	Symbols      []string
	WinCents     int64
	BalanceCents int64
}

// PlayerService covers account creation and provably-fair seed management.
type PlayerService interface {
	Create(ctx context.Context, username, password string) (*domain.Player, error)
	GetProvablyFair(ctx context.Context, playerID uuid.UUID) (*ProvablyFairData, error)
	RotateSeeds(ctx context.Context, playerID uuid.UUID, newClientSeed string) (*SeedRotation, error)
}

// ProvablyFairData is the public commitment a player needs before wagering.
type ProvablyFairData struct {
	ServerSeedHash string
	ClientSeed     string
	Nonce          int64
}

// SeedRotation reveals the retired secret seed (the verification proof) next
// to the new commitment.
type SeedRotation struct {
	OldServerSeed     string
	NewServerSeedHash string
	NewClientSeed     string
	NewNonce          int64
}

// EventPublisher dispatches reconciliation events, fire-and-forget from the
// orchestrator's point of view.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.WalletSyncEvent) error
}

// HashService hashes passwords at the account-creation boundary.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}
