package ports

import (
	"context"
	"errors"
	"time"

	"slot-wager-service/internal/core/domain"

	"github.com/google/uuid"
)

// ErrBalanceNotCached reports a wallet mutation against a key that expired
// between the cache backfill and the mutation itself. Callers re-run the
// backfill and retry.
var ErrBalanceNotCached = errors.New("balance not cached")

// PlayerRepository defines persistence operations against the durable tier.
// GetByID returns nil, nil when the player does not exist.
type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	GetByUsername(ctx context.Context, username string) (*domain.Player, error)

	// UpdateSeedState persists the seed pair and nonce. The outcome generator
	// calls this synchronously with use so a nonce value is never consumed twice.
	UpdateSeedState(ctx context.Context, id uuid.UUID, serverSeed, serverSeedHash, clientSeed string, nonce int64) error

	// SyncBalance overwrites the durable balance with a hot-tier snapshot,
	// guarded by version: snapshots older than the last applied one are
	// rejected. Returns whether the write was applied.
	SyncBalance(ctx context.Context, id uuid.UUID, balanceCents, version int64) (bool, error)
}

// BalanceStore is the hot-tier primitive contract, atomic per key.
type BalanceStore interface {
	// Get returns the cached balance and whether the key was present.
	Get(ctx context.Context, id uuid.UUID) (int64, bool, error)
	// SetNX seeds the entry with a TTL only if absent, returning the value it
	// holds afterwards. Concurrent backfills therefore converge on one value.
	SetNX(ctx context.Context, id uuid.UUID, cents int64, ttl time.Duration) (int64, error)
	// DebitIfSufficient atomically decrements only when the result stays
	// non-negative. Returns the post-debit balance and whether it applied,
	// or ErrBalanceNotCached when the entry is absent.
	DebitIfSufficient(ctx context.Context, id uuid.UUID, cents int64, ttl time.Duration) (int64, bool, error)
	// Credit atomically increments an existing entry and renews its TTL.
	// Returns ErrBalanceNotCached when the entry is absent; a credit must
	// never recreate an expired key from zero.
	Credit(ctx context.Context, id uuid.UUID, cents int64, ttl time.Duration) (int64, error)
	// SnapshotVersion reads the cached balance and allocates the next
	// monotonic reconciliation version in one atomic step, so a higher
	// version always carries a balance at least as fresh. Returns ok=false
	// when the entry is absent.
	SnapshotVersion(ctx context.Context, id uuid.UUID) (balanceCents, version int64, ok bool, err error)
}
