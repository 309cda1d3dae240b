package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slot-wager-service/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// debitScript atomically debits the cached balance only when it covers the
// amount. A successful debit refreshes the TTL. Returns {balance, status}
// where status is 1 (applied), 0 (insufficient) or -1 (key missing).
var debitScript = goredis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then
	return {0, -1}
end
bal = tonumber(bal)
local amount = tonumber(ARGV[1])
if bal < amount then
	return {bal, 0}
end
bal = redis.call('DECRBY', KEYS[1], amount)
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return {bal, 1}
`)

// creditScript increments only an existing entry and refreshes its TTL. A
// plain INCRBY would recreate an expired key holding just the credited
// amount, silently dropping the rest of the balance. Returns {balance,
// status} where status is 1 (applied) or -1 (key missing).
var creditScript = goredis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then
	return {0, -1}
end
bal = redis.call('INCRBY', KEYS[1], ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return {bal, 1}
`)

// snapshotScript reads the balance and allocates the next version counter in
// one atomic step: no concurrent mutation can slip between the read and the
// INCR, so version order matches snapshot order. KEYS[1] is the balance key,
// KEYS[2] the version counter. Returns {balance, version, status} where
// status is 1 (present) or -1 (balance key missing, counter untouched).
var snapshotScript = goredis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then
	return {0, 0, -1}
end
local ver = redis.call('INCR', KEYS[2])
return {tonumber(bal), ver, 1}
`)

// BalanceStore implements ports.BalanceStore: the hot wallet tier, one integer
// balance per player in minor units.
type BalanceStore struct {
	client        *goredis.Client
	prefix        string
	versionPrefix string
}

// NewBalanceStore creates a Redis-backed balance store.
func NewBalanceStore(client *goredis.Client) *BalanceStore {
	return &BalanceStore{
		client:        client,
		prefix:        "balance:",
		versionPrefix: "balver:",
	}
}

func (s *BalanceStore) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

// Get returns the cached balance and whether the key was present.
func (s *BalanceStore) Get(ctx context.Context, id uuid.UUID) (int64, bool, error) {
	val, err := s.client.Get(ctx, s.key(id)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get balance: %w", err)
	}
	return val, true, nil
}

// SetNX seeds the cached balance only if the key is absent, then returns the
// value now cached. A concurrent backfill that lost the race reads the winning
// value instead of overwriting it.
func (s *BalanceStore) SetNX(ctx context.Context, id uuid.UUID, cents int64, ttl time.Duration) (int64, error) {
	key := s.key(id)
	ok, err := s.client.SetNX(ctx, key, cents, ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("redis setnx balance: %w", err)
	}
	if ok {
		return cents, nil
	}

	val, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// The winning entry expired already; treat ours as authoritative.
			return s.SetNX(ctx, id, cents, ttl)
		}
		return 0, fmt.Errorf("redis get balance after setnx: %w", err)
	}
	return val, nil
}

// DebitIfSufficient performs the conditional decrement as one atomic script:
// the balance is never observed mid-debit and never goes negative.
func (s *BalanceStore) DebitIfSufficient(ctx context.Context, id uuid.UUID, cents int64, ttl time.Duration) (int64, bool, error) {
	res, err := debitScript.Run(ctx, s.client, []string{s.key(id)}, cents, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("redis debit script: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("redis debit script: unexpected reply %v", res)
	}

	switch res[1] {
	case 1:
		return res[0], true, nil
	case 0:
		return res[0], false, nil
	default:
		return 0, false, ports.ErrBalanceNotCached
	}
}

// Credit increments the cached balance and refreshes the TTL. Fails with
// ErrBalanceNotCached when the entry expired; the caller backfills and
// retries rather than let the credit seed a fresh key.
func (s *BalanceStore) Credit(ctx context.Context, id uuid.UUID, cents int64, ttl time.Duration) (int64, error) {
	res, err := creditScript.Run(ctx, s.client, []string{s.key(id)}, cents, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("redis credit script: %w", err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("redis credit script: unexpected reply %v", res)
	}
	if res[1] != 1 {
		return 0, ports.ErrBalanceNotCached
	}
	return res[0], nil
}

// SnapshotVersion captures the cached balance together with a freshly
// allocated reconciliation version. The counter has no TTL: versions must
// stay monotonic across the balance key's expiry cycles.
func (s *BalanceStore) SnapshotVersion(ctx context.Context, id uuid.UUID) (int64, int64, bool, error) {
	keys := []string{s.key(id), s.versionPrefix + id.String()}
	res, err := snapshotScript.Run(ctx, s.client, keys).Int64Slice()
	if err != nil {
		return 0, 0, false, fmt.Errorf("redis snapshot script: %w", err)
	}
	if len(res) != 3 {
		return 0, 0, false, fmt.Errorf("redis snapshot script: unexpected reply %v", res)
	}
	if res[2] != 1 {
		return 0, 0, false, nil
	}
	return res[0], res[1], true, nil
}
