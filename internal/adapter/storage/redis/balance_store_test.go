package redis

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"slot-wager-service/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ttl = 60 * time.Minute

func newTestStore(t *testing.T) (*BalanceStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewBalanceStore(client), s
}

func TestBalanceStore_Get_Miss(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBalanceStore_SetNX_SeedsOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	val, err := store.SetNX(ctx, id, 10000, ttl)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), val)

	// A second backfill must not overwrite the live entry.
	val, err = store.SetNX(ctx, id, 555, ttl)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), val)

	got, found, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(10000), got)
}

func TestBalanceStore_SetNX_AppliesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 10000, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, found, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBalanceStore_DebitIfSufficient(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 1000, ttl)
	require.NoError(t, err)

	balance, applied, err := store.DebitIfSufficient(ctx, id, 300, ttl)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(700), balance)
}

func TestBalanceStore_DebitIfSufficient_Insufficient(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 200, ttl)
	require.NoError(t, err)

	balance, applied, err := store.DebitIfSufficient(ctx, id, 300, ttl)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, int64(200), balance, "a rejected debit leaves the balance untouched")
}

func TestBalanceStore_DebitIfSufficient_ExactBalance(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 300, ttl)
	require.NoError(t, err)

	balance, applied, err := store.DebitIfSufficient(ctx, id, 300, ttl)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(0), balance)
}

func TestBalanceStore_DebitIfSufficient_MissingKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.DebitIfSufficient(ctx, uuid.New(), 100, ttl)
	assert.ErrorIs(t, err, ports.ErrBalanceNotCached)
}

func TestBalanceStore_Credit(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 500, ttl)
	require.NoError(t, err)

	balance, err := store.Credit(ctx, id, 250, ttl)
	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)
}

func TestBalanceStore_Credit_MissingKey(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	// A credit must never seed an expired key from zero.
	_, err := store.Credit(ctx, id, 250, ttl)
	assert.ErrorIs(t, err, ports.ErrBalanceNotCached)
	assert.False(t, mr.Exists("balance:"+id.String()))
}

func TestBalanceStore_Credit_RefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 500, time.Minute)
	require.NoError(t, err)
	mr.FastForward(50 * time.Second)

	_, err = store.Credit(ctx, id, 250, time.Minute)
	require.NoError(t, err)

	// Without the refresh the entry would expire 10s from now.
	mr.FastForward(30 * time.Second)
	_, found, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBalanceStore_ConcurrentDebits_NeverNegative(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 1000, ttl)
	require.NoError(t, err)

	// 50 workers each try to debit 100 from a balance of 1000: exactly 10
	// debits can land.
	var wg sync.WaitGroup
	var mu sync.Mutex
	appliedCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, applied, err := store.DebitIfSufficient(ctx, id, 100, ttl)
			assert.NoError(t, err)
			if applied {
				mu.Lock()
				appliedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, appliedCount)

	balance, found, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(0), balance)
}

func TestBalanceStore_SnapshotVersion_Monotonic(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 1000, ttl)
	require.NoError(t, err)

	for want := int64(1); want <= 5; want++ {
		bal, v, ok, err := store.SnapshotVersion(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(1000), bal)
		assert.Equal(t, want, v, "version "+strconv.FormatInt(want, 10))
	}
}

func TestBalanceStore_SnapshotVersion_MissingKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	// No balance to snapshot: the version counter must stay untouched so the
	// next real snapshot does not skip a version.
	_, _, ok, err := store.SnapshotVersion(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.SetNX(ctx, id, 1000, ttl)
	require.NoError(t, err)
	_, v, ok, err := store.SnapshotVersion(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestBalanceStore_SnapshotVersion_OrdersConcurrentSnapshots(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.SetNX(ctx, id, 10000, ttl)
	require.NoError(t, err)

	// Interleave credits with snapshots: because read and INCR are one
	// atomic script, a snapshot with a higher version can never carry an
	// older balance than one with a lower version.
	type snap struct {
		balance int64
		version int64
	}
	var mu sync.Mutex
	var snaps []snap
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Credit(ctx, id, 100, ttl)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			bal, v, ok, err := store.SnapshotVersion(ctx, id)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				snaps = append(snaps, snap{balance: bal, version: v})
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].version < snaps[j].version })
	for i := 1; i < len(snaps); i++ {
		assert.GreaterOrEqual(t, snaps[i].balance, snaps[i-1].balance,
			"version %d carries an older balance than version %d",
			snaps[i].version, snaps[i-1].version)
	}
}
