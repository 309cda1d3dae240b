package integration

import (
	"context"
	"fmt"
	"sync"

	"slot-wager-service/internal/core/domain"

	"github.com/google/uuid"
)

// --- In-Memory Player Repo ---

type inMemoryPlayerRepo struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*domain.Player
}

func newInMemoryPlayerRepo() *inMemoryPlayerRepo {
	return &inMemoryPlayerRepo{players: make(map[uuid.UUID]*domain.Player)}
}

func (r *inMemoryPlayerRepo) Create(ctx context.Context, p *domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.players {
		if existing.Username == p.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *p
	r.players[p.ID] = &cp
	return nil
}

func (r *inMemoryPlayerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPlayerRepo) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPlayerRepo) UpdateSeedState(ctx context.Context, id uuid.UUID, serverSeed, serverSeedHash, clientSeed string, nonce int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return fmt.Errorf("player not found: %s", id)
	}
	p.ServerSeed = serverSeed
	p.ServerSeedHash = serverSeedHash
	p.ClientSeed = clientSeed
	p.Nonce = nonce
	return nil
}

func (r *inMemoryPlayerRepo) SyncBalance(ctx context.Context, id uuid.UUID, balanceCents int64, version int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return false, nil
	}
	if version <= p.BalanceVersion {
		return false, nil
	}
	p.BalanceCents = balanceCents
	p.BalanceVersion = version
	return true, nil
}

// --- In-Process Event Bus ---

// syncBus delivers published events straight to the handler, standing in for
// the Kafka round trip. It keeps every published event so tests can inspect
// the reconciliation stream.
type syncBus struct {
	handler interface {
		Handle(ctx context.Context, event domain.WalletSyncEvent) error
	}

	mu        sync.Mutex
	published []domain.WalletSyncEvent
}

func (b *syncBus) Publish(ctx context.Context, event domain.WalletSyncEvent) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	b.mu.Unlock()
	return b.handler.Handle(ctx, event)
}

func (b *syncBus) events() []domain.WalletSyncEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.WalletSyncEvent, len(b.published))
	copy(out, b.published)
	return out
}

func formatCents(cents int64) string {
	return domain.CentsToDecimal(cents).StringFixed(2)
}
