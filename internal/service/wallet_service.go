package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slot-wager-service/internal/core/ports"
	"slot-wager-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService: a write-behind hot wallet.
// The cache is authoritative for "now"; the durable store only backfills a
// cold entry and is brought up to date asynchronously by reconciliation.
type WalletServiceImpl struct {
	store      ports.BalanceStore
	playerRepo ports.PlayerRepository
	ttl        time.Duration
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl. ttl bounds how long a hot
// entry may outlive its last touch before cache-aside reload.
func NewWalletService(store ports.BalanceStore, playerRepo ports.PlayerRepository, ttl time.Duration, log zerolog.Logger) *WalletServiceImpl {
	return &WalletServiceImpl{
		store:      store,
		playerRepo: playerRepo,
		ttl:        ttl,
		log:        log,
	}
}

// GetBalance returns the hot-tier balance, backfilling from the durable store
// on a miss. Fails with PLR_001 when the player does not exist durably.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, playerID uuid.UUID) (int64, error) {
	return s.ensureCached(ctx, playerID)
}

// Debit removes cents from the hot balance using a single conditional
// decrement, so no transiently negative value is ever observable. Fails with
// WAL_001 when funds are insufficient; the balance is left untouched.
func (s *WalletServiceImpl) Debit(ctx context.Context, playerID uuid.UUID, cents int64) error {
	if cents <= 0 {
		return apperror.ErrInvalidAmount()
	}
	if _, err := s.ensureCached(ctx, playerID); err != nil {
		return err
	}

	balance, applied, err := s.store.DebitIfSufficient(ctx, playerID, cents, s.ttl)
	if errors.Is(err, ports.ErrBalanceNotCached) {
		// The entry expired between the backfill and the debit. Reseed and
		// retry once; a second miss means the cache tier is misbehaving.
		if _, err := s.ensureCached(ctx, playerID); err != nil {
			return err
		}
		balance, applied, err = s.store.DebitIfSufficient(ctx, playerID, cents, s.ttl)
	}
	if err != nil {
		return apperror.InternalError(fmt.Errorf("debit balance: %w", err))
	}
	if !applied {
		return apperror.ErrInsufficientFunds()
	}

	s.log.Debug().
		Str("player_id", playerID.String()).
		Int64("debit_cents", cents).
		Int64("balance_cents", balance).
		Msg("wallet debited")
	return nil
}

// Credit adds cents to the hot balance and renews the entry's TTL.
func (s *WalletServiceImpl) Credit(ctx context.Context, playerID uuid.UUID, cents int64) error {
	if cents <= 0 {
		return apperror.ErrInvalidAmount()
	}
	if _, err := s.ensureCached(ctx, playerID); err != nil {
		return err
	}

	balance, err := s.store.Credit(ctx, playerID, cents, s.ttl)
	if errors.Is(err, ports.ErrBalanceNotCached) {
		if _, err := s.ensureCached(ctx, playerID); err != nil {
			return err
		}
		balance, err = s.store.Credit(ctx, playerID, cents, s.ttl)
	}
	if err != nil {
		return apperror.InternalError(fmt.Errorf("credit balance: %w", err))
	}

	s.log.Debug().
		Str("player_id", playerID.String()).
		Int64("credit_cents", cents).
		Int64("balance_cents", balance).
		Msg("wallet credited")
	return nil
}

// ensureCached implements cache-aside: return the hot value when present,
// otherwise load the durable balance and seed the entry with the TTL. SetNX
// keeps concurrent backfills from clobbering hot-tier operations that land in
// between.
func (s *WalletServiceImpl) ensureCached(ctx context.Context, playerID uuid.UUID) (int64, error) {
	cached, ok, err := s.store.Get(ctx, playerID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("read cached balance: %w", err))
	}
	if ok {
		return cached, nil
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("load player: %w", err))
	}
	if player == nil {
		return 0, apperror.ErrPlayerNotFound()
	}

	seeded, err := s.store.SetNX(ctx, playerID, player.BalanceCents, s.ttl)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("seed cached balance: %w", err))
	}
	return seeded, nil
}
