package service

import (
	"context"
	"fmt"

	"slot-wager-service/internal/core/domain"
	"slot-wager-service/internal/core/ports"
	"slot-wager-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GameServiceImpl runs one wager end to end: settle the bet against the
// hot-tier wallet, derive the outcome, credit any win and emit a
// reconciliation event for the durable tier.
type GameServiceImpl struct {
	wallet    ports.WalletService
	outcome   ports.OutcomeService
	store     ports.BalanceStore
	publisher ports.EventPublisher
	log       zerolog.Logger
}

func NewGameService(wallet ports.WalletService, outcome ports.OutcomeService, store ports.BalanceStore, publisher ports.EventPublisher, log zerolog.Logger) *GameServiceImpl {
	return &GameServiceImpl{
		wallet:    wallet,
		outcome:   outcome,
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Spin debits the bet, generates the spin result, credits the win and returns
// the settled balance. The bet is refunded if outcome generation fails after
// the debit, so a failed spin never costs the player money.
func (s *GameServiceImpl) Spin(ctx context.Context, playerID uuid.UUID, betCents int64) (*ports.SpinOutcome, error) {
	if err := s.wallet.Debit(ctx, playerID, betCents); err != nil {
		return nil, err
	}

	result, err := s.outcome.GenerateSpinResult(ctx, playerID, betCents)
	if err != nil {
		if refundErr := s.wallet.Credit(ctx, playerID, betCents); refundErr != nil {
			s.log.Error().Err(refundErr).
				Str("player_id", playerID.String()).
				Int64("bet_cents", betCents).
				Msg("failed to refund bet after spin failure")
		}
		return nil, err
	}

	if result.WinCents > 0 {
		if err := s.wallet.Credit(ctx, playerID, result.WinCents); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit win: %w", err))
		}
	}

	balance, err := s.wallet.GetBalance(ctx, playerID)
	if err != nil {
		return nil, err
	}

	s.publishSync(ctx, playerID)

	return &ports.SpinOutcome{
		Symbols:      result.Symbols,
		WinCents:     result.WinCents,
		BalanceCents: balance,
	}, nil
}

// publishSync emits a post-settlement balance snapshot for durable
// reconciliation. The snapshot and its version are captured in one atomic
// store operation: reading the balance and allocating the version separately
// would let a concurrent spin's fresher snapshot take a lower version, and
// the listener would converge on the stale one. Failures are logged and
// swallowed: the hot tier already holds the authoritative balance and a
// later spin re-publishes a fresher snapshot.
func (s *GameServiceImpl) publishSync(ctx context.Context, playerID uuid.UUID) {
	balance, version, ok, err := s.store.SnapshotVersion(ctx, playerID)
	if err != nil {
		s.log.Warn().Err(err).
			Str("player_id", playerID.String()).
			Msg("failed to snapshot balance, skipping reconciliation event")
		return
	}
	if !ok {
		s.log.Warn().
			Str("player_id", playerID.String()).
			Msg("balance entry expired before snapshot, skipping reconciliation event")
		return
	}

	event := domain.WalletSyncEvent{
		PlayerID:     playerID,
		BalanceCents: balance,
		Version:      version,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Str("player_id", playerID.String()).
			Int64("version", version).
			Msg("failed to publish wallet sync event")
	}
}
