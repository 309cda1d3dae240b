package service

import (
	"context"
	"fmt"

	"slot-wager-service/internal/core/domain"
	"slot-wager-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// WalletSyncListener applies reconciliation events to the durable tier. The
// stream is at-least-once and unordered, so every apply goes through the
// versioned SyncBalance guard: stale or duplicate events are skipped, the
// newest snapshot always wins.
type WalletSyncListener struct {
	playerRepo ports.PlayerRepository
	log        zerolog.Logger
}

func NewWalletSyncListener(playerRepo ports.PlayerRepository, log zerolog.Logger) *WalletSyncListener {
	return &WalletSyncListener{playerRepo: playerRepo, log: log}
}

// Handle persists one balance snapshot. Events for unknown players are
// dropped; a delivery error is returned so the consumer can retry.
func (l *WalletSyncListener) Handle(ctx context.Context, event domain.WalletSyncEvent) error {
	applied, err := l.playerRepo.SyncBalance(ctx, event.PlayerID, event.BalanceCents, event.Version)
	if err != nil {
		return fmt.Errorf("sync balance for player %s: %w", event.PlayerID, err)
	}

	if !applied {
		l.log.Debug().
			Str("player_id", event.PlayerID.String()).
			Int64("version", event.Version).
			Msg("skipped stale or unknown wallet sync event")
		return nil
	}

	l.log.Debug().
		Str("player_id", event.PlayerID.String()).
		Int64("balance_cents", event.BalanceCents).
		Int64("version", event.Version).
		Msg("wallet balance reconciled")
	return nil
}
