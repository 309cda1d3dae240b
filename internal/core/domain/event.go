package domain

import "github.com/google/uuid"

// WalletSyncEvent propagates a hot-tier balance snapshot to the durable tier.
// Version is monotonic per player; the listener rejects overwrites carrying an
// older version, which makes redelivery idempotent and out-of-order delivery
// harmless.
type WalletSyncEvent struct {
	PlayerID     uuid.UUID `json:"player_id"`
	BalanceCents int64     `json:"balance_cents"`
	Version      int64     `json:"version"`
}
