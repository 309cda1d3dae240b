package postgres

import (
	"context"
	"errors"
	"fmt"

	"slot-wager-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PlayerRepo implements ports.PlayerRepository.
type PlayerRepo struct {
	pool Pool
}

// NewPlayerRepo creates a new PlayerRepo.
func NewPlayerRepo(pool Pool) *PlayerRepo {
	return &PlayerRepo{pool: pool}
}

const playerColumns = `id, username, password_hash, balance_cents, balance_version,
		server_seed, server_seed_hash, client_seed, nonce, created_at, updated_at`

// Create inserts a new player into the database.
func (r *PlayerRepo) Create(ctx context.Context, p *domain.Player) error {
	query := `INSERT INTO players (` + playerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Username, p.PasswordHash, p.BalanceCents, p.BalanceVersion,
		p.ServerSeed, p.ServerSeedHash, p.ClientSeed, p.Nonce, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// GetByID fetches a player by UUID. Returns (nil, nil) when the player does
// not exist.
func (r *PlayerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := r.scanPlayer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get player by id: %w", err)
	}
	return p, nil
}

// GetByUsername fetches a player by username. Returns (nil, nil) when absent.
func (r *PlayerRepo) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE username = $1`

	p, err := r.scanPlayer(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("get player by username: %w", err)
	}
	return p, nil
}

// UpdateSeedState overwrites the provably-fair seed state and nonce.
func (r *PlayerRepo) UpdateSeedState(ctx context.Context, id uuid.UUID, serverSeed, serverSeedHash, clientSeed string, nonce int64) error {
	query := `UPDATE players
		SET server_seed = $2, server_seed_hash = $3, client_seed = $4, nonce = $5, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, serverSeed, serverSeedHash, clientSeed, nonce)
	if err != nil {
		return fmt.Errorf("update seed state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player not found: %s", id)
	}
	return nil
}

// SyncBalance applies a reconciled balance snapshot guarded by its version.
// It reports false without error when the row was not updated: either the
// player is unknown or a snapshot with an equal or newer version already
// landed.
func (r *PlayerRepo) SyncBalance(ctx context.Context, id uuid.UUID, balanceCents int64, version int64) (bool, error) {
	query := `UPDATE players
		SET balance_cents = $2, balance_version = $3, updated_at = NOW()
		WHERE id = $1 AND balance_version < $3`

	tag, err := r.pool.Exec(ctx, query, id, balanceCents, version)
	if err != nil {
		return false, fmt.Errorf("sync balance: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PlayerRepo) scanPlayer(row pgx.Row) (*domain.Player, error) {
	p := &domain.Player{}
	err := row.Scan(
		&p.ID, &p.Username, &p.PasswordHash, &p.BalanceCents, &p.BalanceVersion,
		&p.ServerSeed, &p.ServerSeedHash, &p.ClientSeed, &p.Nonce, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
