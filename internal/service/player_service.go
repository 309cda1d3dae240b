package service

import (
	"context"
	"fmt"
	"time"

	"slot-wager-service/internal/core/domain"
	"slot-wager-service/internal/core/ports"
	"slot-wager-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PlayerServiceImpl covers account creation and provably-fair seed management.
type PlayerServiceImpl struct {
	playerRepo          ports.PlayerRepository
	hasher              ports.HashService
	crypto              ports.CryptoService
	locks               *SeedLocks
	initialBalanceCents int64
	log                 zerolog.Logger
}

func NewPlayerService(
	playerRepo ports.PlayerRepository,
	hasher ports.HashService,
	crypto ports.CryptoService,
	locks *SeedLocks,
	initialBalanceCents int64,
	log zerolog.Logger,
) *PlayerServiceImpl {
	return &PlayerServiceImpl{
		playerRepo:          playerRepo,
		hasher:              hasher,
		crypto:              crypto,
		locks:               locks,
		initialBalanceCents: initialBalanceCents,
		log:                 log,
	}
}

// Create registers a new player with the configured starting balance and a
// fresh seed pair committed to before the first wager.
func (s *PlayerServiceImpl) Create(ctx context.Context, username, password string) (*domain.Player, error) {
	existing, err := s.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.ErrCryptoFailure(fmt.Errorf("hash password: %w", err))
	}

	serverSeed, err := s.crypto.GenerateSeed()
	if err != nil {
		return nil, apperror.ErrCryptoFailure(fmt.Errorf("generate server seed: %w", err))
	}

	now := time.Now().UTC()
	player := &domain.Player{
		ID:             uuid.New(),
		Username:       username,
		PasswordHash:   passwordHash,
		BalanceCents:   s.initialBalanceCents,
		BalanceVersion: 0,
		ServerSeed:     serverSeed,
		ServerSeedHash: s.crypto.Hash(serverSeed),
		ClientSeed:     domain.DefaultClientSeed,
		Nonce:          0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create player: %w", err))
	}

	s.log.Info().
		Str("player_id", player.ID.String()).
		Str("username", username).
		Msg("player created")

	return player, nil
}

// GetProvablyFair returns the active commitment: the hash of the secret server
// seed, the client seed and the next nonce. The server seed itself stays
// hidden until rotation.
func (s *PlayerServiceImpl) GetProvablyFair(ctx context.Context, playerID uuid.UUID) (*ports.ProvablyFairData, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load player: %w", err))
	}
	if player == nil {
		return nil, apperror.ErrPlayerNotFound()
	}

	return &ports.ProvablyFairData{
		ServerSeedHash: player.ServerSeedHash,
		ClientSeed:     player.ClientSeed,
		Nonce:          player.Nonce,
	}, nil
}

// RotateSeeds reveals the retired server seed so past spins can be verified,
// installs a fresh pair and resets the nonce. Rotation takes the same
// per-player lock as spins, so a rotation never lands between a spin's
// derivation and its nonce persist.
func (s *PlayerServiceImpl) RotateSeeds(ctx context.Context, playerID uuid.UUID, newClientSeed string) (*ports.SeedRotation, error) {
	unlock := s.locks.Lock(playerID)
	defer unlock()

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load player: %w", err))
	}
	if player == nil {
		return nil, apperror.ErrPlayerNotFound()
	}

	newServerSeed, err := s.crypto.GenerateSeed()
	if err != nil {
		return nil, apperror.ErrCryptoFailure(fmt.Errorf("generate server seed: %w", err))
	}
	newServerSeedHash := s.crypto.Hash(newServerSeed)

	clientSeed := newClientSeed
	if clientSeed == "" {
		clientSeed = domain.DefaultClientSeed
	}

	if err := s.playerRepo.UpdateSeedState(ctx, playerID, newServerSeed, newServerSeedHash, clientSeed, 0); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("persist seed rotation: %w", err))
	}

	s.log.Info().
		Str("player_id", playerID.String()).
		Msg("seed pair rotated")

	return &ports.SeedRotation{
		OldServerSeed:     player.ServerSeed,
		NewServerSeedHash: newServerSeedHash,
		NewClientSeed:     clientSeed,
		NewNonce:          0,
	}, nil
}
