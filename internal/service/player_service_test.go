package service

import (
	"context"
	"testing"

	"slot-wager-service/internal/core/domain"
	"slot-wager-service/internal/core/ports/mocks"
	"slot-wager-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playerMocks struct {
	repo   *mocks.MockPlayerRepository
	hasher *mocks.MockHashService
	crypto *mocks.MockCryptoService
}

func setupPlayer(t *testing.T) (*PlayerServiceImpl, playerMocks) {
	ctrl := gomock.NewController(t)
	m := playerMocks{
		repo:   mocks.NewMockPlayerRepository(ctrl),
		hasher: mocks.NewMockHashService(ctrl),
		crypto: mocks.NewMockCryptoService(ctrl),
	}
	svc := NewPlayerService(m.repo, m.hasher, m.crypto, NewSeedLocks(), 10000, zerolog.Nop())
	return svc, m
}

func TestPlayerService_Create(t *testing.T) {
	svc, m := setupPlayer(t)
	ctx := context.Background()

	m.repo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	m.hasher.EXPECT().Hash("hunter22").Return("$argon2id$...", nil)
	m.crypto.EXPECT().GenerateSeed().Return("fresh-server-seed", nil)
	m.crypto.EXPECT().Hash("fresh-server-seed").Return("seed-hash")

	var created *domain.Player
	m.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.Player) error {
			created = p
			return nil
		})

	player, err := svc.Create(ctx, "alice", "hunter22")
	require.NoError(t, err)
	require.Same(t, created, player)

	assert.NotEqual(t, uuid.Nil, player.ID)
	assert.Equal(t, "alice", player.Username)
	assert.Equal(t, int64(10000), player.BalanceCents)
	assert.Equal(t, "fresh-server-seed", player.ServerSeed)
	assert.Equal(t, "seed-hash", player.ServerSeedHash)
	assert.Equal(t, domain.DefaultClientSeed, player.ClientSeed)
	assert.Equal(t, int64(0), player.Nonce)
}

func TestPlayerService_Create_UsernameExists(t *testing.T) {
	svc, m := setupPlayer(t)
	ctx := context.Background()

	m.repo.EXPECT().GetByUsername(ctx, "alice").
		Return(&domain.Player{ID: uuid.New(), Username: "alice"}, nil)

	_, err := svc.Create(ctx, "alice", "hunter22")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PLR_002", appErr.Code)
}

func TestPlayerService_GetProvablyFair(t *testing.T) {
	svc, m := setupPlayer(t)
	ctx := context.Background()
	id := uuid.New()

	m.repo.EXPECT().GetByID(ctx, id).Return(&domain.Player{
		ID:             id,
		ServerSeed:     "secret",
		ServerSeedHash: "commitment",
		ClientSeed:     "my-seed",
		Nonce:          42,
	}, nil)

	data, err := svc.GetProvablyFair(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "commitment", data.ServerSeedHash)
	assert.Equal(t, "my-seed", data.ClientSeed)
	assert.Equal(t, int64(42), data.Nonce)
}

func TestPlayerService_GetProvablyFair_NotFound(t *testing.T) {
	svc, m := setupPlayer(t)
	ctx := context.Background()
	id := uuid.New()

	m.repo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := svc.GetProvablyFair(ctx, id)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PLR_001", appErr.Code)
}

func TestPlayerService_RotateSeeds(t *testing.T) {
	svc, m := setupPlayer(t)
	ctx := context.Background()
	id := uuid.New()

	m.repo.EXPECT().GetByID(ctx, id).Return(&domain.Player{
		ID:         id,
		ServerSeed: "old-secret",
		Nonce:      17,
	}, nil)
	m.crypto.EXPECT().GenerateSeed().Return("new-secret", nil)
	m.crypto.EXPECT().Hash("new-secret").Return("new-commitment")
	m.repo.EXPECT().UpdateSeedState(ctx, id, "new-secret", "new-commitment", "lucky-7", int64(0)).Return(nil)

	rotation, err := svc.RotateSeeds(ctx, id, "lucky-7")
	require.NoError(t, err)
	assert.Equal(t, "old-secret", rotation.OldServerSeed)
	assert.Equal(t, "new-commitment", rotation.NewServerSeedHash)
	assert.Equal(t, "lucky-7", rotation.NewClientSeed)
	assert.Equal(t, int64(0), rotation.NewNonce)
}

func TestPlayerService_RotateSeeds_DefaultClientSeed(t *testing.T) {
	svc, m := setupPlayer(t)
	ctx := context.Background()
	id := uuid.New()

	m.repo.EXPECT().GetByID(ctx, id).Return(&domain.Player{ID: id, ServerSeed: "old"}, nil)
	m.crypto.EXPECT().GenerateSeed().Return("new", nil)
	m.crypto.EXPECT().Hash("new").Return("hash")
	m.repo.EXPECT().UpdateSeedState(ctx, id, "new", "hash", domain.DefaultClientSeed, int64(0)).Return(nil)

	rotation, err := svc.RotateSeeds(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultClientSeed, rotation.NewClientSeed)
}
