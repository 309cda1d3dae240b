package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"slot-wager-service/internal/core/domain"
	"slot-wager-service/internal/core/ports"
	"slot-wager-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const hexCharsPerReel = 8 // 32 bits of digest per reel position

// RNGServiceImpl implements ports.OutcomeService: the deterministic,
// player-verifiable outcome generator. The symbol sequence is a pure function
// of (serverSeed, clientSeed, nonce); the only mutation is the synchronous
// nonce increment persisted before the result is returned.
type RNGServiceImpl struct {
	playerRepo ports.PlayerRepository
	crypto     ports.CryptoService
	rules      []ports.WinRule
	symbols    []string
	locks      *SeedLocks
	log        zerolog.Logger
}

// NewRNGService creates a new RNGServiceImpl. symbols is the deployment-fixed
// reel alphabet in index order; rules are evaluated in the order given. locks
// must be the same instance handed to the player service so seed rotation and
// spins serialize against each other.
func NewRNGService(
	playerRepo ports.PlayerRepository,
	crypto ports.CryptoService,
	rules []ports.WinRule,
	symbols []string,
	locks *SeedLocks,
	log zerolog.Logger,
) *RNGServiceImpl {
	return &RNGServiceImpl{
		playerRepo: playerRepo,
		crypto:     crypto,
		rules:      rules,
		symbols:    symbols,
		locks:      locks,
		log:        log,
	}
}

// GenerateSpinResult derives the symbols for the player's current nonce,
// evaluates the win and persists the incremented nonce. The whole
// read-derive-persist step is serialized per player so the same nonce value is
// never consumed by two concurrent spins.
func (s *RNGServiceImpl) GenerateSpinResult(ctx context.Context, playerID uuid.UUID, betCents int64) (*domain.SpinResult, error) {
	unlock := s.locks.Lock(playerID)
	defer unlock()

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load player: %w", err))
	}
	if player == nil {
		return nil, apperror.ErrPlayerNotFound()
	}

	message := player.ClientSeed + ":" + strconv.FormatInt(player.Nonce, 10)
	digest := s.crypto.HMAC(player.ServerSeed, message)

	symbols, err := deriveSymbols(digest, s.symbols)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive symbols: %w", err))
	}

	winCents := EvaluateWin(s.rules, symbols, betCents)

	// The nonce is consumed the moment an outcome is derived from it; persist
	// the increment before releasing the result.
	if err := s.playerRepo.UpdateSeedState(ctx, playerID,
		player.ServerSeed, player.ServerSeedHash, player.ClientSeed, player.Nonce+1); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("persist nonce: %w", err))
	}

	s.log.Debug().
		Str("player_id", playerID.String()).
		Int64("nonce", player.Nonce).
		Strs("symbols", symbols).
		Int64("win_cents", winCents).
		Msg("spin result generated")

	return &domain.SpinResult{Symbols: symbols, WinCents: winCents}, nil
}

// deriveSymbols maps a hex digest to one symbol per reel: consecutive 8-hex
// (32-bit) chunks parsed as unsigned integers, reduced modulo the alphabet
// size. Exported behavior is pure; identical digests always yield identical
// sequences.
func deriveSymbols(digest string, alphabet []string) ([]string, error) {
	need := domain.ReelCount * hexCharsPerReel
	if len(digest) < need {
		return nil, fmt.Errorf("digest too short: %d hex chars, need %d", len(digest), need)
	}

	symbols := make([]string, 0, domain.ReelCount)
	for reel := 0; reel < domain.ReelCount; reel++ {
		chunk := digest[reel*hexCharsPerReel : (reel+1)*hexCharsPerReel]
		v, err := strconv.ParseUint(chunk, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse digest chunk %q: %w", chunk, err)
		}
		symbols = append(symbols, alphabet[v%uint64(len(alphabet))])
	}
	return symbols, nil
}

// SeedLocks serializes seed-state mutations per player. Entries are never
// evicted; the table is bounded by the number of active players on this
// instance.
type SeedLocks struct {
	mus sync.Map // uuid.UUID -> *sync.Mutex
}

func NewSeedLocks() *SeedLocks {
	return &SeedLocks{}
}

// Lock acquires the player's mutex and returns the release func.
func (k *SeedLocks) Lock(id uuid.UUID) func() {
	v, _ := k.mus.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
