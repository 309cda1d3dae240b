package integration

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "slot-wager-service/internal/adapter/http/handler"
	redisStorage "slot-wager-service/internal/adapter/storage/redis"
	"slot-wager-service/internal/service"
	"slot-wager-service/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack: real HTTP layer, services and
// Redis stores (miniredis), with an in-memory durable repo and an in-process
// event bus standing in for PostgreSQL and Kafka.

var testSymbols = []string{"CHERRY", "ORANGE", "SEVEN", "BAR"}

type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	playerRepo *inMemoryPlayerRepo
	bus        *syncBus
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	balanceStore := redisStorage.NewBalanceStore(rdb)

	playerRepo := newInMemoryPlayerRepo()

	log := logger.New("error", false)
	cryptoSvc := service.NewProvablyFairCrypto()
	hashSvc := service.NewPasswordHasher()
	seedLocks := service.NewSeedLocks()

	listener := service.NewWalletSyncListener(playerRepo, log)
	bus := &syncBus{handler: listener}

	walletSvc := service.NewWalletService(balanceStore, playerRepo, 60*time.Minute, log)
	rngSvc := service.NewRNGService(playerRepo, cryptoSvc, service.DefaultWinRules("SEVEN"), testSymbols, seedLocks, log)
	gameSvc := service.NewGameService(walletSvc, rngSvc, balanceStore, bus, log)
	playerSvc := service.NewPlayerService(playerRepo, hashSvc, cryptoSvc, seedLocks, 10000, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		PlayerSvc: playerSvc,
		WalletSvc: walletSvc,
		GameSvc:   gameSvc,
		Logger:    log,
	})

	return &testApp{
		server:     httptest.NewServer(router),
		redis:      mr,
		playerRepo: playerRepo,
		bus:        bus,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- HTTP helpers ---

type envelope struct {
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
}

func (a *testApp) post(t *testing.T, path, body string) (int, envelope) {
	t.Helper()
	resp, err := http.Post(a.server.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (a *testApp) get(t *testing.T, path string) (int, envelope) {
	t.Helper()
	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type playerData struct {
	PlayerID       string `json:"player_id"`
	Username       string `json:"username"`
	Balance        string `json:"balance"`
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
}

func (a *testApp) createPlayer(t *testing.T, username string) playerData {
	t.Helper()
	code, env := a.post(t, "/api/v1/players", `{"username":"`+username+`","password":"StrongPass123"}`)
	require.Equal(t, http.StatusCreated, code)

	var p playerData
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

type spinData struct {
	Symbols []string `json:"symbols"`
	Win     string   `json:"win"`
	Balance string   `json:"balance"`
}

type fairData struct {
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
	Nonce          int64  `json:"nonce"`
}

// --- Integration Tests ---

func TestIntegration_CreatePlayer(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "alice")
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "100.00", p.Balance)
	assert.Len(t, p.ServerSeedHash, 64, "commitment is a SHA-256 hex digest")
	assert.Equal(t, "default-client-seed", p.ClientSeed)

	// Duplicate username
	code, env := app.post(t, "/api/v1/players", `{"username":"alice","password":"StrongPass123"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "PLR_002", env.ErrorCode)
}

func TestIntegration_GetBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "bob")

	code, env := app.get(t, "/api/v1/players/"+p.PlayerID+"/wallet/balance")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "100.00")

	// Unknown player
	code, env = app.get(t, "/api/v1/players/00000000-0000-0000-0000-000000000001/wallet/balance")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PLR_001", env.ErrorCode)
}

func TestIntegration_Spin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "carol")

	code, env := app.post(t, "/api/v1/players/"+p.PlayerID+"/spin", `{"bet":"5.00"}`)
	require.Equal(t, http.StatusOK, code)

	var spin spinData
	require.NoError(t, json.Unmarshal(env.Data, &spin))
	assert.Len(t, spin.Symbols, 3)
	for _, sym := range spin.Symbols {
		assert.Contains(t, testSymbols, sym)
	}
}

func TestIntegration_Spin_InsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "dave")

	code, env := app.post(t, "/api/v1/players/"+p.PlayerID+"/spin", `{"bet":"1000.00"}`)
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, "WAL_001", env.ErrorCode)

	// The rejected wager leaves the balance untouched.
	code, env = app.get(t, "/api/v1/players/"+p.PlayerID+"/wallet/balance")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "100.00")
}

func TestIntegration_Spin_InvalidBet(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "erin")

	for _, bet := range []string{`"-1.00"`, `"0"`} {
		code, env := app.post(t, "/api/v1/players/"+p.PlayerID+"/spin", `{"bet":`+bet+`}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "WAL_002", env.ErrorCode)
	}
}

func TestIntegration_ProvablyFair_NonceAdvances(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "frank")

	code, env := app.get(t, "/api/v1/players/"+p.PlayerID+"/provably-fair")
	require.Equal(t, http.StatusOK, code)
	var before fairData
	require.NoError(t, json.Unmarshal(env.Data, &before))
	assert.Equal(t, int64(0), before.Nonce)
	assert.Equal(t, p.ServerSeedHash, before.ServerSeedHash)

	for i := 0; i < 3; i++ {
		code, _ = app.post(t, "/api/v1/players/"+p.PlayerID+"/spin", `{"bet":"1.00"}`)
		require.Equal(t, http.StatusOK, code)
	}

	code, env = app.get(t, "/api/v1/players/"+p.PlayerID+"/provably-fair")
	require.Equal(t, http.StatusOK, code)
	var after fairData
	require.NoError(t, json.Unmarshal(env.Data, &after))
	assert.Equal(t, int64(3), after.Nonce)
	assert.Equal(t, before.ServerSeedHash, after.ServerSeedHash, "commitment is stable across spins")
}

func TestIntegration_RotateSeeds_RevealsCommittedSeed(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "grace")

	code, env := app.post(t, "/api/v1/players/"+p.PlayerID+"/provably-fair/seeds", `{"client_seed":"lucky-7"}`)
	require.Equal(t, http.StatusOK, code)

	var rotation struct {
		OldServerSeed  string `json:"old_server_seed"`
		ServerSeedHash string `json:"server_seed_hash"`
		ClientSeed     string `json:"client_seed"`
		Nonce          int64  `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rotation))

	// The revealed seed must hash to the commitment advertised at creation.
	sum := sha256.Sum256([]byte(rotation.OldServerSeed))
	assert.Equal(t, p.ServerSeedHash, hex.EncodeToString(sum[:]))

	assert.NotEqual(t, p.ServerSeedHash, rotation.ServerSeedHash)
	assert.Equal(t, "lucky-7", rotation.ClientSeed)
	assert.Equal(t, int64(0), rotation.Nonce)
}

func TestIntegration_SpinReconcilesDurableBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	p := app.createPlayer(t, "heidi")

	code, env := app.post(t, "/api/v1/players/"+p.PlayerID+"/spin", `{"bet":"5.00"}`)
	require.Equal(t, http.StatusOK, code)

	var spin spinData
	require.NoError(t, json.Unmarshal(env.Data, &spin))

	// The event bus is synchronous here, so the durable tier already holds the
	// settled balance.
	stored, err := app.playerRepo.GetByUsername(t.Context(), "heidi")
	require.NoError(t, err)
	require.NotNil(t, stored)

	code, balEnv := app.get(t, "/api/v1/players/"+p.PlayerID+"/wallet/balance")
	require.Equal(t, http.StatusOK, code)
	var bal struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(balEnv.Data, &bal))
	assert.Equal(t, spin.Balance, bal.Balance)
	assert.Equal(t, spin.Balance, formatCents(stored.BalanceCents))
}
