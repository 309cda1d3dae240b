package handler

import (
	"net/http"

	"slot-wager-service/internal/adapter/http/dto"
	"slot-wager-service/internal/core/domain"
	"slot-wager-service/internal/core/ports"
	"slot-wager-service/pkg/apperror"
	"slot-wager-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlayerHandler handles player, wallet and wager endpoints.
type PlayerHandler struct {
	playerSvc ports.PlayerService
	walletSvc ports.WalletService
	gameSvc   ports.GameService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(playerSvc ports.PlayerService, walletSvc ports.WalletService, gameSvc ports.GameService) *PlayerHandler {
	return &PlayerHandler{
		playerSvc: playerSvc,
		walletSvc: walletSvc,
		gameSvc:   gameSvc,
	}
}

// CreatePlayer handles POST /api/v1/players.
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req dto.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	player, err := h.playerSvc.Create(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PlayerResponse{
		PlayerID:       player.ID.String(),
		Username:       player.Username,
		Balance:        domain.CentsToDecimal(player.BalanceCents).StringFixed(2),
		ServerSeedHash: player.ServerSeedHash,
		ClientSeed:     player.ClientSeed,
		CreatedAt:      player.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetBalance handles GET /api/v1/players/:playerId/wallet/balance.
func (h *PlayerHandler) GetBalance(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), playerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Balance: domain.CentsToDecimal(balance).StringFixed(2),
	})
}

// Spin handles POST /api/v1/players/:playerId/spin.
func (h *PlayerHandler) Spin(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	var req dto.SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	betCents := domain.CentsFromDecimal(req.Bet)
	outcome, err := h.gameSvc.Spin(c.Request.Context(), playerID, betCents)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.SpinResponse{
		Symbols: outcome.Symbols,
		Win:     domain.CentsToDecimal(outcome.WinCents).StringFixed(2),
		Balance: domain.CentsToDecimal(outcome.BalanceCents).StringFixed(2),
	})
}

// GetProvablyFair handles GET /api/v1/players/:playerId/provably-fair.
func (h *PlayerHandler) GetProvablyFair(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	data, err := h.playerSvc.GetProvablyFair(c.Request.Context(), playerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ProvablyFairResponse{
		ServerSeedHash: data.ServerSeedHash,
		ClientSeed:     data.ClientSeed,
		Nonce:          data.Nonce,
	})
}

// RotateSeeds handles POST /api/v1/players/:playerId/provably-fair/seeds.
func (h *PlayerHandler) RotateSeeds(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateSeedsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rotation, err := h.playerSvc.RotateSeeds(c.Request.Context(), playerID, req.ClientSeed)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RotateSeedsResponse{
		OldServerSeed:  rotation.OldServerSeed,
		ServerSeedHash: rotation.NewServerSeedHash,
		ClientSeed:     rotation.NewClientSeed,
		Nonce:          rotation.NewNonce,
	})
}

// HealthCheck handles GET /health with deep dependency checks.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

// playerIDParam parses the :playerId path parameter, writing the error
// response itself on failure.
func playerIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("playerId"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid player id"))
		return uuid.Nil, false
	}
	return id, true
}
