package handler

import (
	"slot-wager-service/internal/adapter/http/middleware"
	"slot-wager-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	PlayerSvc      ports.PlayerService
	WalletSvc      ports.WalletService
	GameSvc        ports.GameService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	playerHandler := NewPlayerHandler(deps.PlayerSvc, deps.WalletSvc, deps.GameSvc)

	v1 := r.Group("/api/v1")
	players := v1.Group("/players")
	{
		players.POST("", playerHandler.CreatePlayer)
		players.GET("/:playerId/wallet/balance", playerHandler.GetBalance)
		players.POST("/:playerId/spin", playerHandler.Spin)
		players.GET("/:playerId/provably-fair", playerHandler.GetProvablyFair)
		players.POST("/:playerId/provably-fair/seeds", playerHandler.RotateSeeds)
	}

	return r
}
