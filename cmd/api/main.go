package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slot-wager-service/config"
	kafkaBus "slot-wager-service/internal/adapter/bus/kafka"
	httpHandler "slot-wager-service/internal/adapter/http/handler"
	pgStorage "slot-wager-service/internal/adapter/storage/postgres"
	redisStorage "slot-wager-service/internal/adapter/storage/redis"
	"slot-wager-service/internal/core/ports"
	"slot-wager-service/internal/service"
	"slot-wager-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Slot Wager Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories and stores
	playerRepo := pgStorage.NewPlayerRepo(pool)
	balanceStore := redisStorage.NewBalanceStore(rdb)

	// Initialize Kafka producer
	producer := kafkaBus.NewProducer(kafkaBus.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, log)
	defer producer.Close()

	// Initialize core services
	cryptoSvc := service.NewProvablyFairCrypto()
	hashSvc := service.NewPasswordHasher()
	seedLocks := service.NewSeedLocks()
	winRules := service.DefaultWinRules(cfg.Game.JackpotSymbol)

	// Initialize business services
	walletSvc := service.NewWalletService(balanceStore, playerRepo, cfg.Wallet.BalanceTTL, log)
	rngSvc := service.NewRNGService(playerRepo, cryptoSvc, winRules, cfg.Game.Symbols, seedLocks, log)
	gameSvc := service.NewGameService(walletSvc, rngSvc, balanceStore, producer, log)
	playerSvc := service.NewPlayerService(playerRepo, hashSvc, cryptoSvc, seedLocks, cfg.Wallet.InitialBalanceCents, log)

	// Start the reconciliation consumer
	listener := service.NewWalletSyncListener(playerRepo, log)
	consumer := kafkaBus.NewConsumer(kafkaBus.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}, listener, log)
	consumer.Start()

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		PlayerSvc:      playerSvc,
		WalletSvc:      walletSvc,
		GameSvc:        gameSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := consumer.Stop(); err != nil {
		log.Error().Err(err).Msg("Error stopping kafka consumer")
	}

	log.Info().Msg("Server exited")
}
