package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pairline/matching-system/internal/api"
	"github.com/pairline/matching-system/internal/core/service"
	"github.com/pairline/matching-system/internal/infrastructure/config"
	mongodb "github.com/pairline/matching-system/internal/infrastructure/db/mongo"
	redisdb "github.com/pairline/matching-system/internal/infrastructure/db/redis"
	"github.com/pairline/matching-system/internal/infrastructure/queue"
	"github.com/pairline/matching-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	presence := redisdb.NewPresenceStore(rdb, cfg.Matching.HeartbeatTTL)
	cooldowns := redisdb.NewCooldownStore(rdb)

	blocklistRepo := mongodb.NewBlocklistRepository(db)
	archive := mongodb.NewMatchArchive(db)
	if err := archive.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("archive index creation failed")
	}

	blocklist := service.NewBlocklist(blocklistRepo, log)
	if err := blocklist.Warm(ctx); err != nil {
		log.Fatal().Err(err).Msg("blocklist warm-up failed")
	}
	log.Info().Int("pairs", blocklist.Size()).Msg("blocklist warmed")

	notifier := queue.NewNotifier(cfg.Matching.NotifyWorkers, redisdb.NewPubSubSink(rdb), log)
	notifier.Start(ctx)

	// --- Engine ---
	coordinator := service.NewCoordinator(service.Config{
		VoteWindow:  cfg.Matching.VoteWindow,
		PairRetries: cfg.Matching.PairRetries,
		PairBackoff: cfg.Matching.PairBackoff,
	}, presence, cooldowns, blocklist, archive, notifier, log)

	guardian := service.NewGuardian(coordinator, service.GuardianConfig{
		Interval:           cfg.Matching.SweepInterval,
		Ceiling:            cfg.Matching.GuardianCeiling,
		DisconnectCooldown: cfg.Matching.DisconnectCooldown,
	}, log)
	guardian.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(coordinator, presence, db, rdb, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
