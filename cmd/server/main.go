// Command server runs the e-library backend: the HTTP API plus the two daily
// reconciliation jobs (book availability sync and overdue sweep).
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/api"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/infrastructure/config"
	mongoinfra "github.com/omSolanki30/Smart-E-Lib-backend/internal/infrastructure/db/mongo"
	redisinfra "github.com/omSolanki30/Smart-E-Lib-backend/internal/infrastructure/db/redis"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/infrastructure/scheduler"
	"github.com/omSolanki30/Smart-E-Lib-backend/pkg/clock"
	"github.com/omSolanki30/Smart-E-Lib-backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	e, services := api.NewRouter(cfg, db, rdb, clock.NewSystem(), log)

	jobs := scheduler.New(services.Availability, services.Overdue, log)
	if err := jobs.Start(scheduler.Config{
		AvailabilitySync: cfg.Jobs.AvailabilitySync,
		OverdueSweep:     cfg.Jobs.OverdueSweep,
	}); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongoinfra.NewBookRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongoinfra.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongoinfra.NewTransactionRepository(db).EnsureIndexes(ctx)
}
