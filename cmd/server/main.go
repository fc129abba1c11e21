package main

import (
	"context"

	"github.com/oggyb/fitsocial/internal/app"
	"github.com/oggyb/fitsocial/internal/cache"
	"github.com/oggyb/fitsocial/internal/config"
	"github.com/oggyb/fitsocial/internal/db"
	"github.com/oggyb/fitsocial/internal/logger"
	"github.com/oggyb/fitsocial/internal/server"
	"github.com/oggyb/fitsocial/internal/service/fitsocial"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}
	defer redisCache.Close()

	appCtx, err := app.New(cfg, database, redisCache, log)
	if err != nil {
		log.Error("failed to init app", "err", err)
		return
	}

	registrars := []server.Registrar{
		fitsocial.NewRegistrar(appCtx),
	}

	if cfg.ShouldSeed() {
		if err := db.SeedTestData(database, log.With("component", "seed")); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(cfg, log, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}
