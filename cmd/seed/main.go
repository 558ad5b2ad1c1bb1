package main

import (
	"context"
	"log"

	"pharmacy-storefront/config"
	"pharmacy-storefront/internal/seed"
	"pharmacy-storefront/internal/service"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/store/memstore"
	"pharmacy-storefront/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	if cfg.Database.Driver != config.DriverPostgres {
		logger.Fatal("Seeding needs a persistent store; the memory driver seeds itself on startup",
			zap.String("driver", cfg.Database.Driver))
	}

	ctx := context.Background()

	db, err := store.NewStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Sessions are never opened here; the in-memory store satisfies the dependency.
	auth := service.NewAuthService(db, memstore.NewSessions(cfg.Redis.SessionTTL), cfg.Security.BcryptCost)

	res, err := seed.Run(ctx, db, auth, cfg.Security.SeedAdminPass)
	if err != nil {
		logger.Fatal("Failed to seed data", zap.Error(err))
	}

	logger.Info("Seeding complete",
		zap.Int("users", res.Users),
		zap.Int("categories", res.Categories),
		zap.Int("medicines", res.Medicines))
}
