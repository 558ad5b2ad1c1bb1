package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmacy-storefront/config"
	"pharmacy-storefront/internal/api"
	"pharmacy-storefront/internal/broker"
	"pharmacy-storefront/internal/redisclient"
	"pharmacy-storefront/internal/seed"
	"pharmacy-storefront/internal/service"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/store/memstore"
	"pharmacy-storefront/internal/util"
	"pharmacy-storefront/internal/worker"

	"github.com/gin-gonic/gin"
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
	logger.Info("Starting pharmacy storefront", zap.String("env", cfg.Server.Env))

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer(cfg.Observ.ServiceName, cfg.Observ.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()

	var repo store.Repository
	switch cfg.Database.Driver {
	case config.DriverMemory:
		repo = memstore.New()
		logger.Warn("Using in-memory store; data is lost on restart")
	default:
		db, err := store.NewStore(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				logger.Fatal("Failed to migrate database", zap.Error(err))
			}
		}
		repo = db
		logger.Info("Database connected")
	}
	defer repo.Close()

	checks := []api.ReadinessCheck{{Name: "database", Check: repo.Ping}}

	var (
		sessions service.SessionStore = memstore.NewSessions(cfg.Redis.SessionTTL)
		cache    service.CategoryCache
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		sessions = redisclient.NewSessions(redisClient, cfg.Redis.SessionTTL)
		cache = redisclient.NewCategoryCache(redisClient, cfg.Redis.CategoryCacheTTL)
		checks = append(checks, api.ReadinessCheck{Name: "redis", Check: redisClient.Ping})
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	var publisher service.EventPublisher = service.NoopPublisher{}
	var timelineWorker *worker.TimelineWorker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		timelineWorker = worker.NewTimelineWorker(consumer, repo)
		go func() {
			if err := timelineWorker.Start(workerCtx); err != nil {
				logger.Error("Timeline worker error", zap.Error(err))
			}
		}()
	}

	var policy service.TransitionPolicy = service.PermissiveTransitions{}
	if cfg.Business.StrictOrderTransitions {
		policy = service.StrictTransitions{}
	}

	auth := service.NewAuthService(repo, sessions, cfg.Security.BcryptCost)
	catalog := service.NewCatalogService(repo, cache, cfg.Business)
	orders := service.NewOrderService(repo, publisher, policy)

	if cfg.Database.Driver == config.DriverMemory {
		if _, err := seed.Run(ctx, repo, auth, cfg.Security.SeedAdminPass); err != nil {
			logger.Fatal("Failed to seed in-memory store", zap.Error(err))
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Services{
		Auth:       auth,
		Catalog:    catalog,
		Cart:       service.NewCartService(repo),
		Checkout:   service.NewCheckoutService(repo, publisher),
		Orders:     orders,
		Reminders:  service.NewReminderService(repo, nil),
		Backoffice: service.NewBackofficeService(repo, orders, catalog, cfg.Business),
	}, cfg, checks...)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if timelineWorker != nil {
		if err := timelineWorker.Stop(); err != nil {
			logger.Warn("Error stopping timeline worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
