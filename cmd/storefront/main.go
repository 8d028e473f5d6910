package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/clients"
	"storefront/internal/delivery"
	"storefront/internal/health"
	"storefront/internal/jobs"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	logger := setupLogger("info")

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s' in config, using default 'info'. Error: %v", cfg.LogLevel, err)
	} else {
		logger.SetLevel(logLevel)
	}
	if cfg.LogFile != "" {
		logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20,
			MaxBackups: 3,
			MaxAge:     14,
		}))
	}
	gin.SetMode(cfg.GinMode)
	logger.Infof("Starting Storefront...")

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open local store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("Error closing local store: %v", err)
		} else {
			logger.Info("Local store closed.")
		}
	}()

	productCache := repository.NewCatalogCache(store, logger)
	cartRepo := repository.NewCartRepository(store, logger)
	tokenRepo := repository.NewTokenRepository(store)

	apiClient := clients.NewStoreAPIClient(cfg.APIURL, cfg.APITimeout, tokenRepo, logger)
	images := clients.NewImageResolver(cfg.APIOrigin())
	reporter := health.NewReporter(logger)

	catalogUseCase := usecase.NewCatalogUseCase(apiClient, productCache, images, reporter, logger)
	cartUseCase := usecase.NewCartUseCase(cartRepo, catalogUseCase, apiClient, cfg.CheckoutCurrency, logger)
	authUseCase := usecase.NewAuthUseCase(apiClient, tokenRepo, logger)
	adminUseCase := usecase.NewAdminUseCase(apiClient, productCache, catalogUseCase, logger)

	if err := cartUseCase.Load(context.Background()); err != nil {
		logger.Warnf("Starting with an empty cart: %v", err)
	}

	router, err := delivery.NewRouter(delivery.RouterDeps{
		Catalog: catalogUseCase,
		Cart:    cartUseCase,
		Admin:   adminUseCase,
		Auth:    authUseCase,
		Status:  reporter,
		Config:  cfg,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatalf("Failed to build router: %v", err)
	}

	scheduler := jobs.NewScheduler(catalogUseCase, cfg.APITimeout, logger)
	if err := scheduler.ScheduleCatalogRefresh(cfg.CatalogRefreshCron); err != nil {
		logger.Fatalf("Invalid catalog refresh schedule %q: %v", cfg.CatalogRefreshCron, err)
	}
	scheduler.Start()

	var healthServer *health.Server
	if cfg.GrpcAddr != "" {
		healthServer = health.NewServer(cfg.GrpcAddr, reporter, logger)
		go func() {
			if err := healthServer.Serve(); err != nil {
				logger.Fatalf("Failed to serve gRPC health: %v", err)
			}
			logger.Info("gRPC health server stopped serving.")
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Storefront listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("Signal listener started.")

	<-quit
	logger.Warn("Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server shutdown failed: %v", err)
	}
	scheduler.Stop()
	if healthServer != nil {
		healthServer.Stop()
		logger.Info("gRPC health server gracefully stopped.")
	}
	logger.Info("Storefront shut down gracefully.")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func openStore(cfg *config.Config, logger *logrus.Logger) (repository.KVStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case "bolt":
		logger.Infof("Opening bolt store at %s", cfg.StorePath)
		boltDB, err := db.OpenBolt(cfg.StorePath, repository.BoltBucket)
		if err != nil {
			return nil, err
		}
		return repository.NewBoltKVStore(boltDB, logger), nil
	case "redis":
		logger.Infof("Connecting to redis at %s", cfg.RedisAddr)
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisKVStore(client, logger), nil
	case "postgres":
		logger.Info("Connecting to database...")
		sqlDB, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := repository.NewPostgresKVStore(ctx, sqlDB, logger)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		return store, nil
	case "memory":
		logger.Warn("Using in-memory store, nothing will survive a restart")
		return repository.NewMemoryKVStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
