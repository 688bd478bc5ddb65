package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salt_portal/internal/config"
	"salt_portal/internal/frontend"
	"salt_portal/internal/gateway"
	"salt_portal/internal/guard"
	"salt_portal/internal/logger"
	"salt_portal/internal/metrics"
	"salt_portal/internal/middleware"
	"salt_portal/internal/session"
	"salt_portal/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Credential storage ---
	kv, health, closeKV, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open credential storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeKV()

	// --- Route table ---
	table, err := guard.LoadTable(cfg.Routes.File)
	if err != nil {
		log.Fatal("failed to load route table", zap.String("file", cfg.Routes.File), zap.Error(err))
	}

	// --- Sessions ---
	clients, err := frontend.NewClients(gateway.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		Endpoints: gateway.DefaultEndpoints(),
	}, kv, log)
	if err != nil {
		log.Fatal("failed to build backend clients", zap.Error(err))
	}
	registry := session.NewRegistry(clients.Controller, session.RegistryConfig{
		IdleTTL: cfg.Session.IdleTTL,
		MaxSize: cfg.Session.MaxClients,
	})
	go frontend.RunSweeper(ctx, registry, cfg.Session.IdleTTL/2, log)

	promRegistry, m := metrics.NewRegistry()

	router := frontend.NewRouter(frontend.Deps{
		Registry: registry,
		Table:    table,
		Data:     clients.Data,
		Metrics:  m,
		Gatherer: promRegistry,
		Cookie: middleware.ClientIDConfig{
			CookieName: cfg.Cookie.Name,
			Secure:     cfg.Cookie.Secure,
			MaxAge:     cfg.Cookie.MaxAge,
		},
		Log:    log,
		Health: health,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("portal starting",
			zap.String("port", cfg.App.Port),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("storage", cfg.Storage.Driver),
			zap.Int("routes", len(table.Routes())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutting down portal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("portal forced to shutdown", zap.Error(err))
	}
	log.Info("portal exiting")
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.KV, func(context.Context) error, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case config.DriverFile:
		kv, err := storage.NewFileKV(cfg.Storage.FilePath)
		return kv, nil, noop, err

	case config.DriverRedis:
		client, err := storage.NewRedisClient(storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, noop, err
		}
		health := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return storage.NewRedisKV(client), health, func() { client.Close() }, nil

	case config.DriverPostgres:
		pool, err := config.ConnectDB(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := config.AutoMigrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, noop, err
		}
		return storage.NewPostgresKV(pool, cfg.Storage.Namespace), pool.Ping, pool.Close, nil

	default:
		log.Warn("credentials are kept in memory and lost on restart")
		return storage.NewMemoryKV(), nil, noop, nil
	}
}
