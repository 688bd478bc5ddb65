// Command devbackend is a reference implementation of the platform API
// the portal talks to. It issues verification codes to the log instead
// of sending them.
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

	"go.uber.org/zap"

	"salt_portal/internal/config"
	"salt_portal/internal/handler"
	"salt_portal/internal/logger"
	"salt_portal/internal/metrics"
	"salt_portal/internal/repository"
	"salt_portal/internal/service"
	"salt_portal/internal/storage"
	"salt_portal/internal/utils"
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
	log = log.With(zap.String("app", "devbackend"))

	if cfg.IsProduction() {
		log.Fatal("devbackend logs verification codes and must not run in production")
	}

	if cfg.JWT.Secret == "" {
		log.Fatal("SALT_JWT_SECRET not set in environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users  repository.UserRepository  = repository.NewMemoryUserRepository()
		audit  repository.AuditRepository = repository.NewMemoryAuditRepository()
		otps   repository.OTPRepository   = repository.NewMemoryOTPRepository()
		checks []func(context.Context) error
	)

	// --- Database ---
	if cfg.DevBackend.UsersDriver == config.DriverPostgres {
		pool, err := config.ConnectDB(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		if err := config.AutoMigrate(ctx, pool, log); err != nil {
			log.Fatal("failed to auto-migrate database", zap.Error(err))
		}
		users = repository.NewUserRepository(pool)
		audit = repository.NewAuditRepository(pool)
		checks = append(checks, pool.Ping)
	}

	// --- Redis ---
	if cfg.DevBackend.OTPDriver == config.DriverRedis {
		client, err := storage.NewRedisClient(storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		otps = repository.NewRedisOTPRepository(client)
		checks = append(checks, func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}

	catalog := repository.NewMemoryCatalog()
	repository.SeedCatalog(catalog, time.Now())

	// --- Services ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
	authService := service.NewAuthService(users, otps, audit, jwtUtil, service.AuthOptions{
		OTPTTL:   cfg.DevBackend.OTPTTL,
		LogCodes: true,
	}, log)
	if err := authService.EnsureAdmin(ctx, cfg.DevBackend.AdminEmail, cfg.DevBackend.AdminPassword); err != nil {
		log.Fatal("failed to seed administrator", zap.Error(err))
	}

	promRegistry, m := metrics.NewRegistry()
	router := handler.NewRouter(handler.Deps{
		Auth:     authService,
		Admin:    service.NewAdminService(users, catalog, audit),
		JWT:      jwtUtil,
		Metrics:  m,
		Gatherer: promRegistry,
		Log:      log,
		Health: func(ctx context.Context) error {
			for _, check := range checks {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.DevBackend.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("devbackend starting",
			zap.String("port", cfg.DevBackend.Port),
			zap.String("users", cfg.DevBackend.UsersDriver),
			zap.String("otp", cfg.DevBackend.OTPDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down devbackend")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("devbackend forced to shutdown", zap.Error(err))
	}
}
