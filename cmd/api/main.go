// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/admin"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/auth"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/config"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/health"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/menu"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/middleware"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/question"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/role"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/server"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	codec, err := auth.NewCodec(cfg.Session)
	if err != nil {
		return err
	}

	roleRepo := role.NewRepository(db.DB)
	roleSvc := role.NewService(roleRepo)
	roleHandler := role.NewHandler(roleSvc)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, roleSvc)
	userHandler := user.NewHandler(userSvc)

	menuRepo := menu.NewRepository(db.DB)
	menuSvc := menu.NewService(menuRepo)
	menuHandler := menu.NewHandler(menuSvc)

	resolver := auth.NewResolver(codec, userSvc)
	authSvc := auth.NewService(codec, userSvc)
	authHandler := auth.NewHandler(
		authSvc,
		func(ctx context.Context, userID string) (any, error) {
			return menuSvc.TreeForUser(ctx, userID)
		},
		cfg.Session,
	)

	questionRepo := question.NewRepository(db.DB)
	questionSvc := question.NewService(questionRepo)
	questionHandler := question.NewHandler(questionSvc)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Counters: map[string]admin.CountFunc{
			"users":     userSvc.CountAll,
			"roles":     roleRepo.CountAll,
			"questions": questionSvc.CountAll,
			"menus": func(ctx context.Context) (int64, error) {
				n, err := menuRepo.CountAll(ctx)
				return int64(n), err
			},
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(
		resolver,
		cfg.Session.CookieName,
	)
	adminOnly := middleware.RequireAdmin

	// Fine-grained gate over the menu permission keys; admins bypass the
	// lookup, so a fresh deployment with no grants stays administrable.
	requirePerm := func(permission string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(menuSvc, permission)
	}

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(
			r,
			authenticator,
			middleware.IdentityFromContext,
		)
		menuHandler.RegisterRoutes(r, authenticator, requirePerm)
		roleHandler.RegisterRoutes(r, authenticator, requirePerm)
		userHandler.RegisterRoutes(r, authenticator, requirePerm)
		questionHandler.RegisterRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
