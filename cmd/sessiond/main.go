package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront-devkit/internal/api/http"
	"github.com/spec-kit/storefront-devkit/internal/api/http/handlers"
	"github.com/spec-kit/storefront-devkit/internal/auth"
	"github.com/spec-kit/storefront-devkit/internal/config"
	"github.com/spec-kit/storefront-devkit/internal/events"
	"github.com/spec-kit/storefront-devkit/internal/observability"
	"github.com/spec-kit/storefront-devkit/internal/persistence"
	"github.com/spec-kit/storefront-devkit/internal/repository"
	"github.com/spec-kit/storefront-devkit/internal/service"
	"github.com/spec-kit/storefront-devkit/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.Logger.Name = cfg.App.Name
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	// Redis only backs persisted tokens; verification keeps working without it.
	_ = redis.Connect(ctx)
	cancel()

	tokens, err := session.NewTokenService(cfg.Session.Secret, clock.WallClock)
	if err != nil {
		logger.Fatal("failed to init token service", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, repository.NewAuditRepository(redis.Client), logger, cfg.Audit)
	auditService.RegisterHandlers()

	sessions := service.NewSessionService(cfg.Session, service.SessionDependencies{
		Tokens:   tokens,
		Sessions: repository.NewSessionRepository(redis.Client, cfg.Session.KeyPrefix),
		Metrics:  metrics,
		Events:   dispatcher,
		Clock:    clock.WallClock,
		Logger:   logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis),
		Sessions:       handlers.NewSessionsHandler(sessions),
		AuthMiddleware: auth.NewAuthMiddleware(sessions),
		Metrics:        adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		DevRoutes:      cfg.Session.DevRoutes,
	})

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("env", cfg.App.Env),
			zap.Bool("dev_routes", cfg.Session.DevRoutes))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
