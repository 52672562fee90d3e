package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/change-compliance/internal/api/http"
	"github.com/spec-kit/change-compliance/internal/api/http/handlers"
	"github.com/spec-kit/change-compliance/internal/config"
	"github.com/spec-kit/change-compliance/internal/llm"
	"github.com/spec-kit/change-compliance/internal/observability"
	"github.com/spec-kit/change-compliance/internal/persistence"
	"github.com/spec-kit/change-compliance/internal/repository"
	"github.com/spec-kit/change-compliance/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := repository.LoadCatalog(cfg.Catalog.SeedFile)
	if err != nil {
		logger.Fatal("failed to load ticket catalog", zap.String("seed_file", cfg.Catalog.SeedFile), zap.Error(err))
	}
	logger.Info("ticket catalog loaded", zap.Int("tickets", catalog.Len()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	metrics.SetCatalog(catalog.All())

	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		logger.Fatal("failed to init llm client", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	}
	logger.Info("llm client ready", zap.String("provider", completer.Name()), zap.String("model", completer.Model()))

	chatDeps := service.ChatDependencies{
		TicketRepo:  catalog,
		Completer:   completer,
		Logger:      logger,
		Metrics:     metrics,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}
	var readiness handlers.Pinger
	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		chatDeps.Cache = persistence.NewCompletionCache(redis, cfg.Redis.CacheTTL())
		readiness = redis
	}

	ticketService := service.NewTicketService(service.TicketDependencies{TicketRepo: catalog})
	chatService := service.NewChatService(chatDeps)

	app := httptransport.NewApp(cfg.App.Name, logger, metrics,
		httptransport.MiddlewareConfig{
			Timeout:      cfg.App.RequestTimeout(),
			AllowOrigins: cfg.CORS.AllowOrigins,
		},
		httptransport.RouteConfig{
			Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, catalog, readiness),
			Tickets: handlers.NewTicketsHandler(ticketService),
			Chat:    handlers.NewChatHandler(chatService),
			Metrics: adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		},
	)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
