package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/Slok9931/WriteStream/internal/config"
	"github.com/Slok9931/WriteStream/internal/db"
	"github.com/Slok9931/WriteStream/internal/handler"
	"github.com/Slok9931/WriteStream/internal/ledger"
	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/repository"
	"github.com/Slok9931/WriteStream/internal/router"
	"github.com/Slok9931/WriteStream/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "writestream-api")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure index schema")
	}

	handler.InitMetrics(pool)

	// Core ledger with an in-memory settlement bank.
	bank := ledger.NewMemoryBank()
	ldg := ledger.New(bank)

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	eventRepo := repository.NewEventRepo(pool)
	analyticsRepo := repository.NewAnalyticsRepo(pool)

	ledgerSvc := service.NewLedgerService(ldg, cache)
	contentSvc := service.NewContentService(cfg.PinataAPIKey, cfg.PinataSecretKey, cfg.IPFSGateway)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cache)

	worker := service.NewIndexWorker(ldg.Subscribe(), eventRepo, cfg.IndexBatchEvery)
	worker.Observe = func(batch int) {
		handler.Metrics.IndexBatchSize.Observe(float64(batch))
	}
	go worker.Start(ctx)

	h := &router.Handlers{
		Article:   handler.NewArticleHandler(ledgerSvc),
		Payment:   handler.NewPaymentHandler(ledgerSvc),
		Vote:      handler.NewVoteHandler(ledgerSvc),
		Content:   handler.NewContentHandler(contentSvc, cfg.MaxUploadBytes),
		Analytics: handler.NewAnalyticsHandler(analyticsSvc, eventRepo),
		Health:    handler.NewHealthHandler(pool, cache.Client()),
	}
	if cfg.Environment == "development" {
		h.Faucet = handler.NewFaucetHandler(bank)
	}

	app := fiber.New(fiber.Config{
		AppName:      "WriteStream API",
		ServerHeader: "WriteStream",
		BodyLimit:    cfg.MaxUploadBytes + 1<<20, // multipart overhead
	})
	router.Setup(app, h, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("WriteStream backend starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
