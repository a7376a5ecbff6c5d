package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/Slok9931/WriteStream/internal/handler"
	"github.com/Slok9931/WriteStream/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Article   *handler.ArticleHandler
	Payment   *handler.PaymentHandler
	Vote      *handler.VoteHandler
	Content   *handler.ContentHandler
	Analytics *handler.AnalyticsHandler
	Health    *handler.HealthHandler

	// Faucet is registered only in development.
	Faucet *handler.FaucetHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health checks (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// Per-route rate limiters
	readRL := middleware.NewReadRateLimiter()
	publishRL := middleware.NewPublishRateLimiter()
	paymentRL := middleware.NewPaymentRateLimiter()
	voteRL := middleware.NewVoteRateLimiter()
	uploadRL := middleware.NewUploadRateLimiter()
	statsRL := middleware.NewStatsRateLimiter()

	// API routes
	api := app.Group("/api")

	// Ledger: articles
	api.Post("/articles", h.Article.Publish, publishRL.Handler())
	api.Get("/articles", h.Article.List, readRL.Handler())
	api.Get("/articles/:id", h.Article.Get, readRL.Handler())
	api.Get("/articles/:id/access", h.Article.Access, readRL.Handler())
	api.Get("/articles/:id/votes", h.Article.Votes, readRL.Handler())

	// Ledger: payable calls
	api.Post("/articles/:id/tip", h.Payment.Tip, paymentRL.Handler())
	api.Post("/articles/:id/purchase", h.Payment.Purchase, paymentRL.Handler())

	// Ledger: votes
	api.Post("/articles/:id/votes", h.Vote.Submit, voteRL.Handler())

	// Content store
	api.Post("/content", h.Content.Upload, uploadRL.Handler())
	api.Get("/content/:hash", h.Content.Fetch, readRL.Handler())

	// Analytics + event index
	api.Post("/analytics/view", h.Analytics.View, readRL.Handler())
	api.Post("/analytics/like", h.Analytics.Like, readRL.Handler())
	api.Post("/analytics/favorite", h.Analytics.Favorite, readRL.Handler())
	api.Get("/articles/:id/analytics", h.Analytics.ArticleTotals, readRL.Handler())
	api.Get("/events", h.Analytics.Feed, statsRL.Handler())
	api.Get("/stats", h.Analytics.Stats, statsRL.Handler())

	// Development-only faucet for the in-memory bank
	if h.Faucet != nil {
		api.Post("/faucet", h.Faucet.Fund)
		api.Get("/faucet/:account", h.Faucet.Balance)
	}
}
