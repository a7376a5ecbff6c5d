package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/model"
	"github.com/Slok9931/WriteStream/internal/repository"
	"github.com/Slok9931/WriteStream/internal/service"
)

const maxFeedLimit = 500

// AnalyticsHandler serves the off-ledger engagement endpoints plus the
// indexed event feed and global stats.
type AnalyticsHandler struct {
	svc    *service.AnalyticsService
	events *repository.EventRepo
}

func NewAnalyticsHandler(svc *service.AnalyticsService, events *repository.EventRepo) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, events: events}
}

// bindEngagement parses and validates the shared view/like/favorite body.
func bindEngagement(c fiber.Ctx) (model.EngagementRequest, string) {
	var req model.EngagementRequest
	if err := c.Bind().JSON(&req); err != nil {
		return req, "Invalid request body"
	}
	if req.ArticleID == 0 {
		return req, "articleId must be a positive integer"
	}
	account, errMsg := middleware.ValidateAccount(req.Account)
	if errMsg != "" {
		return req, errMsg
	}
	req.Account = account
	return req, ""
}

// View handles POST /api/analytics/view
func (h *AnalyticsHandler) View(c fiber.Ctx) error {
	req, errMsg := bindEngagement(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.svc.RecordView(c.Context(), req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record view")
	}
	return c.JSON(fiber.Map{"success": true})
}

// Like handles POST /api/analytics/like
func (h *AnalyticsHandler) Like(c fiber.Ctx) error {
	req, errMsg := bindEngagement(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.ToggleLike(c.Context(), req)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to toggle like")
	}
	return c.JSON(resp)
}

// Favorite handles POST /api/analytics/favorite
func (h *AnalyticsHandler) Favorite(c fiber.Ctx) error {
	req, errMsg := bindEngagement(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.ToggleFavorite(c.Context(), req)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to toggle favorite")
	}
	return c.JSON(resp)
}

// ArticleTotals handles GET /api/articles/:id/analytics
func (h *AnalyticsHandler) ArticleTotals(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateArticleID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	totals, fromCache, err := h.svc.GetTotals(c.Context(), id)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load analytics")
	}
	observeCache(fromCache)

	return c.JSON(totals)
}

// Feed handles GET /api/events?since=RFC3339&limit=N
func (h *AnalyticsHandler) Feed(c fiber.Ctx) error {
	since := time.Time{}
	if raw := fiber.Query[string](c, "since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "since must be an RFC3339 timestamp")
		}
		since = parsed
	}

	limit := fiber.Query[int](c, "limit", 100)
	if limit < 1 || limit > maxFeedLimit {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "limit must be between 1 and 500")
	}

	events, err := h.events.Feed(c.Context(), since, limit)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load event feed")
	}
	if events == nil {
		events = []model.IndexedEvent{}
	}

	return c.JSON(model.EventFeedResponse{
		Events:      events,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats handles GET /api/stats
func (h *AnalyticsHandler) Stats(c fiber.Ctx) error {
	stats, err := h.events.GetStats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load stats")
	}
	return c.JSON(stats)
}
