package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/model"
	"github.com/Slok9931/WriteStream/internal/service"
)

const maxPageSize = 100

type ArticleHandler struct {
	svc *service.LedgerService
}

func NewArticleHandler(svc *service.LedgerService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

// Publish handles POST /api/articles
func (h *ArticleHandler) Publish(c fiber.Ctx) error {
	var req model.PublishRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	author, errMsg := middleware.ValidateAccount(req.Author)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Author = author

	title, errMsg := middleware.ValidateTitle(req.Title)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Title = title

	contentHash, errMsg := middleware.ValidateContentHash(req.ContentHash)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.ContentHash = contentHash

	resp, err := h.svc.Publish(req)
	observeTransaction("publish", err)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to publish article")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get handles GET /api/articles/:id
func (h *ArticleHandler) Get(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateArticleID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, fromCache, found, err := h.svc.GetArticle(c.Context(), id)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup article")
	}
	if !found {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Article not found")
	}
	observeCache(fromCache)

	return c.JSON(resp)
}

// List handles GET /api/articles?from=N&limit=M
func (h *ArticleHandler) List(c fiber.Ctx) error {
	from := fiber.Query[uint64](c, "from", 1)
	limit := fiber.Query[int](c, "limit", 20)
	if limit < 1 || limit > maxPageSize {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "limit must be between 1 and 100")
	}

	return c.JSON(h.svc.ListArticles(from, limit))
}

// Access handles GET /api/articles/:id/access?account=0x...
func (h *ArticleHandler) Access(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateArticleID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	account := fiber.Query[string](c, "account")
	if account != "" {
		var msg string
		account, msg = middleware.ValidateAccount(account)
		if msg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", msg)
		}
	}

	return c.JSON(h.svc.CheckAccess(id, account))
}

// Votes handles GET /api/articles/:id/votes?account=0x...
func (h *ArticleHandler) Votes(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateArticleID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	account := fiber.Query[string](c, "account")
	if account != "" {
		var msg string
		account, msg = middleware.ValidateAccount(account)
		if msg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", msg)
		}
	}

	return c.JSON(h.svc.GetVotes(id, account))
}
