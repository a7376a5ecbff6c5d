package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Slok9931/WriteStream/internal/ledger"
	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/model"
	"github.com/Slok9931/WriteStream/internal/service"
)

// PaymentHandler serves the two payable ledger calls: tip and purchase.
type PaymentHandler struct {
	svc *service.LedgerService
}

func NewPaymentHandler(svc *service.LedgerService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Tip handles POST /api/articles/:id/tip
func (h *PaymentHandler) Tip(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateArticleID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.TipRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	from, errMsg := middleware.ValidateAccount(req.From)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.From = from

	if req.Amount == 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "amount must be positive")
	}

	err := h.svc.Tip(id, req)
	observeTransaction("tip", err)
	if err != nil {
		if errors.Is(err, ledger.ErrTransferFailed) {
			return middleware.ErrorResponse(c, fiber.StatusUnprocessableEntity, "TRANSFER_FAILED", "Could not forward the tip to the author")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to tip")
	}

	return c.JSON(fiber.Map{"success": true})
}

// Purchase handles POST /api/articles/:id/purchase
func (h *PaymentHandler) Purchase(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateArticleID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.PurchaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	buyer, errMsg := middleware.ValidateAccount(req.Buyer)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Buyer = buyer

	err := h.svc.Purchase(c.Context(), id, req)
	observeTransaction("purchase", err)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrFreeArticle):
			return middleware.ErrorResponse(c, fiber.StatusUnprocessableEntity, "FREE_ARTICLE", "Free articles cannot be purchased")
		case errors.Is(err, ledger.ErrInsufficientPayment):
			return middleware.ErrorResponse(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_PAYMENT", "Payment is below the article price")
		case errors.Is(err, ledger.ErrTransferFailed):
			return middleware.ErrorResponse(c, fiber.StatusUnprocessableEntity, "TRANSFER_FAILED", "Could not forward the payment to the author")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to purchase")
	}

	return c.JSON(fiber.Map{"success": true})
}
