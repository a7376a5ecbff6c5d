package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Slok9931/WriteStream/internal/ledger"
	"github.com/Slok9931/WriteStream/internal/middleware"
	"github.com/Slok9931/WriteStream/internal/model"
	"github.com/Slok9931/WriteStream/internal/service"
)

type VoteHandler struct {
	svc *service.LedgerService
}

func NewVoteHandler(svc *service.LedgerService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Submit handles POST /api/articles/:id/votes
func (h *VoteHandler) Submit(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateArticleID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	voter, errMsg := middleware.ValidateAccount(req.Voter)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Voter = voter

	err := h.svc.Vote(c.Context(), id, req)
	observeTransaction("vote", err)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAccessDenied):
			return middleware.ErrorResponse(c, fiber.StatusForbidden, "ACCESS_DENIED", "Must purchase this article before voting")
		case errors.Is(err, ledger.ErrAlreadyVoted):
			return middleware.ErrorResponse(c, fiber.StatusConflict, "ALREADY_VOTED", "This account has already voted on this article")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit vote")
	}

	return c.JSON(fiber.Map{"success": true})
}
