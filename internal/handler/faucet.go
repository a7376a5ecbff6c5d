package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Slok9931/WriteStream/internal/ledger"
	"github.com/Slok9931/WriteStream/internal/middleware"
)

// FaucetHandler funds accounts on the in-memory bank. Registered only in
// the development environment so purchases and tips can be exercised
// without a real settlement layer.
type FaucetHandler struct {
	bank *ledger.MemoryBank
}

func NewFaucetHandler(bank *ledger.MemoryBank) *FaucetHandler {
	return &FaucetHandler{bank: bank}
}

// Fund handles POST /api/faucet
func (h *FaucetHandler) Fund(c fiber.Ctx) error {
	var req struct {
		Account string `json:"account"`
		Amount  uint64 `json:"amount"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	account, errMsg := middleware.ValidateAccount(req.Account)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if req.Amount == 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "amount must be positive")
	}

	h.bank.Deposit(ledger.Account(account), req.Amount)
	return c.JSON(fiber.Map{
		"account": account,
		"balance": h.bank.Balance(ledger.Account(account)),
	})
}

// Balance handles GET /api/faucet/:account
func (h *FaucetHandler) Balance(c fiber.Ctx) error {
	account, errMsg := middleware.ValidateAccount(c.Params("account"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	return c.JSON(fiber.Map{
		"account": account,
		"balance": h.bank.Balance(ledger.Account(account)),
	})
}
