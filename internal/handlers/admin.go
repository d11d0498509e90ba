package handlers

import (
	"github.com/SaintAgents/saintagent-sub009/internal/middleware"
	"github.com/SaintAgents/saintagent-sub009/internal/services/wallet"
	"github.com/SaintAgents/saintagent-sub009/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AdminHandler exposes administrative wallet overrides.
type AdminHandler struct {
	service wallet.Service
}

func NewAdminHandler(service wallet.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// GetWallet returns any user's wallet for inspection. Unlike the
// self-service read it does not create a wallet for unknown users.
func (h *AdminHandler) GetWallet(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}

	w, err := h.service.LookupWallet(c.Context(), uint(userID))
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, w)
}

type adjustmentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
	Memo      string          `json:"memo"`
	AdminNote string          `json:"admin_note"`
	EventID   string          `json:"event_id"`
}

// Adjustment applies a manual credit or debit to a user's wallet. The
// admin's identity is recorded in the ledger entry metadata.
func (h *AdminHandler) Adjustment(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}

	var req adjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	res, err := h.service.Adjustment(c.Context(),
		wallet.Caller{UserID: claims.UserID, Role: claims.Role},
		wallet.AdjustmentRequest{
			UserID:    uint(userID),
			Amount:    req.Amount,
			Direction: req.Direction,
			Memo:      req.Memo,
			AdminNote: req.AdminNote,
			EventID:   req.EventID,
		})
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, res)
}
