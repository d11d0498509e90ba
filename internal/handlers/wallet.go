package handlers

import (
	"errors"

	domainerr "github.com/SaintAgents/saintagent-sub009/internal/errors"
	"github.com/SaintAgents/saintagent-sub009/internal/middleware"
	"github.com/SaintAgents/saintagent-sub009/internal/services/wallet"
	"github.com/SaintAgents/saintagent-sub009/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// WalletHandler exposes the wallet engine over HTTP.
type WalletHandler struct {
	service wallet.Service
}

func NewWalletHandler(service wallet.Service) *WalletHandler {
	return &WalletHandler{service: service}
}

// GetWallet returns the caller's wallet, creating it on first access.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	w, err := h.service.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, w)
}

// GetTransactions returns the caller's ledger history, newest first.
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	limit := c.QueryInt("limit", 0)
	txs, err := h.service.ListTransactions(c.Context(), claims.UserID, limit)
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, fiber.Map{"transactions": txs})
}

type transferRequest struct {
	ToUserID uint            `json:"to_user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Memo     string          `json:"memo"`
	EventID  string          `json:"event_id"`
}

// Transfer moves points from the caller to another user.
func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	res, err := h.service.Transfer(c.Context(), wallet.TransferRequest{
		FromUserID: claims.UserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Memo:       req.Memo,
		EventID:    req.EventID,
	})
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, res)
}

type lockRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	Memo              string          `json:"memo"`
	RelatedObjectType string          `json:"related_object_type"`
	RelatedObjectID   string          `json:"related_object_id"`
	EventID           string          `json:"event_id"`
}

// LockFunds moves part of the caller's available balance into escrow.
func (h *WalletHandler) LockFunds(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var req lockRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	res, err := h.service.LockFunds(c.Context(), wallet.LockRequest{
		UserID:  claims.UserID,
		Amount:  req.Amount,
		Memo:    req.Memo,
		Related: relatedObject(req.RelatedObjectType, req.RelatedObjectID),
		EventID: req.EventID,
	})
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, res)
}

type releaseRequest struct {
	ToUserID          uint            `json:"to_user_id"`
	Amount            decimal.Decimal `json:"amount"`
	Memo              string          `json:"memo"`
	RelatedObjectType string          `json:"related_object_type"`
	RelatedObjectID   string          `json:"related_object_id"`
	EventID           string          `json:"event_id"`
}

// ReleaseFunds releases the caller's escrowed funds, either back to their
// own balance or out to a recipient.
func (h *WalletHandler) ReleaseFunds(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var req releaseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	res, err := h.service.ReleaseFunds(c.Context(), wallet.ReleaseRequest{
		FromUserID: claims.UserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Memo:       req.Memo,
		Related:    relatedObject(req.RelatedObjectType, req.RelatedObjectID),
		EventID:    req.EventID,
	})
	if err != nil {
		return walletError(c, err)
	}
	return utils.Success(c, res)
}

func relatedObject(objType, objID string) *wallet.RelatedObject {
	if objType == "" && objID == "" {
		return nil
	}
	return &wallet.RelatedObject{Type: objType, ID: objID}
}

// walletError maps domain errors onto HTTP status codes.
func walletError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrInvalidTransfer),
		errors.Is(err, domainerr.ErrInvalidArgument):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, domainerr.ErrInsufficientBalance):
		return utils.Respond(c, fiber.StatusUnprocessableEntity, fiber.Map{"error": err.Error()})
	case errors.Is(err, domainerr.ErrPermissionDenied):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, domainerr.ErrWalletNotFound):
		return utils.NotFound(c, err.Error())
	default:
		return utils.InternalError(c, "internal server error")
	}
}
