package handlers

import (
	"errors"

	"github.com/SaintAgents/saintagent-sub009/internal/services/mission"
	"github.com/SaintAgents/saintagent-sub009/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// MissionHandler settles completed missions.
type MissionHandler struct {
	service mission.Service
}

func NewMissionHandler(service mission.Service) *MissionHandler {
	return &MissionHandler{service: service}
}

type missionCompletedRequest struct {
	MissionID   string          `json:"mission_id"`
	BuyerUserID uint            `json:"buyer_user_id"`
	AgentUserID uint            `json:"agent_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	FeePercent  decimal.Decimal `json:"fee_percent"`
	EventID     string          `json:"event_id"`
}

// Complete pays out an escrowed mission reward to the agent and collects
// the platform fee. Retries with the same event id replay safely.
func (h *MissionHandler) Complete(c *fiber.Ctx) error {
	var req missionCompletedRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	res, err := h.service.ProcessCompleted(c.Context(), mission.CompletedRequest{
		MissionID:   req.MissionID,
		BuyerUserID: req.BuyerUserID,
		AgentUserID: req.AgentUserID,
		Amount:      req.Amount,
		FeePercent:  req.FeePercent,
		EventID:     req.EventID,
	})
	if err != nil {
		if errors.Is(err, mission.ErrInvalidParticipants) {
			return utils.BadRequest(c, err.Error())
		}
		return walletError(c, err)
	}
	return utils.Success(c, res)
}
