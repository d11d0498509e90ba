// Package mission orchestrates mission settlement on top of the wallet
// engine: the buyer's escrowed reward is paid out to the seller and the
// platform fee is collected from the seller's balance.
package mission

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaintAgents/saintagent-sub009/internal/models"
	"github.com/SaintAgents/saintagent-sub009/internal/services/wallet"
	"github.com/SaintAgents/saintagent-sub009/internal/utils/money"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = wallet.ErrInvalidAmount
	ErrInvalidParticipants = errors.New("mission buyer and agent must differ")
)

// CompletedRequest describes a finished mission whose escrowed reward is
// ready for payout.
type CompletedRequest struct {
	MissionID   string
	BuyerUserID uint
	AgentUserID uint
	Amount      decimal.Decimal
	FeePercent  decimal.Decimal
	EventID     string
}

// PayoutResult aggregates the settlement outcome. Fee and AgentNet are
// reporting figures; the ledger rows in Transactions are authoritative.
type PayoutResult struct {
	BuyerWallet      *models.Wallet             `json:"buyer_wallet"`
	AgentWallet      *models.Wallet             `json:"agent_wallet"`
	Transactions     []models.WalletTransaction `json:"transactions"`
	Summary          string                     `json:"summary"`
	Fee              decimal.Decimal            `json:"fee"`
	AgentNet         decimal.Decimal            `json:"agent_net"`
	AlreadyProcessed bool                       `json:"already_processed,omitempty"`
}

// Service settles completed missions.
type Service interface {
	ProcessCompleted(ctx context.Context, req CompletedRequest) (*PayoutResult, error)
}

type service struct {
	wallets wallet.Service
}

func NewService(wallets wallet.Service) Service {
	if wallets == nil {
		panic("wallet service is required")
	}
	return &service{wallets: wallets}
}

// ProcessCompleted releases the buyer's escrowed gross amount to the
// agent, then collects the platform fee from the agent's balance. The
// two legs are independently idempotent: the release replays under the
// mission event id, the fee debit under a derived one, so a retry after
// a partial failure converges instead of double-charging.
func (s *service) ProcessCompleted(ctx context.Context, req CompletedRequest) (*PayoutResult, error) {
	amount := money.Normalize(req.Amount)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.BuyerUserID == req.AgentUserID {
		return nil, ErrInvalidParticipants
	}

	fee := money.Normalize(amount.Mul(req.FeePercent).Div(decimal.NewFromInt(100)))
	if fee.IsNegative() {
		return nil, ErrInvalidAmount
	}
	agentNet := amount.Sub(fee)

	related := &wallet.RelatedObject{Type: "mission", ID: req.MissionID}

	release, err := s.wallets.ReleaseFunds(ctx, wallet.ReleaseRequest{
		FromUserID: req.BuyerUserID,
		ToUserID:   req.AgentUserID,
		Amount:     amount,
		Memo:       fmt.Sprintf("Mission %s payout", req.MissionID),
		Related:    related,
		EventID:    req.EventID,
	})
	if err != nil {
		return nil, fmt.Errorf("mission payout failed: %w", err)
	}

	transactions := release.Transactions
	feeProcessed := true
	if fee.IsPositive() {
		feeEventID := ""
		if req.EventID != "" {
			feeEventID = req.EventID + ":fee"
		}
		feeRes, err := s.wallets.Debit(ctx, wallet.OperationRequest{
			UserID:  req.AgentUserID,
			Amount:  fee,
			TxType:  models.TxTypeSpendFee,
			Memo:    fmt.Sprintf("Mission %s platform fee", req.MissionID),
			Related: related,
			EventID: feeEventID,
		})
		if err != nil {
			return nil, fmt.Errorf("mission fee collection failed: %w", err)
		}
		transactions = append(transactions, feeRes.Transactions...)
		feeProcessed = feeRes.AlreadyProcessed
	}

	buyerWallet, err := s.wallets.GetWallet(ctx, req.BuyerUserID)
	if err != nil {
		return nil, err
	}
	agentWallet, err := s.wallets.GetWallet(ctx, req.AgentUserID)
	if err != nil {
		return nil, err
	}

	return &PayoutResult{
		BuyerWallet:  buyerWallet,
		AgentWallet:  agentWallet,
		Transactions: transactions,
		Summary: fmt.Sprintf("Mission %s settled: %s gross to user %d, %s fee",
			req.MissionID, amount, req.AgentUserID, fee),
		Fee:              fee,
		AgentNet:         agentNet,
		AlreadyProcessed: release.AlreadyProcessed && feeProcessed,
	}, nil
}
