package wallet

import (
	"github.com/SaintAgents/saintagent-sub009/internal/models"
	"github.com/shopspring/decimal"
)

// RelatedObject links a ledger entry to the business object that caused
// the movement (e.g. a mission).
type RelatedObject struct {
	Type string
	ID   string
}

// OperationRequest describes a single-account credit or debit.
type OperationRequest struct {
	UserID   uint
	Amount   decimal.Decimal
	TxType   models.TxType
	Memo     string
	Related  *RelatedObject
	EventID  string
	Metadata map[string]interface{}
}

// TransferRequest moves funds between two distinct accounts.
type TransferRequest struct {
	FromUserID uint
	ToUserID   uint
	Amount     decimal.Decimal
	Memo       string
	EventID    string
}

// LockRequest moves funds from the available balance into escrow.
type LockRequest struct {
	UserID  uint
	Amount  decimal.Decimal
	Memo    string
	Related *RelatedObject
	EventID string
}

// ReleaseRequest releases escrowed funds. A zero ToUserID (or one equal
// to FromUserID) returns the funds to the holder's available balance;
// a distinct ToUserID pays them out to that account.
type ReleaseRequest struct {
	FromUserID uint
	ToUserID   uint
	Amount     decimal.Decimal
	Memo       string
	Related    *RelatedObject
	EventID    string
}

// AdjustmentRequest is an administrative balance override.
type AdjustmentRequest struct {
	UserID    uint
	Amount    decimal.Decimal
	Direction string
	Memo      string
	AdminNote string
	EventID   string
}

// Caller identifies who invoked an operation. Only Adjustment inspects
// the role.
type Caller struct {
	UserID uint
	Role   string
}

// OperationResult is the outcome of a single-account operation. A replay
// of an already-processed event carries the current wallet, an empty
// transaction list and AlreadyProcessed set — that empty list is the only
// way a replay differs from a first-time success.
type OperationResult struct {
	Wallet           *models.Wallet              `json:"wallet"`
	Transactions     []models.WalletTransaction  `json:"transactions"`
	Summary          string                      `json:"summary"`
	AlreadyProcessed bool                        `json:"already_processed,omitempty"`
}

// TransferResult is the outcome of a Transfer.
type TransferResult struct {
	FromWallet       *models.Wallet              `json:"from_wallet"`
	ToWallet         *models.Wallet              `json:"to_wallet"`
	Transactions     []models.WalletTransaction  `json:"transactions"`
	Summary          string                      `json:"summary"`
	AlreadyProcessed bool                        `json:"already_processed,omitempty"`
}

// ReleaseResult is the outcome of a ReleaseFunds call.
type ReleaseResult struct {
	Transactions     []models.WalletTransaction  `json:"transactions"`
	Summary          string                      `json:"summary"`
	AlreadyProcessed bool                        `json:"already_processed,omitempty"`
}
