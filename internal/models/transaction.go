package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType classifies a ledger entry. The set is closed; new EARN_*/SPEND_*
// categories are added here together with their registry entries below.
type TxType string

const (
	TxTypeEarnMission      TxType = "EARN_MISSION"
	TxTypeEarnMarketSale   TxType = "EARN_MARKET_SALE"
	TxTypeEarnReward       TxType = "EARN_REWARD"
	TxTypeRefund           TxType = "REFUND"
	TxTypeAdjustmentCredit TxType = "ADJUSTMENT_CREDIT"
	TxTypeAdjustmentDebit  TxType = "ADJUSTMENT_DEBIT"
	TxTypeTransferIn       TxType = "TRANSFER_IN"
	TxTypeTransferOut      TxType = "TRANSFER_OUT"
	TxTypeLockFunds        TxType = "LOCK_FUNDS"
	TxTypeReleaseFunds     TxType = "RELEASE_FUNDS"
	TxTypeSpendFee         TxType = "SPEND_FEE"
)

// EarnCategory names the lifetime counter a credit type feeds.
type EarnCategory string

const (
	CategoryNone        EarnCategory = ""
	CategoryMission     EarnCategory = "mission"
	CategoryMarketplace EarnCategory = "marketplace"
	CategoryReward      EarnCategory = "reward"
)

// txTypeCategories resolves each credit type to its category counter once,
// at the type definition. Earning routing never pattern-matches type names
// at call time.
var txTypeCategories = map[TxType]EarnCategory{
	TxTypeEarnMission:    CategoryMission,
	TxTypeEarnMarketSale: CategoryMarketplace,
	TxTypeEarnReward:     CategoryReward,
}

// earningTypes lists every type that counts toward TotalEarned when
// credited.
var earningTypes = map[TxType]bool{
	TxTypeEarnMission:      true,
	TxTypeEarnMarketSale:   true,
	TxTypeEarnReward:       true,
	TxTypeAdjustmentCredit: true,
	TxTypeRefund:           true,
	TxTypeTransferIn:       true,
}

// Category returns the lifetime counter this type feeds, or CategoryNone.
func (t TxType) Category() EarnCategory {
	return txTypeCategories[t]
}

// CountsAsEarning reports whether a credit of this type increments
// TotalEarned.
func (t TxType) CountsAsEarning() bool {
	return earningTypes[t]
}

// TxDirection is the side of the entry relative to the actor.
type TxDirection string

const (
	DirectionCredit TxDirection = "CREDIT"
	DirectionDebit  TxDirection = "DEBIT"
)

// TxStatus marks whether the entry applied. A FAILED entry records a
// rejected debit attempt and affects no balances.
type TxStatus string

const (
	TxStatusCompleted TxStatus = "COMPLETED"
	TxStatusFailed    TxStatus = "FAILED"
)

// WalletTransaction is one ledger entry. Rows are append-only; the single
// permitted mutation is a transfer compensation downgrading its own
// TRANSFER_OUT row to FAILED, so completed entries always equal the
// balances they back.
//
// The composite unique index on (event_id, actor_user_id, direction)
// backs the idempotency guard at the storage layer: a retried operation
// that races past the read-side check fails the insert instead of
// double-applying.
type WalletTransaction struct {
	ID                 uint            `gorm:"primarykey" json:"-"`
	TxID               string          `gorm:"uniqueIndex;not null" json:"tx_id"`
	TxType             TxType          `gorm:"not null;index" json:"tx_type"`
	ActorUserID        uint            `gorm:"not null;index:idx_wallet_tx_event,unique,priority:2;index" json:"actor_user_id"`
	CounterpartyUserID *uint           `json:"counterparty_user_id,omitempty"`
	Amount             decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Direction          TxDirection     `gorm:"not null;index:idx_wallet_tx_event,unique,priority:3" json:"direction"`
	Status             TxStatus        `gorm:"not null;default:'COMPLETED'" json:"status"`
	RelatedObjectType  string          `json:"related_object_type,omitempty"`
	RelatedObjectID    string          `json:"related_object_id,omitempty"`
	Memo               string          `json:"memo,omitempty"`
	Metadata           JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	LinkedTxID         *string         `json:"linked_tx_id,omitempty"`
	EventID            string          `gorm:"index:idx_wallet_tx_event,unique,priority:1,where:event_id <> ''" json:"event_id,omitempty"`
	CreatedAt          time.Time       `json:"timestamp"`
}
