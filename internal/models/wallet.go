package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the spendable and escrowed balances for one user, plus
// lifetime counters broken down by category. One row per user, created
// lazily on first reference and never deleted.
//
// AvailableBalance and LockedBalance must stay >= 0 at all times. The
// lifetime counters are monotonically non-decreasing.
type Wallet struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	UserID           uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"available_balance"`
	LockedBalance    decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"locked_balance"`

	TotalEarned              decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total_earned"`
	TotalSpent               decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total_spent"`
	TotalReceivedTransfers   decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total_received_transfers"`
	TotalSentTransfers       decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total_sent_transfers"`
	TotalMissionEarnings     decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total_mission_earnings"`
	TotalMarketplaceEarnings decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total_marketplace_earnings"`
	TotalRewards             decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total_rewards"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
