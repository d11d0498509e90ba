package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is the profile record collaborating surfaces read. PointsBalance is
// a denormalized mirror of the wallet's available balance, kept for fast
// display; the Wallet row stays the source of truth.
type User struct {
	gorm.Model
	Email         string          `gorm:"uniqueIndex;not null"`
	Password      string          `gorm:"not null"`
	DisplayName   string          `gorm:"not null"`
	Role          string          `gorm:"default:'user'"`
	Status        string          `gorm:"default:'active'"`
	PointsBalance decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	TokenVersion  int             `gorm:"default:1"`
}
