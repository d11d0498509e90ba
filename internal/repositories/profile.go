package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaintAgents/saintagent-sub009/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository mirrors the wallet's available balance onto the
// denormalized points_balance field of the user profile, the field
// display surfaces read. The wallet row remains the source of truth.
type ProfileRepository interface {
	FindByUserID(userID uint) (*models.User, error)
	UpdateBalanceField(ctx context.Context, userID uint, balance decimal.Decimal) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &user, nil
}

func (r *profileRepository) UpdateBalanceField(ctx context.Context, userID uint, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("points_balance", balance)
	if result.Error != nil {
		return fmt.Errorf("failed to mirror balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
