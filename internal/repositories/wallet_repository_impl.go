package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SaintAgents/saintagent-sub009/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	wallet := models.Wallet{
		UserID:                   userID,
		AvailableBalance:         decimal.Zero,
		LockedBalance:            decimal.Zero,
		TotalEarned:              decimal.Zero,
		TotalSpent:               decimal.Zero,
		TotalReceivedTransfers:   decimal.Zero,
		TotalSentTransfers:       decimal.Zero,
		TotalMissionEarnings:     decimal.Zero,
		TotalMarketplaceEarnings: decimal.Zero,
		TotalRewards:             decimal.Zero,
	}
	err := r.db.Where(models.Wallet{UserID: userID}).FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// Update is the single write path for wallet rows; every balance change
// passes through here and stamps UpdatedAt.
func (r *walletRepository) Update(wallet *models.Wallet) error {
	wallet.UpdatedAt = time.Now().UTC()
	if err := r.db.Save(wallet).Error; err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) CreateTransaction(tx *models.WalletTransaction) error {
	if tx.TxID == "" {
		tx.TxID = uuid.NewString()
	}
	if err := r.db.Create(tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}
	return nil
}

// UpdateTransactionStatus downgrades a ledger row's status. The only
// production caller is the transfer compensation path, which marks its
// own TRANSFER_OUT row FAILED when the receiver leg could not commit.
func (r *walletRepository) UpdateTransactionStatus(txID string, status models.TxStatus) error {
	result := r.db.Model(&models.WalletTransaction{}).
		Where("tx_id = ?", txID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("transaction %s not found", txID)
	}
	return nil
}

func (r *walletRepository) GetTransactions(ctx context.Context, userID uint, limit int) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("actor_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return txs, nil
}

func (r *walletRepository) HasEvent(eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.WalletTransaction{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check event id: %w", err)
	}
	return count > 0, nil
}

func (r *walletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&walletRepository{db: tx})
	})
}
