package repositories

import (
	"context"
	"errors"

	errs "github.com/SaintAgents/saintagent-sub009/internal/errors"
	"github.com/SaintAgents/saintagent-sub009/internal/models"
)

var (
	// ErrWalletNotFound is the shared domain error so callers can branch on
	// it without importing internal/errors.
	ErrWalletNotFound = errs.ErrWalletNotFound
	// ErrDuplicateEvent is returned when a ledger insert trips the unique
	// index on (event_id, actor, direction) — a concurrent retry of the
	// same logical operation won the race.
	ErrDuplicateEvent = errors.New("event already recorded")
)

// WalletRepository defines the storage operations the wallet engine needs.
// Wallet rows are never deleted; ledger rows are append-only, except that
// a transfer compensation may downgrade its own debit row to FAILED.
type WalletRepository interface {
	// Account store
	GetOrCreate(userID uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	Update(wallet *models.Wallet) error

	// Ledger writer
	CreateTransaction(tx *models.WalletTransaction) error
	UpdateTransactionStatus(txID string, status models.TxStatus) error
	GetTransactions(ctx context.Context, userID uint, limit int) ([]models.WalletTransaction, error)

	// Idempotency guard: true iff any ledger row carries eventID.
	HasEvent(eventID string) (bool, error)

	ExecuteInTransaction(fn func(WalletRepository) error) error
}
