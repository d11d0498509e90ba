package wallet

import (
	"context"

	"github.com/SaintAgents/saintagent-sub009/internal/models"
)

// Service is the public operation layer of the points wallet engine.
type Service interface {
	// Reads
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	// LookupWallet returns the wallet without creating one, failing with
	// ErrWalletNotFound for users that never held a balance.
	LookupWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	ListTransactions(ctx context.Context, userID uint, limit int) ([]models.WalletTransaction, error)

	// Balance mutations
	Credit(ctx context.Context, req OperationRequest) (*OperationResult, error)
	Debit(ctx context.Context, req OperationRequest) (*OperationResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)

	// Escrow
	LockFunds(ctx context.Context, req LockRequest) (*OperationResult, error)
	ReleaseFunds(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error)

	// Conveniences
	Refund(ctx context.Context, req OperationRequest) (*OperationResult, error)
	Adjustment(ctx context.Context, caller Caller, req AdjustmentRequest) (*OperationResult, error)
}

// CacheOperator is the read-side cache the service keeps coherent.
type CacheOperator interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, bool, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}
