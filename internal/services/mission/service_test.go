package mission

import (
	"context"
	"sync"
	"testing"

	"github.com/SaintAgents/saintagent-sub009/internal/models"
	"github.com/SaintAgents/saintagent-sub009/internal/repositories"
	"github.com/SaintAgents/saintagent-sub009/internal/services/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWalletService struct {
	mock.Mock
}

func (m *mockWalletService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletService) LookupWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletService) ListTransactions(ctx context.Context, userID uint, limit int) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.WalletTransaction), args.Error(1)
}

func (m *mockWalletService) Credit(ctx context.Context, req wallet.OperationRequest) (*wallet.OperationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.OperationResult), args.Error(1)
}

func (m *mockWalletService) Debit(ctx context.Context, req wallet.OperationRequest) (*wallet.OperationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.OperationResult), args.Error(1)
}

func (m *mockWalletService) Transfer(ctx context.Context, req wallet.TransferRequest) (*wallet.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.TransferResult), args.Error(1)
}

func (m *mockWalletService) LockFunds(ctx context.Context, req wallet.LockRequest) (*wallet.OperationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.OperationResult), args.Error(1)
}

func (m *mockWalletService) ReleaseFunds(ctx context.Context, req wallet.ReleaseRequest) (*wallet.ReleaseResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.ReleaseResult), args.Error(1)
}

func (m *mockWalletService) Refund(ctx context.Context, req wallet.OperationRequest) (*wallet.OperationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.OperationResult), args.Error(1)
}

func (m *mockWalletService) Adjustment(ctx context.Context, caller wallet.Caller, req wallet.AdjustmentRequest) (*wallet.OperationResult, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.OperationResult), args.Error(1)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// memWalletRepo is a minimal in-memory WalletRepository for settling a
// mission against the real wallet engine.
type memWalletRepo struct {
	mu           sync.Mutex
	wallets      map[uint]models.Wallet
	transactions []models.WalletTransaction
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: make(map[uint]models.Wallet)}
}

func (m *memWalletRepo) GetOrCreate(userID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		w = models.Wallet{ID: userID, UserID: userID}
		m.wallets[userID] = w
	}
	copied := w
	return &copied, nil
}

func (m *memWalletRepo) GetByUserID(userID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	copied := w
	return &copied, nil
}

func (m *memWalletRepo) Update(wallet *models.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.UserID] = *wallet
	return nil
}

func (m *memWalletRepo) CreateTransaction(tx *models.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.EventID != "" {
		for _, existing := range m.transactions {
			if existing.EventID == tx.EventID &&
				existing.ActorUserID == tx.ActorUserID &&
				existing.Direction == tx.Direction {
				return repositories.ErrDuplicateEvent
			}
		}
	}
	if tx.TxID == "" {
		tx.TxID = uuid.NewString()
	}
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *memWalletRepo) UpdateTransactionStatus(txID string, status models.TxStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.transactions {
		if m.transactions[i].TxID == txID {
			m.transactions[i].Status = status
			return nil
		}
	}
	return assert.AnError
}

func (m *memWalletRepo) GetTransactions(_ context.Context, userID uint, limit int) ([]models.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WalletTransaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].ActorUserID == userID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}

func (m *memWalletRepo) HasEvent(eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if eventID == "" {
		return false, nil
	}
	for _, tx := range m.transactions {
		if tx.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memWalletRepo) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	return fn(m)
}

type memProfileRepo struct{}

func (memProfileRepo) FindByUserID(uint) (*models.User, error) {
	return &models.User{}, nil
}

func (memProfileRepo) UpdateBalanceField(context.Context, uint, decimal.Decimal) error {
	return nil
}

func TestProcessCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("releases gross and collects fee", func(t *testing.T) {
		mockWallets := new(mockWalletService)
		svc := NewService(mockWallets)

		mockWallets.On("ReleaseFunds", ctx, mock.MatchedBy(func(req wallet.ReleaseRequest) bool {
			return req.FromUserID == 1 && req.ToUserID == 2 &&
				req.Amount.Equal(dec("100")) && req.EventID == "mission-42-completed"
		})).Return(&wallet.ReleaseResult{
			Transactions: []models.WalletTransaction{{TxType: models.TxTypeReleaseFunds}, {TxType: models.TxTypeEarnMission}},
		}, nil)

		mockWallets.On("Debit", ctx, mock.MatchedBy(func(req wallet.OperationRequest) bool {
			return req.UserID == 2 && req.Amount.Equal(dec("10")) &&
				req.TxType == models.TxTypeSpendFee && req.EventID == "mission-42-completed:fee"
		})).Return(&wallet.OperationResult{
			Transactions: []models.WalletTransaction{{TxType: models.TxTypeSpendFee}},
		}, nil)

		mockWallets.On("GetWallet", ctx, uint(1)).Return(&models.Wallet{UserID: 1}, nil)
		mockWallets.On("GetWallet", ctx, uint(2)).Return(&models.Wallet{UserID: 2}, nil)

		res, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "42",
			BuyerUserID: 1,
			AgentUserID: 2,
			Amount:      dec("100"),
			FeePercent:  dec("10"),
			EventID:     "mission-42-completed",
		})
		require.NoError(t, err)
		assert.True(t, res.Fee.Equal(dec("10")))
		assert.True(t, res.AgentNet.Equal(dec("90")))
		assert.Len(t, res.Transactions, 3)
		assert.False(t, res.AlreadyProcessed)
		mockWallets.AssertExpectations(t)
	})

	t.Run("zero fee percent skips the fee debit", func(t *testing.T) {
		mockWallets := new(mockWalletService)
		svc := NewService(mockWallets)

		mockWallets.On("ReleaseFunds", ctx, mock.Anything).Return(&wallet.ReleaseResult{
			Transactions: []models.WalletTransaction{{}, {}},
		}, nil)
		mockWallets.On("GetWallet", ctx, mock.Anything).Return(&models.Wallet{}, nil)

		res, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "7",
			BuyerUserID: 1,
			AgentUserID: 2,
			Amount:      dec("50"),
			FeePercent:  dec("0"),
		})
		require.NoError(t, err)
		assert.True(t, res.Fee.IsZero())
		assert.True(t, res.AgentNet.Equal(dec("50")))
		mockWallets.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything)
	})

	t.Run("fee rounds to four decimal places", func(t *testing.T) {
		mockWallets := new(mockWalletService)
		svc := NewService(mockWallets)

		mockWallets.On("ReleaseFunds", ctx, mock.Anything).Return(&wallet.ReleaseResult{}, nil)
		mockWallets.On("Debit", ctx, mock.MatchedBy(func(req wallet.OperationRequest) bool {
			// 33.3333 * 7.5% = 2.49999750 -> 2.5000
			return req.Amount.Equal(dec("2.5"))
		})).Return(&wallet.OperationResult{}, nil)
		mockWallets.On("GetWallet", ctx, mock.Anything).Return(&models.Wallet{}, nil)

		res, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "9",
			BuyerUserID: 1,
			AgentUserID: 2,
			Amount:      dec("33.3333"),
			FeePercent:  dec("7.5"),
		})
		require.NoError(t, err)
		assert.True(t, res.Fee.Equal(dec("2.5")), "got %s", res.Fee)
	})

	t.Run("replay of both legs reports already processed", func(t *testing.T) {
		mockWallets := new(mockWalletService)
		svc := NewService(mockWallets)

		mockWallets.On("ReleaseFunds", ctx, mock.Anything).Return(&wallet.ReleaseResult{AlreadyProcessed: true}, nil)
		mockWallets.On("Debit", ctx, mock.Anything).Return(&wallet.OperationResult{AlreadyProcessed: true}, nil)
		mockWallets.On("GetWallet", ctx, mock.Anything).Return(&models.Wallet{}, nil)

		res, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "42",
			BuyerUserID: 1,
			AgentUserID: 2,
			Amount:      dec("100"),
			FeePercent:  dec("10"),
			EventID:     "mission-42-completed",
		})
		require.NoError(t, err)
		assert.True(t, res.AlreadyProcessed)
	})

	t.Run("settles end to end against the wallet engine", func(t *testing.T) {
		repo := newMemWalletRepo()
		wallets := wallet.NewService(repo, memProfileRepo{}, nil, nil)
		svc := NewService(wallets)

		// Buyer starts with 200 in escrow for the mission.
		_, err := wallets.Credit(ctx, wallet.OperationRequest{
			UserID: 1, Amount: dec("200"), TxType: models.TxTypeEarnReward,
		})
		require.NoError(t, err)
		_, err = wallets.LockFunds(ctx, wallet.LockRequest{UserID: 1, Amount: dec("200")})
		require.NoError(t, err)

		res, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "88",
			BuyerUserID: 1,
			AgentUserID: 2,
			Amount:      dec("100"),
			FeePercent:  dec("10"),
			EventID:     "mission-88-completed",
		})
		require.NoError(t, err)
		assert.False(t, res.AlreadyProcessed)
		assert.True(t, res.Fee.Equal(dec("10")))
		assert.True(t, res.AgentNet.Equal(dec("90")))

		require.Len(t, res.Transactions, 3)
		assert.Equal(t, models.TxTypeReleaseFunds, res.Transactions[0].TxType)
		assert.Equal(t, models.DirectionDebit, res.Transactions[0].Direction)
		assert.Equal(t, models.TxTypeEarnMission, res.Transactions[1].TxType)
		assert.Equal(t, models.DirectionCredit, res.Transactions[1].Direction)
		assert.Equal(t, models.TxTypeSpendFee, res.Transactions[2].TxType)
		assert.Equal(t, models.DirectionDebit, res.Transactions[2].Direction)

		assert.True(t, res.BuyerWallet.LockedBalance.Equal(dec("100")))
		assert.True(t, res.AgentWallet.AvailableBalance.Equal(dec("90")))
		assert.True(t, res.AgentWallet.TotalEarned.Equal(dec("100")))
		assert.True(t, res.AgentWallet.TotalSpent.Equal(dec("10")))

		// Settling the same mission event again changes nothing.
		replay, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "88",
			BuyerUserID: 1,
			AgentUserID: 2,
			Amount:      dec("100"),
			FeePercent:  dec("10"),
			EventID:     "mission-88-completed",
		})
		require.NoError(t, err)
		assert.True(t, replay.AlreadyProcessed)
		assert.True(t, replay.BuyerWallet.LockedBalance.Equal(dec("100")))
		assert.True(t, replay.AgentWallet.AvailableBalance.Equal(dec("90")))
	})

	t.Run("rejects same buyer and agent", func(t *testing.T) {
		svc := NewService(new(mockWalletService))

		_, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "1",
			BuyerUserID: 3,
			AgentUserID: 3,
			Amount:      dec("10"),
		})
		assert.ErrorIs(t, err, ErrInvalidParticipants)
	})

	t.Run("propagates insufficient escrow", func(t *testing.T) {
		mockWallets := new(mockWalletService)
		svc := NewService(mockWallets)

		mockWallets.On("ReleaseFunds", ctx, mock.Anything).Return(nil, wallet.ErrInsufficientBalance)

		_, err := svc.ProcessCompleted(ctx, CompletedRequest{
			MissionID:   "1",
			BuyerUserID: 1,
			AgentUserID: 2,
			Amount:      dec("10"),
		})
		assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	})
}
