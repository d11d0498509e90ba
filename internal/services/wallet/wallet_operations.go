package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/SaintAgents/saintagent-sub009/internal/models"
	"github.com/SaintAgents/saintagent-sub009/internal/repositories"
	"github.com/SaintAgents/saintagent-sub009/internal/utils/money"
	"github.com/shopspring/decimal"
)

// Credit adds a normalized amount to the user's available balance and
// routes it into the category counters resolved from the transaction
// type. One COMPLETED CREDIT ledger row is written per first-time call.
func (s *service) Credit(ctx context.Context, req OperationRequest) (*OperationResult, error) {
	amount := money.Normalize(req.Amount)
	if !amount.IsPositive() {
		s.metrics.RecordError("credit", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	release := s.locks.Acquire(req.UserID)
	defer release()

	return s.creditLocked(ctx, req, amount)
}

// creditLocked assumes the account lock is held.
func (s *service) creditLocked(ctx context.Context, req OperationRequest, amount decimal.Decimal) (*OperationResult, error) {
	if replay, res, err := s.replayResult(ctx, req.UserID, req.EventID); err != nil {
		return nil, err
	} else if replay {
		return res, nil
	}

	var wallet *models.Wallet
	entry := s.newLedgerEntry(req, amount, models.DirectionCredit)

	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.UserID)
		if err != nil {
			return err
		}

		w.AvailableBalance = money.Normalize(w.AvailableBalance.Add(amount))
		if req.TxType.CountsAsEarning() {
			w.TotalEarned = money.Normalize(w.TotalEarned.Add(amount))
		}
		switch req.TxType.Category() {
		case models.CategoryMission:
			w.TotalMissionEarnings = money.Normalize(w.TotalMissionEarnings.Add(amount))
		case models.CategoryMarketplace:
			w.TotalMarketplaceEarnings = money.Normalize(w.TotalMarketplaceEarnings.Add(amount))
		case models.CategoryReward:
			w.TotalRewards = money.Normalize(w.TotalRewards.Add(amount))
		}

		if err := r.CreateTransaction(entry); err != nil {
			return err
		}
		if err := r.Update(w); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEvent) {
		// A concurrent retry won the insert race; report it as a replay.
		_, res, rerr := s.replayResult(ctx, req.UserID, req.EventID)
		if rerr != nil {
			return nil, rerr
		}
		return res, nil
	}
	if err != nil {
		s.metrics.RecordError("credit", "storage")
		return nil, fmt.Errorf("credit failed: %w", err)
	}

	s.mirrorBalance(ctx, wallet)
	s.metrics.RecordTransaction(string(req.TxType), amount)

	return &OperationResult{
		Wallet:       wallet,
		Transactions: []models.WalletTransaction{*entry},
		Summary:      fmt.Sprintf("Credited %s to user %d (%s)", amount, req.UserID, req.TxType),
	}, nil
}

// Debit subtracts a normalized amount from the user's available balance.
// A rejected debit still writes a FAILED ledger row so the attempt is
// auditable, but no balances change.
func (s *service) Debit(ctx context.Context, req OperationRequest) (*OperationResult, error) {
	amount := money.Normalize(req.Amount)
	if !amount.IsPositive() {
		s.metrics.RecordError("debit", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	release := s.locks.Acquire(req.UserID)
	defer release()

	return s.debitLocked(ctx, req, amount)
}

// debitLocked assumes the account lock is held.
func (s *service) debitLocked(ctx context.Context, req OperationRequest, amount decimal.Decimal) (*OperationResult, error) {
	if replay, res, err := s.replayResult(ctx, req.UserID, req.EventID); err != nil {
		return nil, err
	} else if replay {
		return res, nil
	}

	wallet, err := s.repo.GetOrCreate(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("debit failed: %w", err)
	}

	if wallet.AvailableBalance.LessThan(amount) {
		failed := s.newLedgerEntry(req, amount, models.DirectionDebit)
		failed.Status = models.TxStatusFailed
		if failed.Memo == "" {
			failed.Memo = InsufficientFundsMemo
		}
		if err := s.repo.CreateTransaction(failed); err != nil && !errors.Is(err, repositories.ErrDuplicateEvent) {
			log.Printf("failed to record rejected debit for user %d: %v", req.UserID, err)
		}
		s.metrics.RecordError("debit", "insufficient_balance")
		return nil, ErrInsufficientBalance
	}

	entry := s.newLedgerEntry(req, amount, models.DirectionDebit)
	err = s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.UserID)
		if err != nil {
			return err
		}
		if w.AvailableBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		w.AvailableBalance = money.Normalize(w.AvailableBalance.Sub(amount))
		w.TotalSpent = money.Normalize(w.TotalSpent.Add(amount))

		if err := r.CreateTransaction(entry); err != nil {
			return err
		}
		if err := r.Update(w); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEvent) {
		_, res, rerr := s.replayResult(ctx, req.UserID, req.EventID)
		if rerr != nil {
			return nil, rerr
		}
		return res, nil
	}
	if errors.Is(err, ErrInsufficientBalance) {
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		s.metrics.RecordError("debit", "storage")
		return nil, fmt.Errorf("debit failed: %w", err)
	}

	s.mirrorBalance(ctx, wallet)
	s.metrics.RecordTransaction(string(req.TxType), amount)

	return &OperationResult{
		Wallet:       wallet,
		Transactions: []models.WalletTransaction{*entry},
		Summary:      fmt.Sprintf("Debited %s from user %d (%s)", amount, req.UserID, req.TxType),
	}, nil
}

// newLedgerEntry builds an immutable ledger row from a request. The tx id
// is generated by the repository when left empty.
func (s *service) newLedgerEntry(req OperationRequest, amount decimal.Decimal, direction models.TxDirection) *models.WalletTransaction {
	entry := &models.WalletTransaction{
		TxType:      req.TxType,
		ActorUserID: req.UserID,
		Amount:      amount,
		Direction:   direction,
		Status:      models.TxStatusCompleted,
		Memo:        req.Memo,
		Metadata:    models.NewJSON(req.Metadata),
		EventID:     req.EventID,
	}
	if req.Related != nil {
		entry.RelatedObjectType = req.Related.Type
		entry.RelatedObjectID = req.Related.ID
	}
	return entry
}

// replayResult answers the idempotency check. A true first value means
// the event already produced ledger entries and res carries the
// recognizable already-processed outcome: current wallet, empty
// transaction list.
func (s *service) replayResult(ctx context.Context, userID uint, eventID string) (bool, *OperationResult, error) {
	if eventID == "" {
		return false, nil, nil
	}
	processed, err := s.repo.HasEvent(eventID)
	if err != nil {
		return false, nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !processed {
		return false, nil, nil
	}
	wallet, err := s.repo.GetOrCreate(userID)
	if err != nil {
		return false, nil, err
	}
	return true, &OperationResult{
		Wallet:           wallet,
		Transactions:     []models.WalletTransaction{},
		Summary:          fmt.Sprintf("Event %s already processed", eventID),
		AlreadyProcessed: true,
	}, nil
}

// mirrorBalance pushes the available balance to the denormalized profile
// field and drops stale cache entries. The mirror is display-only, so a
// failure here is logged but does not fail the operation.
func (s *service) mirrorBalance(ctx context.Context, wallet *models.Wallet) {
	if err := s.profiles.UpdateBalanceField(ctx, wallet.UserID, wallet.AvailableBalance); err != nil {
		s.metrics.RecordError("mirror", "update_failed")
		log.Printf("failed to mirror balance for user %d: %v", wallet.UserID, err)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, wallet.UserID); err != nil {
			log.Printf("failed to invalidate wallet cache for user %d: %v", wallet.UserID, err)
		}
	}
}
