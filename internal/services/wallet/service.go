package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/SaintAgents/saintagent-sub009/internal/models"
	"github.com/SaintAgents/saintagent-sub009/internal/repositories"
	"github.com/SaintAgents/saintagent-sub009/internal/utils/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	repo     repositories.WalletRepository
	profiles repositories.ProfileRepository
	cache    CacheOperator
	metrics  MetricsCollector
	locks    *accountLocks
}

// NewService creates a new wallet service.
func NewService(
	repo repositories.WalletRepository,
	profiles repositories.ProfileRepository,
	cache CacheOperator,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if profiles == nil {
		panic("profile repository is required")
	}
	// Metrics and cache are optional.
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:     repo,
		profiles: profiles,
		cache:    cache,
		metrics:  metrics,
		locks:    newAccountLocks(),
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, found, err := s.cache.GetWallet(ctx, userID); err == nil && found {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetOrCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheWallet(ctx, wallet); err != nil {
			log.Printf("failed to cache wallet for user %d: %v", userID, err)
		}
	}
	return wallet, nil
}

// LookupWallet is the read path for administrative inspection: unlike
// GetWallet it never creates a row.
func (s *service) LookupWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, found, err := s.cache.GetWallet(ctx, userID); err == nil && found {
			return wallet, nil
		}
	}
	return s.repo.GetByUserID(userID)
}

func (s *service) ListTransactions(ctx context.Context, userID uint, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	if limit > MaxTransactionLimit {
		limit = MaxTransactionLimit
	}
	return s.repo.GetTransactions(ctx, userID, limit)
}

// Transfer moves funds between two distinct accounts. The sender debit
// and receiver credit are two independently-committed writes, each
// carrying its ledger row in the same commit as its balance change. If
// the receiver side fails after the sender leg committed, a compensating
// write restores the sender and downgrades the orphaned TRANSFER_OUT row
// to FAILED before the original error is re-raised. A failed
// compensation surfaces as ErrCompensationFailed and must alert.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	amount := money.Normalize(req.Amount)
	if !amount.IsPositive() {
		s.metrics.RecordError("transfer", "invalid_amount")
		return nil, ErrInvalidAmount
	}
	if req.FromUserID == req.ToUserID {
		s.metrics.RecordError("transfer", "self_transfer")
		return nil, ErrInvalidTransfer
	}

	release := s.locks.Acquire(req.FromUserID, req.ToUserID)
	defer release()

	if req.EventID != "" {
		processed, err := s.repo.HasEvent(req.EventID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if processed {
			return s.transferReplay(req)
		}
	}

	// The two cross-linked ledger rows share the logical event id and are
	// built up front so each leg can commit its row with its balance write.
	outID := uuid.NewString()
	inID := uuid.NewString()
	outEntry := models.WalletTransaction{
		TxID:               outID,
		TxType:             models.TxTypeTransferOut,
		ActorUserID:        req.FromUserID,
		CounterpartyUserID: &req.ToUserID,
		Amount:             amount,
		Direction:          models.DirectionDebit,
		Status:             models.TxStatusCompleted,
		Memo:               req.Memo,
		LinkedTxID:         &inID,
		EventID:            req.EventID,
	}
	inEntry := models.WalletTransaction{
		TxID:               inID,
		TxType:             models.TxTypeTransferIn,
		ActorUserID:        req.ToUserID,
		CounterpartyUserID: &req.FromUserID,
		Amount:             amount,
		Direction:          models.DirectionCredit,
		Status:             models.TxStatusCompleted,
		Memo:               req.Memo,
		LinkedTxID:         &outID,
		EventID:            req.EventID,
	}

	// Phase 1: debit the sender and write the TRANSFER_OUT row in one
	// commit. A concurrent retry of the same event that slipped past the
	// read-side check fails the row insert here, before any balance moves.
	var sender *models.Wallet
	var prevAvailable, prevSpent, prevSent decimal.Decimal
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.FromUserID)
		if err != nil {
			return err
		}
		if w.AvailableBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		prevAvailable = w.AvailableBalance
		prevSpent = w.TotalSpent
		prevSent = w.TotalSentTransfers

		w.AvailableBalance = money.Normalize(w.AvailableBalance.Sub(amount))
		w.TotalSpent = money.Normalize(w.TotalSpent.Add(amount))
		w.TotalSentTransfers = money.Normalize(w.TotalSentTransfers.Add(amount))

		if err := r.CreateTransaction(&outEntry); err != nil {
			return err
		}
		if err := r.Update(w); err != nil {
			return err
		}
		sender = w
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEvent) {
		return s.transferReplay(req)
	}
	if errors.Is(err, ErrInsufficientBalance) {
		s.metrics.RecordError("transfer", "insufficient_balance")
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		s.metrics.RecordError("transfer", "sender_update")
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	// Phase 2: credit the receiver and write the TRANSFER_IN row in a
	// second commit, compensating the sender leg on failure.
	var receiver *models.Wallet
	err = s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.ToUserID)
		if err != nil {
			return err
		}
		w.AvailableBalance = money.Normalize(w.AvailableBalance.Add(amount))
		w.TotalEarned = money.Normalize(w.TotalEarned.Add(amount))
		w.TotalReceivedTransfers = money.Normalize(w.TotalReceivedTransfers.Add(amount))

		if err := r.CreateTransaction(&inEntry); err != nil {
			return err
		}
		if err := r.Update(w); err != nil {
			return err
		}
		receiver = w
		return nil
	})
	if err != nil {
		// Restore the sender and downgrade the orphaned debit row to
		// FAILED so only completed entries back the balances.
		cErr := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
			w, err := r.GetOrCreate(req.FromUserID)
			if err != nil {
				return err
			}
			w.AvailableBalance = prevAvailable
			w.TotalSpent = prevSpent
			w.TotalSentTransfers = prevSent

			if err := r.UpdateTransactionStatus(outEntry.TxID, models.TxStatusFailed); err != nil {
				return err
			}
			return r.Update(w)
		})
		if cErr != nil {
			s.metrics.RecordCompensationFailure("transfer", req.FromUserID)
			log.Printf("CRITICAL: transfer compensation failed for user %d: %v (original error: %v)",
				req.FromUserID, cErr, err)
			return nil, fmt.Errorf("%w: user %d debit of %s not reversed: %v (original: %v)",
				ErrCompensationFailed, req.FromUserID, amount, cErr, err)
		}
		outEntry.Status = models.TxStatusFailed
		s.metrics.RecordError("transfer", "receiver_update")
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	s.mirrorBalance(ctx, sender)
	s.mirrorBalance(ctx, receiver)
	s.metrics.RecordTransaction(string(models.TxTypeTransferOut), amount)

	return &TransferResult{
		FromWallet:   sender,
		ToWallet:     receiver,
		Transactions: []models.WalletTransaction{outEntry, inEntry},
		Summary:      fmt.Sprintf("Transferred %s from user %d to user %d", amount, req.FromUserID, req.ToUserID),
	}, nil
}

func (s *service) transferReplay(req TransferRequest) (*TransferResult, error) {
	sender, err := s.repo.GetOrCreate(req.FromUserID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.repo.GetOrCreate(req.ToUserID)
	if err != nil {
		return nil, err
	}
	return &TransferResult{
		FromWallet:       sender,
		ToWallet:         receiver,
		Transactions:     []models.WalletTransaction{},
		Summary:          fmt.Sprintf("Event %s already processed", req.EventID),
		AlreadyProcessed: true,
	}, nil
}

// LockFunds moves an amount from the available balance into escrow. The
// DEBIT direction on the ledger row denotes removal from the spendable
// balance, not from total holdings.
func (s *service) LockFunds(ctx context.Context, req LockRequest) (*OperationResult, error) {
	amount := money.Normalize(req.Amount)
	if !amount.IsPositive() {
		s.metrics.RecordError("lock_funds", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	release := s.locks.Acquire(req.UserID)
	defer release()

	if replay, res, err := s.replayResult(ctx, req.UserID, req.EventID); err != nil {
		return nil, err
	} else if replay {
		return res, nil
	}

	opReq := OperationRequest{
		UserID:  req.UserID,
		TxType:  models.TxTypeLockFunds,
		Memo:    req.Memo,
		Related: req.Related,
		EventID: req.EventID,
	}
	entry := s.newLedgerEntry(opReq, amount, models.DirectionDebit)

	var wallet *models.Wallet
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.UserID)
		if err != nil {
			return err
		}
		if w.AvailableBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		w.AvailableBalance = money.Normalize(w.AvailableBalance.Sub(amount))
		w.LockedBalance = money.Normalize(w.LockedBalance.Add(amount))

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
		s.metrics.RecordError("lock_funds", "insufficient_balance")
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		s.metrics.RecordError("lock_funds", "storage")
		return nil, fmt.Errorf("lock funds failed: %w", err)
	}

	s.mirrorBalance(ctx, wallet)
	s.metrics.RecordTransaction(string(models.TxTypeLockFunds), amount)

	return &OperationResult{
		Wallet:       wallet,
		Transactions: []models.WalletTransaction{*entry},
		Summary:      fmt.Sprintf("Locked %s for user %d", amount, req.UserID),
	}, nil
}

// ReleaseFunds releases escrowed funds. The holder's locked balance is
// always decremented first. With a distinct recipient the amount lands in
// the recipient's available balance (two ledger rows, linked only by the
// shared event id and related object); otherwise it returns to the
// holder's own available balance (one row).
func (s *service) ReleaseFunds(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error) {
	amount := money.Normalize(req.Amount)
	if !amount.IsPositive() {
		s.metrics.RecordError("release_funds", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	toThirdParty := req.ToUserID != 0 && req.ToUserID != req.FromUserID

	ids := []uint{req.FromUserID}
	if toThirdParty {
		ids = append(ids, req.ToUserID)
	}
	release := s.locks.Acquire(ids...)
	defer release()

	if req.EventID != "" {
		processed, err := s.repo.HasEvent(req.EventID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if processed {
			return &ReleaseResult{
				Transactions:     []models.WalletTransaction{},
				Summary:          fmt.Sprintf("Event %s already processed", req.EventID),
				AlreadyProcessed: true,
			}, nil
		}
	}

	if !toThirdParty {
		return s.releaseToSelf(ctx, req, amount)
	}
	return s.releaseToRecipient(ctx, req, amount)
}

func (s *service) releaseToSelf(ctx context.Context, req ReleaseRequest, amount decimal.Decimal) (*ReleaseResult, error) {
	opReq := OperationRequest{
		UserID:  req.FromUserID,
		TxType:  models.TxTypeReleaseFunds,
		Memo:    req.Memo,
		Related: req.Related,
		EventID: req.EventID,
	}
	entry := s.newLedgerEntry(opReq, amount, models.DirectionCredit)

	var wallet *models.Wallet
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.FromUserID)
		if err != nil {
			return err
		}
		if w.LockedBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		w.LockedBalance = money.Normalize(w.LockedBalance.Sub(amount))
		w.AvailableBalance = money.Normalize(w.AvailableBalance.Add(amount))

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
		return &ReleaseResult{
			Transactions:     []models.WalletTransaction{},
			Summary:          fmt.Sprintf("Event %s already processed", req.EventID),
			AlreadyProcessed: true,
		}, nil
	}
	if errors.Is(err, ErrInsufficientBalance) {
		s.metrics.RecordError("release_funds", "insufficient_locked")
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		s.metrics.RecordError("release_funds", "storage")
		return nil, fmt.Errorf("release funds failed: %w", err)
	}

	s.mirrorBalance(ctx, wallet)
	s.metrics.RecordTransaction(string(models.TxTypeReleaseFunds), amount)

	return &ReleaseResult{
		Transactions: []models.WalletTransaction{*entry},
		Summary:      fmt.Sprintf("Released %s back to user %d", amount, req.FromUserID),
	}, nil
}

// releaseToRecipient performs two sequential, independently-committed
// writes: the hold is released first, then the recipient is credited.
func (s *service) releaseToRecipient(ctx context.Context, req ReleaseRequest, amount decimal.Decimal) (*ReleaseResult, error) {
	debitReq := OperationRequest{
		UserID:  req.FromUserID,
		TxType:  models.TxTypeReleaseFunds,
		Memo:    req.Memo,
		Related: req.Related,
		EventID: req.EventID,
	}
	debitEntry := s.newLedgerEntry(debitReq, amount, models.DirectionDebit)
	debitEntry.CounterpartyUserID = &req.ToUserID

	var holder *models.Wallet
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.FromUserID)
		if err != nil {
			return err
		}
		if w.LockedBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		w.LockedBalance = money.Normalize(w.LockedBalance.Sub(amount))

		if err := r.CreateTransaction(debitEntry); err != nil {
			return err
		}
		if err := r.Update(w); err != nil {
			return err
		}
		holder = w
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEvent) {
		return &ReleaseResult{
			Transactions:     []models.WalletTransaction{},
			Summary:          fmt.Sprintf("Event %s already processed", req.EventID),
			AlreadyProcessed: true,
		}, nil
	}
	if errors.Is(err, ErrInsufficientBalance) {
		s.metrics.RecordError("release_funds", "insufficient_locked")
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		s.metrics.RecordError("release_funds", "storage")
		return nil, fmt.Errorf("release funds failed: %w", err)
	}

	creditReq := OperationRequest{
		UserID:  req.ToUserID,
		TxType:  models.TxTypeEarnMission,
		Memo:    req.Memo,
		Related: req.Related,
		EventID: req.EventID,
	}
	creditEntry := s.newLedgerEntry(creditReq, amount, models.DirectionCredit)
	creditEntry.CounterpartyUserID = &req.FromUserID

	var recipient *models.Wallet
	err = s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		w, err := r.GetOrCreate(req.ToUserID)
		if err != nil {
			return err
		}
		w.AvailableBalance = money.Normalize(w.AvailableBalance.Add(amount))
		w.TotalEarned = money.Normalize(w.TotalEarned.Add(amount))

		if err := r.CreateTransaction(creditEntry); err != nil {
			return err
		}
		if err := r.Update(w); err != nil {
			return err
		}
		recipient = w
		return nil
	})
	if err != nil {
		// The hold is already released but the payout leg did not land.
		// Retrying the same event replays as a no-op, so this state needs
		// an operator; flag it loudly.
		s.metrics.RecordCompensationFailure("release_funds", req.FromUserID)
		log.Printf("CRITICAL: release of %s from user %d committed but credit to user %d failed: %v",
			amount, req.FromUserID, req.ToUserID, err)
		return nil, fmt.Errorf("release payout credit failed: %w", err)
	}

	s.mirrorBalance(ctx, holder)
	s.mirrorBalance(ctx, recipient)
	s.metrics.RecordTransaction(string(models.TxTypeReleaseFunds), amount)

	return &ReleaseResult{
		Transactions: []models.WalletTransaction{*debitEntry, *creditEntry},
		Summary:      fmt.Sprintf("Released %s from user %d to user %d", amount, req.FromUserID, req.ToUserID),
	}, nil
}

// Refund credits the amount back to the user under the REFUND type.
func (s *service) Refund(ctx context.Context, req OperationRequest) (*OperationResult, error) {
	req.TxType = models.TxTypeRefund
	return s.Credit(ctx, req)
}

// Adjustment is the administrative override. The caller must hold the
// admin role; the admin's identity is recorded in the entry metadata.
func (s *service) Adjustment(ctx context.Context, caller Caller, req AdjustmentRequest) (*OperationResult, error) {
	if caller.Role != "admin" {
		s.metrics.RecordError("adjustment", "permission_denied")
		return nil, ErrPermissionDenied
	}

	metadata := map[string]interface{}{
		"admin_user_id": caller.UserID,
	}
	if req.AdminNote != "" {
		metadata["admin_note"] = req.AdminNote
	}

	opReq := OperationRequest{
		UserID:   req.UserID,
		Amount:   req.Amount,
		Memo:     req.Memo,
		EventID:  req.EventID,
		Metadata: metadata,
	}

	switch req.Direction {
	case AdjustmentDirectionCredit:
		opReq.TxType = models.TxTypeAdjustmentCredit
		return s.Credit(ctx, opReq)
	case AdjustmentDirectionDebit:
		opReq.TxType = models.TxTypeAdjustmentDebit
		return s.Debit(ctx, opReq)
	default:
		s.metrics.RecordError("adjustment", "invalid_direction")
		return nil, ErrInvalidArgument
	}
}
