/*
Package wallet is the value-transfer core of the points economy. It records
and moves balances of a fungible unit between user accounts, supports
escrow-style holds, and guarantees that externally-triggered events are
applied at most once.

The service handles:
- Balance management (credit/debit with category counters)
- Peer-to-peer transfers with compensation on partial failure
- Escrow holds (lock/release)
- Administrative adjustments
- Idempotent event processing via caller-supplied event ids
- An append-only audit ledger

Usage:

	svc := wallet.NewService(repo, profiles, cache, metrics)

	res, err := svc.Credit(ctx, wallet.OperationRequest{
	    UserID:  userID,
	    Amount:  amount,
	    TxType:  models.TxTypeEarnReward,
	    EventID: "reward:2024-06-01:42",
	})

	res, err = svc.Transfer(ctx, wallet.TransferRequest{
	    FromUserID: sender,
	    ToUserID:   receiver,
	    Amount:     amount,
	})

Idempotency:

Every mutating operation accepts an optional EventID. Replaying an
operation with an EventID already present in the ledger returns the
current account state with an empty transaction list and
AlreadyProcessed set; it is not an error. A partial unique index on
(event_id, actor, direction) backs the guard at the storage layer.

Error Handling:

Operations return the DomainError taxonomy from internal/errors:
- ErrInvalidAmount: amount not positive after normalization
- ErrInsufficientBalance: available or locked balance too low
- ErrInvalidTransfer: self-transfer
- ErrPermissionDenied: non-admin caller on Adjustment
- ErrInvalidArgument: unrecognized adjustment direction
- ErrCompensationFailed: a transfer rollback itself failed

A rejected debit is the single case that still writes a ledger row
(status FAILED) to keep an audit trail of the attempt.
*/
package wallet
