package errors

var (
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be greater than zero",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient balance",
	}
	ErrInvalidTransfer = &DomainError{
		Code:    "INVALID_TRANSFER",
		Message: "cannot transfer to self",
	}
	ErrPermissionDenied = &DomainError{
		Code:    "PERMISSION_DENIED",
		Message: "caller is not permitted to perform this operation",
	}
	ErrInvalidArgument = &DomainError{
		Code:    "INVALID_ARGUMENT",
		Message: "invalid argument",
	}
	// ErrCompensationFailed marks the one state the engine cannot repair on
	// its own: a transfer was rolled back after a partial failure and the
	// rollback itself failed. It must page an operator.
	ErrCompensationFailed = &DomainError{
		Code:    "COMPENSATION_FAILED",
		Message: "transfer compensation failed; account state requires reconciliation",
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
)
