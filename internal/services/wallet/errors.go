package wallet

import errs "github.com/SaintAgents/saintagent-sub009/internal/errors"

// Service errors, re-exported from the shared taxonomy so callers can
// branch without importing internal/errors directly.
var (
	ErrInvalidAmount       = errs.ErrInvalidAmount
	ErrInsufficientBalance = errs.ErrInsufficientBalance
	ErrInvalidTransfer     = errs.ErrInvalidTransfer
	ErrPermissionDenied    = errs.ErrPermissionDenied
	ErrInvalidArgument     = errs.ErrInvalidArgument
	ErrCompensationFailed  = errs.ErrCompensationFailed
)
