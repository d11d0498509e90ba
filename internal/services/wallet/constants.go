package wallet

// Adjustment directions accepted by the administrative override.
const (
	AdjustmentDirectionCredit = "credit"
	AdjustmentDirectionDebit  = "debit"
)

// Transaction listing bounds.
const (
	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 200
)

// Default memo recorded on a rejected debit's FAILED ledger row.
const InsufficientFundsMemo = "Insufficient funds"
