package wallet

import "github.com/shopspring/decimal"

// MetricsCollector receives operational signals from the wallet engine.
type MetricsCollector interface {
	RecordTransaction(txType string, amount decimal.Decimal)
	RecordError(operation, errType string)

	// RecordCompensationFailure fires when a transfer rollback itself
	// failed and an account is left unreconciled. It must alert.
	RecordCompensationFailure(operation string, userID uint)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordTransaction(string, decimal.Decimal) {}
func (n *NoopMetricsCollector) RecordError(string, string)                {}
func (n *NoopMetricsCollector) RecordCompensationFailure(string, uint)    {}
