package core

import (
	"errors"
	"fmt"
)

// Error taxonomy of the orchestration core. Collaborator failures are always
// wrapped into one of these before crossing the service boundary.
var (
	// ErrInvalidRequest marks caller input that violates a precondition.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrGatewayNotConfigured marks a selected or explicit provider with no
	// registered adapter.
	ErrGatewayNotConfigured = errors.New("gateway not configured")

	// ErrTransactionNotFound marks a reference with no stored transaction.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNotRefundable marks a refund against a transaction that is not in
	// the Successful state.
	ErrNotRefundable = errors.New("transaction not refundable")

	// ErrRefundExceedsAmount marks a refund larger than the original charge.
	ErrRefundExceedsAmount = errors.New("refund amount exceeds transaction amount")

	// ErrNotSupported marks a capability the selected gateway does not
	// implement. Distinct from a runtime gateway failure.
	ErrNotSupported = errors.New("operation not supported by gateway")

	// ErrInvalidTransition marks a status change outside the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidWebhook marks an inbound notification whose shape matches no
	// known provider, or whose reference could not be extracted.
	ErrInvalidWebhook = errors.New("unrecognized webhook payload")

	// ErrStaleTransaction marks a lost optimistic-concurrency race on a
	// transaction update.
	ErrStaleTransaction = errors.New("transaction modified concurrently")
)

// GatewayError wraps a failure raised by a gateway adapter call, carrying the
// provider and operation for diagnostics. The original cause is reachable via
// errors.Unwrap / errors.As.
type GatewayError struct {
	Provider Provider
	Op       string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
