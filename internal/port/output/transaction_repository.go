package output

import (
	"context"

	"github.com/paybridge/payment-orchestrator/internal/core"
)

// TransactionRepository is the secondary port over the durable transaction
// store. Implementations must make Update atomic for a single record; the
// orchestrator performs no cross-request locking of its own.
type TransactionRepository interface {
	// Create persists a new transaction, assigning ID and CreatedAt when
	// absent.
	Create(ctx context.Context, t *core.Transaction) error

	// GetByReference returns the transaction owning the reference, or
	// core.ErrTransactionNotFound.
	GetByReference(ctx context.Context, reference string) (*core.Transaction, error)

	// Update writes status, completion timestamp and gateway response,
	// guarded by the status the entity was loaded with. A lost race returns
	// core.ErrStaleTransaction.
	Update(ctx context.Context, t *core.Transaction) error

	// ListByCustomerEmail returns the customer's transactions newest first.
	ListByCustomerEmail(ctx context.Context, email string) ([]core.Transaction, error)

	// CreateRefund persists a refund record under its parent transaction.
	CreateRefund(ctx context.Context, r *core.Refund) error
}
