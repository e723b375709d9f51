package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the durable record of one payment attempt. Its identity is
// the gateway reference; the owning provider is fixed at creation.
type Transaction struct {
	ID              string
	Reference       string
	Amount          decimal.Decimal
	Currency        string
	CustomerEmail   string
	CustomerName    string
	Status          Status
	Provider        Provider
	GatewayResponse json.RawMessage
	CreatedAt       time.Time
	CompletedAt     *time.Time

	// LoadedStatus is the status the record carried when read from the
	// store. The store uses it as the compare-and-set guard on updates.
	LoadedStatus Status
}

// ApplyStatus moves the transaction to next, enforcing the transition table.
// Re-applying the current status is a no-op; changed reports whether the
// record was actually mutated. completedAt is the adapter-reported payment
// date, used when the new status is Successful.
func (t *Transaction) ApplyStatus(next Status, completedAt time.Time) (changed bool, err error) {
	if next == t.Status {
		return false, nil
	}
	if !t.Status.CanTransitionTo(next) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	t.Status = next
	if next.IsTerminal() {
		at := completedAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		t.CompletedAt = &at
	}
	return true, nil
}

// IsRefundable reports whether a refund may be attempted against t.
func (t *Transaction) IsRefundable() bool {
	return t.Status == StatusSuccessful
}

// Refund is a logical child of a Transaction. Its provider always equals the
// parent's provider; a refund cannot move providers.
type Refund struct {
	ID                   string
	Reference            string
	TransactionReference string
	Amount               decimal.Decimal
	Currency             string
	Reason               string
	Status               Status
	Provider             Provider
	GatewayResponse      json.RawMessage
	CreatedAt            time.Time
	ProcessedAt          *time.Time
}
