package output

import (
	"context"
	"time"

	"github.com/paybridge/payment-orchestrator/internal/core"
)

// Event types published on the payments exchange.
const (
	EventPaymentCreated  = "payment.created"
	EventPaymentVerified = "payment.verified"
	EventPaymentRefunded = "payment.refunded"
)

// PaymentEvent is the message emitted after an orchestration flow completes.
type PaymentEvent struct {
	Type      string        `json:"type"`
	Reference string        `json:"reference"`
	Provider  core.Provider `json:"provider"`
	Status    core.Status   `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// EventPublisher is the secondary port for payment event messaging.
// Publishing is best-effort from the orchestrator's point of view.
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, evt PaymentEvent) error
	Close() error
}
