package input

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paybridge/payment-orchestrator/internal/core"
)

// PaymentService is the primary port for payment orchestration. Primary
// adapters (HTTP handlers, queue consumers) drive the core through it.
type PaymentService interface {
	// CreatePayment validates the request, selects a gateway and initiates
	// a payment. A gateway-declined attempt returns a response with
	// Success false and is not persisted.
	CreatePayment(ctx context.Context, req CreatePaymentRequest, provider core.Provider) (*PaymentResponse, error)

	// VerifyPayment checks a payment's state with its owning gateway and
	// applies the resulting status transition to the stored transaction,
	// when one exists.
	VerifyPayment(ctx context.Context, reference string, provider core.Provider) (*VerificationResponse, error)

	// RefundPayment refunds a successful payment through the provider that
	// processed the original charge.
	RefundPayment(ctx context.Context, req RefundRequest) (*RefundResponse, error)

	// SavePaymentMethod stores a tokenized payment method with a concrete
	// provider. ProviderAutomatic is rejected.
	SavePaymentMethod(ctx context.Context, req SavePaymentMethodRequest, provider core.Provider) (*PaymentMethodResponse, error)

	// ProcessWebhook classifies an inbound gateway notification and feeds
	// it through the verification flow.
	ProcessWebhook(ctx context.Context, payload []byte) (*VerificationResponse, error)

	// ListPayments returns a customer's transactions, newest first.
	ListPayments(ctx context.Context, customerEmail string) ([]core.Transaction, error)
}

// CreatePaymentRequest is the provider-neutral payment creation request.
type CreatePaymentRequest struct {
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	CustomerName  string
	CallbackURL   string
	Metadata      map[string]string
}

// PaymentResponse reports the outcome of a creation attempt.
type PaymentResponse struct {
	Success     bool
	Reference   string
	Message     string
	Status      core.Status
	CheckoutURL string
	Provider    core.Provider
}

// VerificationResponse reports the outcome of a verification.
type VerificationResponse struct {
	Success     bool
	Reference   string
	Message     string
	Status      core.Status
	Amount      decimal.Decimal
	Currency    string
	PaymentDate time.Time
	Fee         decimal.Decimal
	Provider    core.Provider
}

// RefundRequest asks for a full or partial refund of a transaction.
type RefundRequest struct {
	Reference string
	Amount    decimal.Decimal
	Reason    string
}

// RefundResponse reports the outcome of a refund attempt.
type RefundResponse struct {
	Success         bool
	RefundReference string
	Message         string
	Amount          decimal.Decimal
	Status          core.Status
	RefundDate      time.Time
	Provider        core.Provider
}

// SavePaymentMethodRequest stores a tokenized method for later charges.
type SavePaymentMethodRequest struct {
	CustomerEmail string
	CustomerName  string
	Token         string
	MakeDefault   bool
}

// PaymentMethodResponse reports the outcome of saving a payment method.
type PaymentMethodResponse struct {
	Success     bool
	MethodToken string
	Message     string
	Provider    core.Provider
}
