package output

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paybridge/payment-orchestrator/internal/core"
)

// Capability names one optional gateway operation. Absence of a capability is
// a checkable fact on the adapter, not a runtime fault.
type Capability string

const (
	CapabilityRefund            Capability = "refund"
	CapabilitySavePaymentMethod Capability = "save_payment_method"
)

// Gateway is the uniform contract every provider adapter implements.
// Create and verify are mandatory; refund and save-payment-method are
// capabilities queried through Supports before the call is attempted.
type Gateway interface {
	// Provider exposes the adapter's own identity. Never ProviderAutomatic.
	Provider() core.Provider

	// Supports reports whether the adapter implements the capability.
	Supports(c Capability) bool

	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	VerifyPayment(ctx context.Context, reference string) (*VerificationResult, error)
	RefundPayment(ctx context.Context, req RefundRequest) (*RefundResult, error)
	SavePaymentMethod(ctx context.Context, req PaymentMethodRequest) (*PaymentMethodResult, error)
}

// PaymentRequest carries the provider-neutral payment creation attributes.
type PaymentRequest struct {
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	CustomerName  string
	CallbackURL   string
	Metadata      map[string]string
}

// PaymentResult is the normalized outcome of a creation call. Success false
// means the gateway itself declined the attempt; transport and protocol
// faults surface as errors instead.
type PaymentResult struct {
	Success     bool
	Reference   string
	Message     string
	Status      core.Status
	CheckoutURL string
	RawResponse json.RawMessage
}

// VerificationResult is the normalized outcome of a verification call.
type VerificationResult struct {
	Success     bool
	Reference   string
	Message     string
	Status      core.Status
	Amount      decimal.Decimal
	Currency    string
	PaymentDate time.Time
	Fee         decimal.Decimal
	RawResponse json.RawMessage
}

// RefundRequest carries the provider-neutral refund attributes.
type RefundRequest struct {
	Reference string
	Amount    decimal.Decimal
	Reason    string
}

// RefundResult is the normalized outcome of a refund call.
type RefundResult struct {
	Success         bool
	RefundReference string
	Message         string
	Amount          decimal.Decimal
	Status          core.Status
	RefundDate      time.Time
	RawResponse     json.RawMessage
}

// PaymentMethodRequest carries a tokenized payment method to store with a
// provider. Methods are provider-scoped.
type PaymentMethodRequest struct {
	CustomerEmail string
	CustomerName  string
	Token         string
	MakeDefault   bool
}

// PaymentMethodResult is the normalized outcome of a save-payment-method call.
type PaymentMethodResult struct {
	Success     bool
	MethodToken string
	Message     string
	RawResponse json.RawMessage
}
