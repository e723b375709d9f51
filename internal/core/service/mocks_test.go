package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

var mockAnything = mock.Anything

// GatewayMock is a mock implementation of output.Gateway.
type GatewayMock struct {
	mock.Mock
	provider     core.Provider
	capabilities map[output.Capability]bool
}

func NewGatewayMock(p core.Provider, capabilities ...output.Capability) *GatewayMock {
	caps := make(map[output.Capability]bool, len(capabilities))
	for _, c := range capabilities {
		caps[c] = true
	}
	return &GatewayMock{provider: p, capabilities: caps}
}

func (m *GatewayMock) Provider() core.Provider {
	return m.provider
}

func (m *GatewayMock) Supports(c output.Capability) bool {
	return m.capabilities[c]
}

func (m *GatewayMock) CreatePayment(ctx context.Context, req output.PaymentRequest) (*output.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*output.PaymentResult), args.Error(1)
}

func (m *GatewayMock) VerifyPayment(ctx context.Context, reference string) (*output.VerificationResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*output.VerificationResult), args.Error(1)
}

func (m *GatewayMock) RefundPayment(ctx context.Context, req output.RefundRequest) (*output.RefundResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*output.RefundResult), args.Error(1)
}

func (m *GatewayMock) SavePaymentMethod(ctx context.Context, req output.PaymentMethodRequest) (*output.PaymentMethodResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*output.PaymentMethodResult), args.Error(1)
}

// RepositoryMock is a mock implementation of output.TransactionRepository.
type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) Create(ctx context.Context, t *core.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *RepositoryMock) GetByReference(ctx context.Context, reference string) (*core.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Transaction), args.Error(1)
}

func (m *RepositoryMock) Update(ctx context.Context, t *core.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *RepositoryMock) ListByCustomerEmail(ctx context.Context, email string) ([]core.Transaction, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.Transaction), args.Error(1)
}

func (m *RepositoryMock) CreateRefund(ctx context.Context, r *core.Refund) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// PublisherMock is a mock implementation of output.EventPublisher.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishPaymentEvent(ctx context.Context, evt output.PaymentEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
