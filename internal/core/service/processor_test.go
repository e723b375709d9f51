package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

func TestProcessorVerifiesThroughStoredProvider(t *testing.T) {
	t.Parallel()

	gw := NewGatewayMock(core.ProviderPaystack)
	gw.On("VerifyPayment", mockAnything, "PS_async1").Return(&output.VerificationResult{
		Success:     true,
		Reference:   "PS_async1",
		Status:      core.StatusSuccessful,
		PaymentDate: time.Now().UTC(),
	}, nil)

	f := newServiceFixture(t, gw)
	f.repo.On("GetByReference", mockAnything, "PS_async1").Return(&core.Transaction{
		Reference:    "PS_async1",
		Status:       core.StatusPending,
		Provider:     core.ProviderPaystack,
		LoadedStatus: core.StatusPending,
	}, nil)
	f.repo.On("Update", mockAnything, mockAnything).Return(nil)
	f.events.On("PublishPaymentEvent", mockAnything, eventOfType(output.EventPaymentVerified)).Return(nil)

	processor := NewVerificationProcessor(f.svc, zap.NewNop())
	require.NoError(t, processor.Process(context.Background(), "PS_async1"))
	f.repo.AssertExpectations(t)
}

func TestProcessorPropagatesFailure(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, NewGatewayMock(core.ProviderPaystack))
	processor := NewVerificationProcessor(f.svc, zap.NewNop())

	err := processor.Process(context.Background(), "")
	require.ErrorIs(t, err, core.ErrInvalidRequest)
}
