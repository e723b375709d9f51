package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/input"
)

// VerificationProcessor drives asynchronous verification of created
// payments: the worker consumes payment.created events and pushes each
// reference through the same verify flow the API uses.
type VerificationProcessor struct {
	payments input.PaymentService
	log      *zap.Logger
}

func NewVerificationProcessor(payments input.PaymentService, log *zap.Logger) *VerificationProcessor {
	return &VerificationProcessor{
		payments: payments,
		log:      log.Named("payment.processor"),
	}
}

// Process verifies one reference. The owning gateway is resolved from the
// stored transaction, so automatic selection always lands on the provider
// that created the payment.
func (p *VerificationProcessor) Process(ctx context.Context, reference string) error {
	res, err := p.payments.VerifyPayment(ctx, reference, core.ProviderAutomatic)
	if err != nil {
		p.log.Error("async verification failed", zap.String("reference", reference), zap.Error(err))
		return err
	}
	p.log.Info("async verification finished",
		zap.String("reference", reference),
		zap.Bool("success", res.Success),
		zap.String("status", res.Status.String()))
	return nil
}
