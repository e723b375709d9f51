package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/input"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

const defaultGatewayTimeout = 30 * time.Second

// PaymentServiceImpl implements the PaymentService input port. It is
// stateless and safe for concurrent use; all mutable state lives in the
// transaction store.
type PaymentServiceImpl struct {
	registry       *Registry
	selector       *Selector
	resolver       *Resolver
	repo           output.TransactionRepository
	events         output.EventPublisher
	log            *zap.Logger
	gatewayTimeout time.Duration
}

// NewPaymentService wires the orchestrator. events may be nil when no broker
// is deployed; gatewayTimeout bounds every outbound adapter call and falls
// back to a default when non-positive.
func NewPaymentService(
	registry *Registry,
	resolver *Resolver,
	repo output.TransactionRepository,
	events output.EventPublisher,
	log *zap.Logger,
	gatewayTimeout time.Duration,
) input.PaymentService {
	if gatewayTimeout <= 0 {
		gatewayTimeout = defaultGatewayTimeout
	}
	return &PaymentServiceImpl{
		registry:       registry,
		selector:       NewSelector(registry),
		resolver:       resolver,
		repo:           repo,
		events:         events,
		log:            log.Named("payment.service"),
		gatewayTimeout: gatewayTimeout,
	}
}

// CreatePayment validates the request, selects a gateway, invokes it and
// persists the resulting transaction. Failed creation attempts are not
// durable state.
func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req input.CreatePaymentRequest, provider core.Provider) (*input.PaymentResponse, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}
	if s.registry.Len() == 0 {
		return nil, fmt.Errorf("%w: no gateways registered", core.ErrGatewayNotConfigured)
	}

	selected := s.selector.Select(req.Currency, provider)
	gw, err := s.registry.Get(selected)
	if err != nil {
		return nil, err
	}

	s.log.Info("creating payment",
		zap.String("amount", req.Amount.String()),
		zap.String("currency", req.Currency),
		zap.String("gateway", selected.String()))

	result, err := s.callCreate(ctx, gw, output.PaymentRequest{
		Amount:        req.Amount,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CallbackURL:   req.CallbackURL,
		Metadata:      req.Metadata,
	})
	if err != nil {
		s.log.Error("payment creation failed", zap.String("gateway", selected.String()), zap.Error(err))
		return nil, &core.GatewayError{Provider: selected, Op: "create", Err: err}
	}

	if result.Success {
		tx := &core.Transaction{
			Reference:       result.Reference,
			Amount:          req.Amount,
			Currency:        req.Currency,
			CustomerEmail:   req.CustomerEmail,
			CustomerName:    req.CustomerName,
			Status:          result.Status,
			Provider:        selected,
			GatewayResponse: result.RawResponse,
			CreatedAt:       time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("persist transaction %s: %w", result.Reference, err)
		}
		s.publish(ctx, output.EventPaymentCreated, result.Reference, selected, result.Status)
	}

	s.log.Info("payment creation finished",
		zap.Bool("success", result.Success),
		zap.String("reference", result.Reference))

	return &input.PaymentResponse{
		Success:     result.Success,
		Reference:   result.Reference,
		Message:     result.Message,
		Status:      result.Status,
		CheckoutURL: result.CheckoutURL,
		Provider:    selected,
	}, nil
}

// VerifyPayment resolves the owning gateway, queries it and applies the
// reported status to the stored transaction. A reference the store has never
// seen still verifies; there is just nothing to update.
func (s *PaymentServiceImpl) VerifyPayment(ctx context.Context, reference string, provider core.Provider) (*input.VerificationResponse, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: transaction reference is required", core.ErrInvalidRequest)
	}

	selected := provider
	if selected == core.ProviderAutomatic {
		selected = s.resolver.Resolve(ctx, reference)
	}
	gw, err := s.registry.Get(selected)
	if err != nil {
		return nil, err
	}

	result, err := s.callVerify(ctx, gw, reference)
	if err != nil {
		s.log.Error("payment verification failed",
			zap.String("reference", reference),
			zap.String("gateway", selected.String()),
			zap.Error(err))
		return nil, &core.GatewayError{Provider: selected, Op: "verify", Err: err}
	}

	if result.Success {
		if err := s.applyVerification(ctx, reference, result); err != nil {
			return nil, err
		}
	}

	return &input.VerificationResponse{
		Success:     result.Success,
		Reference:   result.Reference,
		Message:     result.Message,
		Status:      result.Status,
		Amount:      result.Amount,
		Currency:    result.Currency,
		PaymentDate: result.PaymentDate,
		Fee:         result.Fee,
		Provider:    selected,
	}, nil
}

// applyVerification transitions the stored transaction to the verified
// status. Reads happen before writes; a missing transaction is allowed.
func (s *PaymentServiceImpl) applyVerification(ctx context.Context, reference string, result *output.VerificationResult) error {
	tx, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("load transaction %s: %w", reference, err)
	}

	changed, err := tx.ApplyStatus(result.Status, result.PaymentDate)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		return fmt.Errorf("update transaction %s: %w", reference, err)
	}
	s.publish(ctx, output.EventPaymentVerified, reference, tx.Provider, tx.Status)
	return nil
}

// RefundPayment refunds through the provider that processed the original
// charge; the gateway is never re-selected. Business-rule checks run before
// any adapter is invoked.
func (s *PaymentServiceImpl) RefundPayment(ctx context.Context, req input.RefundRequest) (*input.RefundResponse, error) {
	if strings.TrimSpace(req.Reference) == "" {
		return nil, fmt.Errorf("%w: transaction reference is required", core.ErrInvalidRequest)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be greater than zero", core.ErrInvalidRequest)
	}

	tx, err := s.repo.GetByReference(ctx, req.Reference)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrTransactionNotFound, req.Reference)
		}
		return nil, fmt.Errorf("load transaction %s: %w", req.Reference, err)
	}

	if !tx.IsRefundable() {
		return nil, fmt.Errorf("%w: current status %s", core.ErrNotRefundable, tx.Status)
	}
	if req.Amount.GreaterThan(tx.Amount) {
		return nil, fmt.Errorf("%w: %s > %s", core.ErrRefundExceedsAmount, req.Amount, tx.Amount)
	}

	gw, err := s.registry.Get(tx.Provider)
	if err != nil {
		return nil, err
	}
	if !gw.Supports(output.CapabilityRefund) {
		return nil, fmt.Errorf("%w: %s cannot refund", core.ErrNotSupported, tx.Provider)
	}

	s.log.Info("processing refund",
		zap.String("reference", req.Reference),
		zap.String("amount", req.Amount.String()),
		zap.String("gateway", tx.Provider.String()))

	result, err := s.callRefund(ctx, gw, output.RefundRequest{
		Reference: req.Reference,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		s.log.Error("refund failed", zap.String("gateway", tx.Provider.String()), zap.Error(err))
		return nil, &core.GatewayError{Provider: tx.Provider, Op: "refund", Err: err}
	}

	if result.Success {
		refund := &core.Refund{
			ID:                   uuid.NewString(),
			Reference:            result.RefundReference,
			TransactionReference: tx.Reference,
			Amount:               result.Amount,
			Currency:             tx.Currency,
			Reason:               req.Reason,
			Status:               result.Status,
			Provider:             tx.Provider,
			GatewayResponse:      result.RawResponse,
			CreatedAt:            time.Now().UTC(),
		}
		if !result.RefundDate.IsZero() {
			at := result.RefundDate
			refund.ProcessedAt = &at
		}
		if err := s.repo.CreateRefund(ctx, refund); err != nil {
			return nil, fmt.Errorf("persist refund for %s: %w", tx.Reference, err)
		}

		// Partial refunds leave the transaction Successful; only a full
		// refund moves it to Refunded.
		if req.Amount.GreaterThanOrEqual(tx.Amount) {
			if _, err := tx.ApplyStatus(core.StatusRefunded, result.RefundDate); err != nil {
				return nil, err
			}
			if err := s.repo.Update(ctx, tx); err != nil {
				return nil, fmt.Errorf("update transaction %s: %w", tx.Reference, err)
			}
		}
		s.publish(ctx, output.EventPaymentRefunded, tx.Reference, tx.Provider, tx.Status)
	}

	return &input.RefundResponse{
		Success:         result.Success,
		RefundReference: result.RefundReference,
		Message:         result.Message,
		Amount:          result.Amount,
		Status:          result.Status,
		RefundDate:      result.RefundDate,
		Provider:        tx.Provider,
	}, nil
}

// SavePaymentMethod delegates to a concrete provider. Saved methods are
// provider-scoped, so automatic selection is rejected up front.
func (s *PaymentServiceImpl) SavePaymentMethod(ctx context.Context, req input.SavePaymentMethodRequest, provider core.Provider) (*input.PaymentMethodResponse, error) {
	if provider == core.ProviderAutomatic {
		return nil, fmt.Errorf("%w: a specific gateway is required for saving payment methods", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, fmt.Errorf("%w: customer email is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Token) == "" {
		return nil, fmt.Errorf("%w: payment method token is required", core.ErrInvalidRequest)
	}

	gw, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}
	if !gw.Supports(output.CapabilitySavePaymentMethod) {
		return nil, fmt.Errorf("%w: %s cannot save payment methods", core.ErrNotSupported, provider)
	}

	result, err := s.callSaveMethod(ctx, gw, output.PaymentMethodRequest{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Token:         req.Token,
		MakeDefault:   req.MakeDefault,
	})
	if err != nil {
		s.log.Error("saving payment method failed", zap.String("gateway", provider.String()), zap.Error(err))
		return nil, &core.GatewayError{Provider: provider, Op: "save_payment_method", Err: err}
	}

	return &input.PaymentMethodResponse{
		Success:     result.Success,
		MethodToken: result.MethodToken,
		Message:     result.Message,
		Provider:    provider,
	}, nil
}

// ProcessWebhook classifies an inbound notification and routes it through
// the same verification flow used by direct API calls.
func (s *PaymentServiceImpl) ProcessWebhook(ctx context.Context, payload []byte) (*input.VerificationResponse, error) {
	cls, err := ClassifyWebhook(payload)
	if err != nil {
		return nil, err
	}
	s.log.Info("webhook classified",
		zap.String("gateway", cls.Provider.String()),
		zap.String("reference", cls.Reference))
	return s.VerifyPayment(ctx, cls.Reference, cls.Provider)
}

// ListPayments returns a customer's transactions newest first.
func (s *PaymentServiceImpl) ListPayments(ctx context.Context, customerEmail string) ([]core.Transaction, error) {
	if strings.TrimSpace(customerEmail) == "" {
		return nil, fmt.Errorf("%w: customer email is required", core.ErrInvalidRequest)
	}
	return s.repo.ListByCustomerEmail(ctx, customerEmail)
}

// Adapter calls are the only suspension points of a request; each carries a
// bounded timeout so a hung provider cannot block the caller indefinitely,
// and caller cancellation propagates into the outbound call.

func (s *PaymentServiceImpl) callCreate(ctx context.Context, gw output.Gateway, req output.PaymentRequest) (*output.PaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return gw.CreatePayment(ctx, req)
}

func (s *PaymentServiceImpl) callVerify(ctx context.Context, gw output.Gateway, reference string) (*output.VerificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return gw.VerifyPayment(ctx, reference)
}

func (s *PaymentServiceImpl) callRefund(ctx context.Context, gw output.Gateway, req output.RefundRequest) (*output.RefundResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return gw.RefundPayment(ctx, req)
}

func (s *PaymentServiceImpl) callSaveMethod(ctx context.Context, gw output.Gateway, req output.PaymentMethodRequest) (*output.PaymentMethodResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return gw.SavePaymentMethod(ctx, req)
}

func (s *PaymentServiceImpl) publish(ctx context.Context, eventType, reference string, provider core.Provider, status core.Status) {
	if s.events == nil {
		return
	}
	evt := output.PaymentEvent{
		Type:      eventType,
		Reference: reference,
		Provider:  provider,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if err := s.events.PublishPaymentEvent(ctx, evt); err != nil {
		s.log.Warn("event publish failed",
			zap.String("type", eventType),
			zap.String("reference", reference),
			zap.Error(err))
	}
}

func validateCreateRequest(req input.CreatePaymentRequest) error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return fmt.Errorf("%w: currency is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return fmt.Errorf("%w: customer email is required", core.ErrInvalidRequest)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrTransactionNotFound)
}
