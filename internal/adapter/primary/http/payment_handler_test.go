package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/input"
)

// PaymentServiceMock is a mock implementation of input.PaymentService.
type PaymentServiceMock struct {
	mock.Mock
}

func (m *PaymentServiceMock) CreatePayment(ctx context.Context, req input.CreatePaymentRequest, provider core.Provider) (*input.PaymentResponse, error) {
	args := m.Called(ctx, req, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*input.PaymentResponse), args.Error(1)
}

func (m *PaymentServiceMock) VerifyPayment(ctx context.Context, reference string, provider core.Provider) (*input.VerificationResponse, error) {
	args := m.Called(ctx, reference, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*input.VerificationResponse), args.Error(1)
}

func (m *PaymentServiceMock) RefundPayment(ctx context.Context, req input.RefundRequest) (*input.RefundResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*input.RefundResponse), args.Error(1)
}

func (m *PaymentServiceMock) SavePaymentMethod(ctx context.Context, req input.SavePaymentMethodRequest, provider core.Provider) (*input.PaymentMethodResponse, error) {
	args := m.Called(ctx, req, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*input.PaymentMethodResponse), args.Error(1)
}

func (m *PaymentServiceMock) ProcessWebhook(ctx context.Context, payload []byte) (*input.VerificationResponse, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*input.VerificationResponse), args.Error(1)
}

func (m *PaymentServiceMock) ListPayments(ctx context.Context, customerEmail string) ([]core.Transaction, error) {
	args := m.Called(ctx, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.Transaction), args.Error(1)
}

func newEchoContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewRequestValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreatePaymentHandler(t *testing.T) {
	t.Parallel()

	svc := new(PaymentServiceMock)
	svc.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req input.CreatePaymentRequest) bool {
		return req.Amount.Equal(decimal.NewFromFloat(5000)) && req.Currency == "NGN"
	}), core.ProviderAutomatic).Return(&input.PaymentResponse{
		Success:     true,
		Reference:   "PS_http1",
		Status:      core.StatusPending,
		CheckoutURL: "https://checkout.paystack.com/abc",
		Provider:    core.ProviderPaystack,
	}, nil)

	h := NewPaymentHandler(svc)
	c, rec := newEchoContext(http.MethodPost, "/api/v1/payments",
		`{"amount":5000,"currency":"NGN","customer_email":"customer@example.com"}`)

	require.NoError(t, h.CreatePayment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "PS_http1")
	svc.AssertExpectations(t)
}

func TestCreatePaymentHandlerValidation(t *testing.T) {
	t.Parallel()

	svc := new(PaymentServiceMock)
	h := NewPaymentHandler(svc)

	tests := []struct {
		name string
		body string
	}{
		{"missing amount", `{"currency":"NGN","customer_email":"a@b.c"}`},
		{"bad currency length", `{"amount":10,"currency":"NAIRA","customer_email":"a@b.c"}`},
		{"bad email", `{"amount":10,"currency":"NGN","customer_email":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newEchoContext(http.MethodPost, "/api/v1/payments", tt.body)
			err := h.CreatePayment(c)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}

	svc.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePaymentHandlerUnknownProvider(t *testing.T) {
	t.Parallel()

	h := NewPaymentHandler(new(PaymentServiceMock))
	c, rec := newEchoContext(http.MethodPost, "/api/v1/payments",
		`{"amount":5000,"currency":"NGN","customer_email":"a@b.c","provider":"paypal"}`)

	require.NoError(t, h.CreatePayment(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestCreatePaymentHandlerGatewayDeclined(t *testing.T) {
	t.Parallel()

	svc := new(PaymentServiceMock)
	svc.On("CreatePayment", mock.Anything, mock.Anything, mock.Anything).Return(&input.PaymentResponse{
		Success:  false,
		Message:  "Invalid key",
		Status:   core.StatusFailed,
		Provider: core.ProviderPaystack,
	}, nil)

	h := NewPaymentHandler(svc)
	c, rec := newEchoContext(http.MethodPost, "/api/v1/payments",
		`{"amount":5000,"currency":"NGN","customer_email":"a@b.c"}`)

	require.NoError(t, h.CreatePayment(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestVerifyPaymentHandler(t *testing.T) {
	t.Parallel()

	paidAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	svc := new(PaymentServiceMock)
	svc.On("VerifyPayment", mock.Anything, "PS_http2", core.ProviderAutomatic).Return(&input.VerificationResponse{
		Success:     true,
		Reference:   "PS_http2",
		Status:      core.StatusSuccessful,
		Amount:      decimal.NewFromInt(5000),
		Currency:    "NGN",
		PaymentDate: paidAt,
		Provider:    core.ProviderPaystack,
	}, nil)

	h := NewPaymentHandler(svc)
	c, rec := newEchoContext(http.MethodGet, "/api/v1/payments/verify?reference=PS_http2", "")

	require.NoError(t, h.VerifyPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SUCCESSFUL")
	assert.Contains(t, rec.Body.String(), "2026-03-14T10:30:00Z")
}

func TestRefundPaymentHandlerErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", core.ErrTransactionNotFound, http.StatusNotFound},
		{"not refundable", core.ErrNotRefundable, http.StatusConflict},
		{"exceeds amount", core.ErrRefundExceedsAmount, http.StatusUnprocessableEntity},
		{"not supported", core.ErrNotSupported, http.StatusNotImplemented},
		{"gateway not configured", core.ErrGatewayNotConfigured, http.StatusServiceUnavailable},
		{"gateway failure", &core.GatewayError{Provider: core.ProviderPaystack, Op: "refund", Err: assert.AnError}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(PaymentServiceMock)
			svc.On("RefundPayment", mock.Anything, mock.Anything).Return(nil, tt.err)

			h := NewPaymentHandler(svc)
			c, rec := newEchoContext(http.MethodPost, "/api/v1/payments/refund",
				`{"reference":"PS_x","amount":100}`)

			require.NoError(t, h.RefundPayment(c))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestListPaymentsHandler(t *testing.T) {
	t.Parallel()

	completed := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc := new(PaymentServiceMock)
	svc.On("ListPayments", mock.Anything, "customer@example.com").Return([]core.Transaction{
		{
			Reference:     "PS_list1",
			Amount:        decimal.NewFromInt(5000),
			Currency:      "NGN",
			CustomerEmail: "customer@example.com",
			Status:        core.StatusSuccessful,
			Provider:      core.ProviderPaystack,
			CreatedAt:     completed.Add(-time.Hour),
			CompletedAt:   &completed,
		},
	}, nil)

	h := NewPaymentHandler(svc)
	c, rec := newEchoContext(http.MethodGet, "/api/v1/payments?email=customer@example.com", "")

	require.NoError(t, h.ListPayments(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PS_list1")
	assert.Contains(t, rec.Body.String(), "2026-04-01T08:00:00Z")
}
