package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/input"
)

// PaymentHandler is a primary adapter exposing the orchestration flows over
// HTTP.
type PaymentHandler struct {
	payments input.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments input.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreatePaymentRequest represents the HTTP request to create a payment
type CreatePaymentRequest struct {
	Amount        float64           `json:"amount" validate:"required,gt=0"`
	Currency      string            `json:"currency" validate:"required,len=3"`
	CustomerEmail string            `json:"customer_email" validate:"required,email"`
	CustomerName  string            `json:"customer_name"`
	CallbackURL   string            `json:"callback_url" validate:"omitempty,url"`
	Provider      string            `json:"provider"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentResponse represents the HTTP response for a created payment
type PaymentResponse struct {
	Success     bool   `json:"success"`
	Reference   string `json:"reference"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Provider    string `json:"provider"`
}

// VerificationResponse represents the HTTP response for a verification
type VerificationResponse struct {
	Success     bool   `json:"success"`
	Reference   string `json:"reference"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	PaymentDate string `json:"payment_date,omitempty"`
	Fee         string `json:"fee"`
	Provider    string `json:"provider"`
}

// RefundPaymentRequest represents the HTTP request to refund a payment
type RefundPaymentRequest struct {
	Reference string  `json:"reference" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Reason    string  `json:"reason"`
}

// RefundResponse represents the HTTP response for a refund
type RefundResponse struct {
	Success         bool   `json:"success"`
	RefundReference string `json:"refund_reference"`
	Message         string `json:"message"`
	Amount          string `json:"amount"`
	Status          string `json:"status"`
	RefundDate      string `json:"refund_date,omitempty"`
	Provider        string `json:"provider"`
}

// SavePaymentMethodRequest represents the HTTP request to save a method
type SavePaymentMethodRequest struct {
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerName  string `json:"customer_name"`
	Token         string `json:"token" validate:"required"`
	Provider      string `json:"provider" validate:"required"`
	MakeDefault   bool   `json:"make_default"`
}

// PaymentMethodResponse represents the HTTP response for a saved method
type PaymentMethodResponse struct {
	Success     bool   `json:"success"`
	MethodToken string `json:"method_token"`
	Message     string `json:"message"`
	Provider    string `json:"provider"`
}

// TransactionResponse represents one stored transaction
type TransactionResponse struct {
	Reference     string `json:"reference"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	Status        string `json:"status"`
	Provider      string `json:"provider"`
	CreatedAt     string `json:"created_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreatePayment handles POST /payments.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	provider, err := core.ParseProvider(req.Provider)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := h.payments.CreatePayment(c.Request().Context(), input.CreatePaymentRequest{
		Amount:        decimal.NewFromFloat(req.Amount),
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CallbackURL:   req.CallbackURL,
		Metadata:      req.Metadata,
	}, provider)
	if err != nil {
		return writeError(c, err)
	}

	status := http.StatusCreated
	if !resp.Success {
		status = http.StatusBadGateway
	}
	return c.JSON(status, PaymentResponse{
		Success:     resp.Success,
		Reference:   resp.Reference,
		Message:     resp.Message,
		Status:      resp.Status.String(),
		CheckoutURL: resp.CheckoutURL,
		Provider:    resp.Provider.String(),
	})
}

// VerifyPayment handles GET /payments/verify?reference=&provider=.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	reference := c.QueryParam("reference")
	provider, err := core.ParseProvider(c.QueryParam("provider"))
	if err != nil {
		return writeError(c, err)
	}

	resp, err := h.payments.VerifyPayment(c.Request().Context(), reference, provider)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toVerificationResponse(resp))
}

// RefundPayment handles POST /payments/refund.
func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	var req RefundPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.payments.RefundPayment(c.Request().Context(), input.RefundRequest{
		Reference: req.Reference,
		Amount:    decimal.NewFromFloat(req.Amount),
		Reason:    req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}

	out := RefundResponse{
		Success:         resp.Success,
		RefundReference: resp.RefundReference,
		Message:         resp.Message,
		Amount:          resp.Amount.String(),
		Status:          resp.Status.String(),
		Provider:        resp.Provider.String(),
	}
	if !resp.RefundDate.IsZero() {
		out.RefundDate = resp.RefundDate.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, out)
}

// SavePaymentMethod handles POST /payment-methods.
func (h *PaymentHandler) SavePaymentMethod(c echo.Context) error {
	var req SavePaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	provider, err := core.ParseProvider(req.Provider)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := h.payments.SavePaymentMethod(c.Request().Context(), input.SavePaymentMethodRequest{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Token:         req.Token,
		MakeDefault:   req.MakeDefault,
	}, provider)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, PaymentMethodResponse{
		Success:     resp.Success,
		MethodToken: resp.MethodToken,
		Message:     resp.Message,
		Provider:    resp.Provider.String(),
	})
}

// ListPayments handles GET /payments?email=.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	email := c.QueryParam("email")

	transactions, err := h.payments.ListPayments(c.Request().Context(), email)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		item := TransactionResponse{
			Reference:     tx.Reference,
			Amount:        tx.Amount.String(),
			Currency:      tx.Currency,
			CustomerEmail: tx.CustomerEmail,
			CustomerName:  tx.CustomerName,
			Status:        tx.Status.String(),
			Provider:      tx.Provider.String(),
			CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
		}
		if tx.CompletedAt != nil {
			item.CompletedAt = tx.CompletedAt.Format(time.RFC3339)
		}
		out = append(out, item)
	}
	return c.JSON(http.StatusOK, out)
}

func toVerificationResponse(resp *input.VerificationResponse) VerificationResponse {
	out := VerificationResponse{
		Success:   resp.Success,
		Reference: resp.Reference,
		Message:   resp.Message,
		Status:    resp.Status.String(),
		Amount:    resp.Amount.String(),
		Currency:  resp.Currency,
		Fee:       resp.Fee.String(),
		Provider:  resp.Provider.String(),
	}
	if !resp.PaymentDate.IsZero() {
		out.PaymentDate = resp.PaymentDate.Format(time.RFC3339)
	}
	return out
}

// writeError maps the core error taxonomy onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	var gwErr *core.GatewayError
	switch {
	case errors.Is(err, core.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
	case errors.Is(err, core.ErrInvalidWebhook):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "INVALID_WEBHOOK"})
	case errors.Is(err, core.ErrTransactionNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "TRANSACTION_NOT_FOUND"})
	case errors.Is(err, core.ErrNotRefundable):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "NOT_REFUNDABLE"})
	case errors.Is(err, core.ErrRefundExceedsAmount):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "REFUND_EXCEEDS_AMOUNT"})
	case errors.Is(err, core.ErrNotSupported):
		return c.JSON(http.StatusNotImplemented, errorResponse{Error: err.Error(), Code: "NOT_SUPPORTED"})
	case errors.Is(err, core.ErrGatewayNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: "GATEWAY_NOT_CONFIGURED"})
	case errors.Is(err, core.ErrInvalidTransition), errors.Is(err, core.ErrStaleTransaction):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "CONFLICT"})
	case errors.As(err, &gwErr):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: gwErr.Error(), Code: "GATEWAY_ERROR"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL_ERROR"})
	}
}
