package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

const paystackBaseURL = "https://api.paystack.co"

var subunitFactor = decimal.NewFromInt(100)

// PaystackGateway is the adapter for the Paystack REST API. Amounts travel
// in the currency's minor unit (kobo for NGN).
type PaystackGateway struct {
	client *apiClient
	node   *snowflake.Node
	log    *zap.Logger
}

// NewPaystackGateway builds the adapter. baseURL overrides the production
// endpoint, used by tests; empty means production.
func NewPaystackGateway(secretKey, baseURL string, node *snowflake.Node, timeout time.Duration, log *zap.Logger) (*PaystackGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("paystack secret key is required")
	}
	if baseURL == "" {
		baseURL = paystackBaseURL
	}
	return &PaystackGateway{
		client: newAPIClient(baseURL, secretKey, timeout),
		node:   node,
		log:    log.Named("gateway.paystack"),
	}, nil
}

func (g *PaystackGateway) Provider() core.Provider {
	return core.ProviderPaystack
}

func (g *PaystackGateway) Supports(c output.Capability) bool {
	switch c {
	case output.CapabilityRefund, output.CapabilitySavePaymentMethod:
		return true
	}
	return false
}

// paystackEnvelope is the common response wrapper: a boolean status, a
// message and a data object.
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (g *PaystackGateway) CreatePayment(ctx context.Context, req output.PaymentRequest) (*output.PaymentResult, error) {
	reference := newReference(g.node, core.ProviderPaystack)
	g.log.Info("initializing payment",
		zap.String("email", req.CustomerEmail),
		zap.String("reference", reference))

	payload := map[string]any{
		"amount":       req.Amount.Mul(subunitFactor).IntPart(),
		"email":        req.CustomerEmail,
		"currency":     req.Currency,
		"callback_url": req.CallbackURL,
		"reference":    reference,
		"metadata": map[string]any{
			"customer_name":   req.CustomerName,
			"additional_info": req.Metadata,
		},
	}

	raw, status, err := g.client.postJSON(ctx, "/transaction/initialize", payload)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("paystack initialize: decode response: %w", err)
	}

	if !is2xx(status) || !env.Status {
		g.log.Warn("payment initiation declined", zap.String("message", env.Message))
		return &output.PaymentResult{
			Success:     false,
			Message:     messageOr(env.Message, "unknown error occurred"),
			Status:      core.StatusFailed,
			RawResponse: raw,
		}, nil
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack initialize: decode data: %w", err)
	}

	return &output.PaymentResult{
		Success:     true,
		Reference:   reference,
		Message:     "payment initiated successfully",
		Status:      core.StatusPending,
		CheckoutURL: data.AuthorizationURL,
		RawResponse: raw,
	}, nil
}

func (g *PaystackGateway) VerifyPayment(ctx context.Context, reference string) (*output.VerificationResult, error) {
	raw, status, err := g.client.getJSON(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("paystack verify: decode response: %w", err)
	}

	if !is2xx(status) || !env.Status {
		return &output.VerificationResult{
			Success:     false,
			Reference:   reference,
			Message:     messageOr(env.Message, "unknown error occurred during verification"),
			Status:      core.StatusFailed,
			RawResponse: raw,
		}, nil
	}

	var data struct {
		Status   string          `json:"status"`
		Amount   int64           `json:"amount"`
		Currency string          `json:"currency"`
		PaidAt   string          `json:"paid_at"`
		Fees     int64           `json:"fees"`
		Channel  string          `json:"channel"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack verify: decode data: %w", err)
	}

	return &output.VerificationResult{
		Success:     true,
		Reference:   reference,
		Message:     "payment verification successful",
		Status:      paystackStatus(data.Status),
		Amount:      decimal.NewFromInt(data.Amount).Div(subunitFactor),
		Currency:    data.Currency,
		PaymentDate: parseGatewayTime(data.PaidAt),
		Fee:         decimal.NewFromInt(data.Fees).Div(subunitFactor),
		RawResponse: raw,
	}, nil
}

func (g *PaystackGateway) RefundPayment(ctx context.Context, req output.RefundRequest) (*output.RefundResult, error) {
	g.log.Info("processing refund", zap.String("reference", req.Reference))

	payload := map[string]any{
		"transaction":   req.Reference,
		"amount":        req.Amount.Mul(subunitFactor).IntPart(),
		"merchant_note": req.Reason,
	}

	raw, status, err := g.client.postJSON(ctx, "/refund", payload)
	if err != nil {
		return nil, fmt.Errorf("paystack refund: %w", err)
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("paystack refund: decode response: %w", err)
	}

	if !is2xx(status) || !env.Status {
		return &output.RefundResult{
			Success:     false,
			Message:     messageOr(env.Message, "unknown error occurred during refund"),
			Status:      core.StatusFailed,
			RawResponse: raw,
		}, nil
	}

	var data struct {
		ID        json.Number `json:"id"`
		Amount    int64       `json:"amount"`
		CreatedAt string      `json:"created_at"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack refund: decode data: %w", err)
	}

	return &output.RefundResult{
		Success:         true,
		RefundReference: data.ID.String(),
		Message:         "refund processed successfully",
		Amount:          decimal.NewFromInt(data.Amount).Div(subunitFactor),
		Status:          core.StatusRefunded,
		RefundDate:      parseGatewayTime(data.CreatedAt),
		RawResponse:     raw,
	}, nil
}

// SavePaymentMethod stores the customer and authorization token with
// Paystack so later charges can reuse it.
func (g *PaystackGateway) SavePaymentMethod(ctx context.Context, req output.PaymentMethodRequest) (*output.PaymentMethodResult, error) {
	payload := map[string]any{
		"email":              req.CustomerEmail,
		"first_name":         req.CustomerName,
		"authorization_code": req.Token,
		"default":            req.MakeDefault,
	}

	raw, status, err := g.client.postJSON(ctx, "/customer", payload)
	if err != nil {
		return nil, fmt.Errorf("paystack save payment method: %w", err)
	}

	var env paystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("paystack save payment method: decode response: %w", err)
	}

	if !is2xx(status) || !env.Status {
		return &output.PaymentMethodResult{
			Success:     false,
			Message:     messageOr(env.Message, "unknown error occurred"),
			RawResponse: raw,
		}, nil
	}

	return &output.PaymentMethodResult{
		Success:     true,
		MethodToken: req.Token,
		Message:     "payment method saved",
		RawResponse: raw,
	}, nil
}

// paystackStatus maps Paystack's status vocabulary onto the domain model.
func paystackStatus(s string) core.Status {
	switch s {
	case "success":
		return core.StatusSuccessful
	case "failed":
		return core.StatusFailed
	case "abandoned":
		return core.StatusCancelled
	default:
		return core.StatusPending
	}
}

func parseGatewayTime(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
