package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

const flutterwaveBaseURL = "https://api.flutterwave.com"

// FlutterwaveGateway is the adapter for the Flutterwave v3 REST API. Refunds
// and saved payment methods are capability gaps: Supports reports them
// absent and the orchestrator never calls the stubs.
type FlutterwaveGateway struct {
	client *apiClient
	node   *snowflake.Node
	log    *zap.Logger
}

// NewFlutterwaveGateway builds the adapter. baseURL overrides the
// production endpoint, used by tests; empty means production.
func NewFlutterwaveGateway(secretKey, baseURL string, node *snowflake.Node, timeout time.Duration, log *zap.Logger) (*FlutterwaveGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("flutterwave secret key is required")
	}
	if baseURL == "" {
		baseURL = flutterwaveBaseURL
	}
	return &FlutterwaveGateway{
		client: newAPIClient(baseURL, secretKey, timeout),
		node:   node,
		log:    log.Named("gateway.flutterwave"),
	}, nil
}

func (g *FlutterwaveGateway) Provider() core.Provider {
	return core.ProviderFlutterwave
}

func (g *FlutterwaveGateway) Supports(c output.Capability) bool {
	return false
}

// flutterwaveEnvelope is the common response wrapper: a string status
// ("success"/"error"), a message and a data object.
type flutterwaveEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e flutterwaveEnvelope) ok() bool {
	return e.Status == "success"
}

func (g *FlutterwaveGateway) CreatePayment(ctx context.Context, req output.PaymentRequest) (*output.PaymentResult, error) {
	reference := newReference(g.node, core.ProviderFlutterwave)
	g.log.Info("initiating payment",
		zap.String("email", req.CustomerEmail),
		zap.String("reference", reference))

	payload := map[string]any{
		"tx_ref":       reference,
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]string{
			"email": req.CustomerEmail,
			"name":  req.CustomerName,
		},
		"meta": req.Metadata,
	}

	raw, status, err := g.client.postJSON(ctx, "/v3/payments", payload)
	if err != nil {
		return nil, fmt.Errorf("flutterwave initiate: %w", err)
	}

	var env flutterwaveEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("flutterwave initiate: decode response: %w", err)
	}

	if !is2xx(status) || !env.ok() {
		g.log.Warn("payment initiation declined", zap.String("message", env.Message))
		return &output.PaymentResult{
			Success:     false,
			Message:     messageOr(env.Message, "unknown error occurred"),
			Status:      core.StatusFailed,
			RawResponse: raw,
		}, nil
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave initiate: decode data: %w", err)
	}

	return &output.PaymentResult{
		Success:     true,
		Reference:   reference,
		Message:     "payment initiated successfully",
		Status:      core.StatusPending,
		CheckoutURL: data.Link,
		RawResponse: raw,
	}, nil
}

func (g *FlutterwaveGateway) VerifyPayment(ctx context.Context, reference string) (*output.VerificationResult, error) {
	path := "/v3/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	raw, status, err := g.client.getJSON(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("flutterwave verify: %w", err)
	}

	var env flutterwaveEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("flutterwave verify: decode response: %w", err)
	}

	if !is2xx(status) || !env.ok() {
		return &output.VerificationResult{
			Success:     false,
			Reference:   reference,
			Message:     messageOr(env.Message, "unknown error occurred during verification"),
			Status:      core.StatusFailed,
			RawResponse: raw,
		}, nil
	}

	var data struct {
		Status    string          `json:"status"`
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
		CreatedAt string          `json:"created_at"`
		AppFee    decimal.Decimal `json:"app_fee"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave verify: decode data: %w", err)
	}

	return &output.VerificationResult{
		Success:     true,
		Reference:   reference,
		Message:     "payment verification successful",
		Status:      flutterwaveStatus(data.Status),
		Amount:      data.Amount,
		Currency:    data.Currency,
		PaymentDate: parseGatewayTime(data.CreatedAt),
		Fee:         data.AppFee,
		RawResponse: raw,
	}, nil
}

// RefundPayment is a capability gap; the orchestrator checks Supports first.
func (g *FlutterwaveGateway) RefundPayment(ctx context.Context, req output.RefundRequest) (*output.RefundResult, error) {
	return nil, fmt.Errorf("%w: flutterwave refunds", core.ErrNotSupported)
}

// SavePaymentMethod is a capability gap; the orchestrator checks Supports
// first.
func (g *FlutterwaveGateway) SavePaymentMethod(ctx context.Context, req output.PaymentMethodRequest) (*output.PaymentMethodResult, error) {
	return nil, fmt.Errorf("%w: flutterwave saved payment methods", core.ErrNotSupported)
}

// flutterwaveStatus maps Flutterwave's status vocabulary onto the domain
// model.
func flutterwaveStatus(s string) core.Status {
	switch s {
	case "successful":
		return core.StatusSuccessful
	case "failed":
		return core.StatusFailed
	case "abandoned":
		return core.StatusCancelled
	default:
		return core.StatusPending
	}
}
