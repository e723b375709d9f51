package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paybridge/payment-orchestrator/internal/port/input"
)

// WebhookHandler receives inbound gateway notifications. The payload shape
// is not known in advance; classification happens in the core.
type WebhookHandler struct {
	payments input.PaymentService
}

func NewWebhookHandler(payments input.PaymentService) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// HandleWebhook handles POST /webhooks. An unclassifiable payload is
// rejected with 400; it is never guessed at.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable payload", Code: "INVALID_WEBHOOK"})
	}

	resp, err := h.payments.ProcessWebhook(c.Request().Context(), payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toVerificationResponse(resp))
}
