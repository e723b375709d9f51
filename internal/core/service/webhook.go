package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paybridge/payment-orchestrator/internal/core"
)

// WebhookClassification names the provider that sent an inbound notification
// and the transaction reference it refers to.
type WebhookClassification struct {
	Provider  core.Provider
	Reference string
}

// webhookRule pairs a provider-distinguishing marker predicate with that
// provider's reference extractor.
type webhookRule struct {
	provider core.Provider
	match    func(payload map[string]any) bool
	extract  func(payload map[string]any) string
}

// webhookRules is evaluated in order; the order is a contract under test
// because two providers could coincidentally share a marker field.
var webhookRules = []webhookRule{
	{
		// Paystack notifications carry an "event" field with the payment
		// data nested under "data".
		provider: core.ProviderPaystack,
		match:    func(p map[string]any) bool { return hasKey(p, "event") },
		extract:  func(p map[string]any) string { return stringAt(p, "data", "reference") },
	},
	{
		// Flutterwave notifications carry the gateway's own "flw_ref" and
		// the merchant reference as top-level "tx_ref".
		provider: core.ProviderFlutterwave,
		match:    func(p map[string]any) bool { return hasKey(p, "flw_ref") },
		extract:  func(p map[string]any) string { return stringAt(p, "tx_ref") },
	},
	{
		// Stripe events carry a namespaced "type"; the merchant reference
		// travels in the event object's metadata.
		provider: core.ProviderStripe,
		match: func(p map[string]any) bool {
			t, ok := p["type"].(string)
			return ok && strings.HasPrefix(t, "stripe.")
		},
		extract: func(p map[string]any) string {
			return stringAt(p, "data", "object", "metadata", "reference")
		},
	},
	{
		// Checkout.com notifications are HAL-shaped and always include
		// "_links".
		provider: core.ProviderCheckout,
		match:    func(p map[string]any) bool { return hasKey(p, "_links") },
		extract:  func(p map[string]any) string { return stringAt(p, "data", "reference") },
	},
}

// commonReferenceKeys are tried top-level when a matched provider's known
// field path yields nothing.
var commonReferenceKeys = []string{"reference", "transaction_reference", "txn_ref", "id"}

// ClassifyWebhook inspects an arbitrary notification payload's shape and
// infers which provider sent it plus the reference it refers to. No schema
// is registered in advance; classification is purely structural. An
// unmatched shape or a missing reference returns core.ErrInvalidWebhook;
// callers must reject, never guess.
func ClassifyWebhook(payload []byte) (*WebhookClassification, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidWebhook, err)
	}

	for _, rule := range webhookRules {
		if !rule.match(data) {
			continue
		}
		ref := rule.extract(data)
		if ref == "" {
			ref = firstCommonReference(data)
		}
		if ref == "" {
			return nil, fmt.Errorf("%w: %s payload carries no reference", core.ErrInvalidWebhook, rule.provider)
		}
		return &WebhookClassification{Provider: rule.provider, Reference: ref}, nil
	}

	return nil, fmt.Errorf("%w: no provider marker matched", core.ErrInvalidWebhook)
}

func firstCommonReference(payload map[string]any) string {
	for _, key := range commonReferenceKeys {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func hasKey(payload map[string]any, key string) bool {
	_, ok := payload[key]
	return ok
}

// stringAt walks nested objects along path and returns the string leaf, or
// "" when any hop is missing or of the wrong shape.
func stringAt(payload map[string]any, path ...string) string {
	current := any(payload)
	for i, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = node[key]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			s, _ := current.(string)
			return s
		}
	}
	return ""
}
