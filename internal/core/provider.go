package core

import (
	"fmt"
	"strings"
)

// Provider identifies one external payment gateway.
type Provider string

const (
	// ProviderAutomatic is a sentinel meaning "let the selector decide".
	// It is never a valid owning provider on a stored transaction.
	ProviderAutomatic Provider = "automatic"

	ProviderFlutterwave Provider = "flutterwave"
	ProviderPaystack    Provider = "paystack"
	ProviderStripe      Provider = "stripe"
	ProviderCheckout    Provider = "checkout"
	ProviderBenefitPay  Provider = "benefitpay"
	ProviderKnet        Provider = "knet"
)

// Providers lists every concrete gateway identity (Automatic excluded).
var Providers = []Provider{
	ProviderFlutterwave,
	ProviderPaystack,
	ProviderStripe,
	ProviderCheckout,
	ProviderBenefitPay,
	ProviderKnet,
}

// referencePrefixes maps each provider's reference prefix convention to its
// identity. Adapters generate references carrying these prefixes so that a
// reference alone is enough to route a verification call.
var referencePrefixes = map[string]Provider{
	"ST_": ProviderStripe,
	"PS_": ProviderPaystack,
	"FW_": ProviderFlutterwave,
	"CO_": ProviderCheckout,
	"BP_": ProviderBenefitPay,
	"KN_": ProviderKnet,
}

// ParseProvider converts a string into a Provider. The empty string maps to
// ProviderAutomatic so optional request fields default to automatic selection.
func ParseProvider(s string) (Provider, error) {
	if s == "" {
		return ProviderAutomatic, nil
	}
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == ProviderAutomatic {
		return ProviderAutomatic, nil
	}
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidRequest, s)
}

// ProviderForPrefix returns the provider whose reference prefix matches ref.
// The longest matching prefix wins; ok is false when no prefix matches.
func ProviderForPrefix(ref string) (Provider, bool) {
	var (
		best    Provider
		bestLen int
		found   bool
	)
	for prefix, provider := range referencePrefixes {
		if strings.HasPrefix(ref, prefix) && len(prefix) > bestLen {
			best = provider
			bestLen = len(prefix)
			found = true
		}
	}
	return best, found
}

// ReferencePrefix returns the reference prefix assigned to the provider,
// without the trailing underscore separator.
func (p Provider) ReferencePrefix() string {
	for prefix, provider := range referencePrefixes {
		if provider == p {
			return strings.TrimSuffix(prefix, "_")
		}
	}
	return ""
}

func (p Provider) String() string {
	return string(p)
}
