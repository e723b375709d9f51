package service

import (
	"strings"

	"github.com/paybridge/payment-orchestrator/internal/core"
)

// currencyPreference maps a currency code to the gateways preferred for it,
// best first. Currencies not listed fall through to defaultPreference.
var currencyPreference = map[string][]core.Provider{
	"NGN": {core.ProviderPaystack, core.ProviderFlutterwave},
	"KES": {core.ProviderFlutterwave, core.ProviderPaystack},
	"GHS": {core.ProviderFlutterwave, core.ProviderPaystack},
	"UGX": {core.ProviderFlutterwave, core.ProviderPaystack},
	"TZS": {core.ProviderFlutterwave, core.ProviderPaystack},
	"ZAR": {core.ProviderFlutterwave, core.ProviderPaystack},
	"BHD": {core.ProviderBenefitPay},
	"KWD": {core.ProviderKnet},
}

var defaultPreference = []core.Provider{core.ProviderStripe, core.ProviderCheckout}

// Selector chooses the gateway handling a payment. It is a pure decision
// function over the registry contents; it never validates the caller's
// explicit choice (the orchestrator does that against the registry).
type Selector struct {
	registry *Registry
}

func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// Select returns the provider for a payment in the given currency.
//   - an explicit provider is returned unchanged (the caller's choice is
//     authoritative)
//   - a single-provider registry short-circuits every heuristic
//   - otherwise the currency preference table decides, first registered
//     provider wins
//   - when no preferred provider is registered the fallback is an arbitrary
//     registered one, deliberately non-deterministic; pass an explicit
//     provider to force determinism
//
// Select is total for a non-empty registry; an empty registry is a
// configuration error the orchestrator surfaces before calling here.
func (s *Selector) Select(currency string, explicit core.Provider) core.Provider {
	if explicit != core.ProviderAutomatic {
		return explicit
	}

	if s.registry.Len() == 1 {
		return s.registry.All()[0]
	}

	preferred, ok := currencyPreference[strings.ToUpper(currency)]
	if !ok {
		preferred = defaultPreference
	}
	for _, p := range preferred {
		if s.registry.Has(p) {
			return p
		}
	}
	return s.registry.Any()
}
