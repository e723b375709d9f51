package service

import (
	"fmt"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

// Registry holds the configured gateway adapters keyed by provider identity.
// It is built once at startup and read-only afterwards, so lookups need no
// synchronization.
type Registry struct {
	gateways map[core.Provider]output.Gateway
	order    []core.Provider
}

// NewRegistry builds a registry from the given adapters. A nil adapter or a
// duplicate provider is skipped with an error returned alongside the usable
// registry, so one bad adapter never aborts registration of the others.
func NewRegistry(gateways ...output.Gateway) (*Registry, []error) {
	r := &Registry{gateways: make(map[core.Provider]output.Gateway)}
	var errs []error
	for _, gw := range gateways {
		if err := r.register(gw); err != nil {
			errs = append(errs, err)
		}
	}
	return r, errs
}

func (r *Registry) register(gw output.Gateway) error {
	if gw == nil {
		return fmt.Errorf("nil gateway adapter")
	}
	p := gw.Provider()
	if p == core.ProviderAutomatic || p == "" {
		return fmt.Errorf("gateway adapter with invalid provider %q", p)
	}
	if _, exists := r.gateways[p]; exists {
		return fmt.Errorf("gateway %s registered twice", p)
	}
	r.gateways[p] = gw
	r.order = append(r.order, p)
	return nil
}

// Get returns the adapter for the provider, or core.ErrGatewayNotConfigured.
func (r *Registry) Get(p core.Provider) (output.Gateway, error) {
	gw, ok := r.gateways[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrGatewayNotConfigured, p)
	}
	return gw, nil
}

// Has reports whether the provider has a registered adapter.
func (r *Registry) Has(p core.Provider) bool {
	_, ok := r.gateways[p]
	return ok
}

// All returns the registered providers in registration order.
func (r *Registry) All() []core.Provider {
	out := make([]core.Provider, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.gateways)
}

// Any returns an arbitrary registered provider. Map iteration keeps the
// choice intentionally non-deterministic; callers needing a stable choice
// must name a provider explicitly.
func (r *Registry) Any() core.Provider {
	for p := range r.gateways {
		return p
	}
	return core.ProviderAutomatic
}
