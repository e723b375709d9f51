package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

// Resolver determines the owning provider for a transaction reference that
// was not explicitly supplied.
type Resolver struct {
	repo            output.TransactionRepository
	defaultProvider core.Provider
	log             *zap.Logger
}

func NewResolver(repo output.TransactionRepository, defaultProvider core.Provider, log *zap.Logger) *Resolver {
	return &Resolver{
		repo:            repo,
		defaultProvider: defaultProvider,
		log:             log.Named("payment.resolver"),
	}
}

// Resolve returns the provider owning the reference. Precedence, first match
// wins:
//
//  1. the transaction store's recorded provider (authoritative)
//  2. the reference prefix convention, longest known prefix first
//  3. the deployment's configured default provider
//
// Resolve never fails: an unresolvable reference degrades to the default so
// verification stays attemptable even for externally-originated references.
func (r *Resolver) Resolve(ctx context.Context, reference string) core.Provider {
	tx, err := r.repo.GetByReference(ctx, reference)
	if err == nil && tx != nil {
		return tx.Provider
	}

	if p, ok := core.ProviderForPrefix(reference); ok {
		return p
	}

	r.log.Warn("could not determine gateway from reference, using default",
		zap.String("reference", reference),
		zap.String("default", r.defaultProvider.String()))
	return r.defaultProvider
}
