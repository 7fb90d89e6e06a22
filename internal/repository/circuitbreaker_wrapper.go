// Package repository provides circuit breaker wrappers for storage operations.
package repository

import (
	"context"
	"errors"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/circuitbreaker"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
)

// guarded runs fn through the breaker and returns its result. ErrNotFound
// is a valid answer and does not count as a breaker failure.
func guarded[T any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var (
		result   T
		notFound bool
	)
	err := cb.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = fn()
		if errors.Is(cbErr, ErrNotFound) {
			notFound = true
			return nil
		}
		return cbErr
	})
	if notFound {
		return result, ErrNotFound
	}
	return result, err
}

// ProductsRepositoryWithCircuitBreaker wraps a products repository with circuit breaker protection.
type ProductsRepositoryWithCircuitBreaker struct {
	repo           ProductsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewProductsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewProductsRepositoryWithCircuitBreaker(repo ProductsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *ProductsRepositoryWithCircuitBreaker {
	return &ProductsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

func (r *ProductsRepositoryWithCircuitBreaker) Get(ctx context.Context, id string) (*model.Product, error) {
	return guarded(ctx, r.circuitBreaker, func() (*model.Product, error) { return r.repo.Get(ctx, id) })
}

func (r *ProductsRepositoryWithCircuitBreaker) Save(ctx context.Context, product *model.Product) error {
	return r.circuitBreaker.Execute(ctx, func() error { return r.repo.Save(ctx, product) })
}

func (r *ProductsRepositoryWithCircuitBreaker) List(ctx context.Context, limit int) ([]model.Product, error) {
	return guarded(ctx, r.circuitBreaker, func() ([]model.Product, error) { return r.repo.List(ctx, limit) })
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *ProductsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// CalculatorSettingsRepositoryWithCircuitBreaker wraps a settings repository with circuit breaker protection.
type CalculatorSettingsRepositoryWithCircuitBreaker struct {
	repo           CalculatorSettingsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewCalculatorSettingsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewCalculatorSettingsRepositoryWithCircuitBreaker(repo CalculatorSettingsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *CalculatorSettingsRepositoryWithCircuitBreaker {
	return &CalculatorSettingsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

func (r *CalculatorSettingsRepositoryWithCircuitBreaker) Get(ctx context.Context, productID string) (calculator.Record, error) {
	return guarded(ctx, r.circuitBreaker, func() (calculator.Record, error) { return r.repo.Get(ctx, productID) })
}

func (r *CalculatorSettingsRepositoryWithCircuitBreaker) Save(ctx context.Context, productID string, rec calculator.Record) error {
	return r.circuitBreaker.Execute(ctx, func() error { return r.repo.Save(ctx, productID, rec) })
}

// PricingRulesRepositoryWithCircuitBreaker wraps a pricing rules repository with circuit breaker protection.
type PricingRulesRepositoryWithCircuitBreaker struct {
	repo           PricingRulesRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewPricingRulesRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewPricingRulesRepositoryWithCircuitBreaker(repo PricingRulesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *PricingRulesRepositoryWithCircuitBreaker {
	return &PricingRulesRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

func (r *PricingRulesRepositoryWithCircuitBreaker) Get(ctx context.Context, productID string) (pricing.Rules, error) {
	return guarded(ctx, r.circuitBreaker, func() (pricing.Rules, error) { return r.repo.Get(ctx, productID) })
}

func (r *PricingRulesRepositoryWithCircuitBreaker) Save(ctx context.Context, productID string, rules pricing.Rules) error {
	return r.circuitBreaker.Execute(ctx, func() error { return r.repo.Save(ctx, productID, rules) })
}

// UnitDefaultsRepositoryWithCircuitBreaker wraps a unit defaults repository with circuit breaker protection.
type UnitDefaultsRepositoryWithCircuitBreaker struct {
	repo           UnitDefaultsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewUnitDefaultsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewUnitDefaultsRepositoryWithCircuitBreaker(repo UnitDefaultsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *UnitDefaultsRepositoryWithCircuitBreaker {
	return &UnitDefaultsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// GetActive returns nil when the circuit is open so callers fall back to
// the configured defaults.
func (r *UnitDefaultsRepositoryWithCircuitBreaker) GetActive(ctx context.Context) (*model.UnitDefaultsConfig, error) {
	result, err := guarded(ctx, r.circuitBreaker, func() (*model.UnitDefaultsConfig, error) { return r.repo.GetActive(ctx) })
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, nil
	}
	return result, err
}

func (r *UnitDefaultsRepositoryWithCircuitBreaker) Create(ctx context.Context, units calculator.UnitDefaults, createdBy string) (*model.UnitDefaultsConfig, error) {
	return guarded(ctx, r.circuitBreaker, func() (*model.UnitDefaultsConfig, error) { return r.repo.Create(ctx, units, createdBy) })
}

func (r *UnitDefaultsRepositoryWithCircuitBreaker) Update(ctx context.Context, id string, units calculator.UnitDefaults, updatedBy string) (*model.UnitDefaultsConfig, error) {
	return guarded(ctx, r.circuitBreaker, func() (*model.UnitDefaultsConfig, error) { return r.repo.Update(ctx, id, units, updatedBy) })
}

func (r *UnitDefaultsRepositoryWithCircuitBreaker) List(ctx context.Context, limit int) ([]model.UnitDefaultsConfig, error) {
	return guarded(ctx, r.circuitBreaker, func() ([]model.UnitDefaultsConfig, error) { return r.repo.List(ctx, limit) })
}

// QuotesRepositoryWithCircuitBreaker wraps a quotes repository with circuit breaker protection.
type QuotesRepositoryWithCircuitBreaker struct {
	repo           QuotesRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewQuotesRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewQuotesRepositoryWithCircuitBreaker(repo QuotesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *QuotesRepositoryWithCircuitBreaker {
	return &QuotesRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// Create drops the quote silently when the circuit is open; a price is
// still returned to the customer.
func (r *QuotesRepositoryWithCircuitBreaker) Create(ctx context.Context, quote *model.Quote) error {
	err := r.circuitBreaker.Execute(ctx, func() error { return r.repo.Create(ctx, quote) })
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

func (r *QuotesRepositoryWithCircuitBreaker) Get(ctx context.Context, id string) (*model.Quote, error) {
	return guarded(ctx, r.circuitBreaker, func() (*model.Quote, error) { return r.repo.Get(ctx, id) })
}

func (r *QuotesRepositoryWithCircuitBreaker) Query(ctx context.Context, opts model.QuoteQueryOptions) ([]*model.Quote, error) {
	return guarded(ctx, r.circuitBreaker, func() ([]*model.Quote, error) { return r.repo.Query(ctx, opts) })
}

func (r *QuotesRepositoryWithCircuitBreaker) Count(ctx context.Context, opts model.QuoteQueryOptions) (int64, error) {
	return guarded(ctx, r.circuitBreaker, func() (int64, error) { return r.repo.Count(ctx, opts) })
}
