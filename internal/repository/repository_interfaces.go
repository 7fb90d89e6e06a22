// Package repository provides interfaces for repository operations.
package repository

import (
	"context"
	"errors"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
)

// ErrNotFound is returned by updates addressing a missing document. Reads
// return nil, nil instead.
var ErrNotFound = errors.New("document not found")

// ProductsRepositoryInterface stores catalog products.
type ProductsRepositoryInterface interface {
	Get(ctx context.Context, id string) (*model.Product, error)
	Save(ctx context.Context, product *model.Product) error
	List(ctx context.Context, limit int) ([]model.Product, error)
}

// CalculatorSettingsRepositoryInterface stores raw calculator settings
// records, one per product. Records are returned as persisted, before migration.
type CalculatorSettingsRepositoryInterface interface {
	Get(ctx context.Context, productID string) (calculator.Record, error)
	Save(ctx context.Context, productID string, rec calculator.Record) error
}

// PricingRulesRepositoryInterface stores each product's ordered rule list.
// Save replaces the whole list.
type PricingRulesRepositoryInterface interface {
	Get(ctx context.Context, productID string) (pricing.Rules, error)
	Save(ctx context.Context, productID string, rules pricing.Rules) error
}

// UnitDefaultsRepositoryInterface stores versioned store unit defaults.
type UnitDefaultsRepositoryInterface interface {
	GetActive(ctx context.Context) (*model.UnitDefaultsConfig, error)
	Create(ctx context.Context, units calculator.UnitDefaults, createdBy string) (*model.UnitDefaultsConfig, error)
	Update(ctx context.Context, id string, units calculator.UnitDefaults, updatedBy string) (*model.UnitDefaultsConfig, error)
	List(ctx context.Context, limit int) ([]model.UnitDefaultsConfig, error)
}

// QuotesRepositoryInterface stores priced quotes.
type QuotesRepositoryInterface interface {
	Create(ctx context.Context, quote *model.Quote) error
	Get(ctx context.Context, id string) (*model.Quote, error)
	Query(ctx context.Context, opts model.QuoteQueryOptions) ([]*model.Quote, error)
	Count(ctx context.Context, opts model.QuoteQueryOptions) (int64, error)
}
