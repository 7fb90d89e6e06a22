package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"github.com/guttosm/measure-pricing-service/internal/repository"
)

// ErrProductNotFound is returned when a product id matches nothing.
var ErrProductNotFound = errors.New("product not found")

// CatalogService administers products and their calculator configuration.
type CatalogService interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	SaveProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	ListProducts(ctx context.Context, limit int) ([]model.Product, error)
	// GetSettings returns the product's settings record migrated to the
	// current schema, or the defaults when none is stored.
	GetSettings(ctx context.Context, productID string) (calculator.Record, error)
	// SaveSettings validates and stores a settings record, normalized to
	// the current schema.
	SaveSettings(ctx context.Context, productID string, rec calculator.Record) (calculator.Record, error)
	GetPricingRules(ctx context.Context, productID string) (pricing.Rules, error)
	// SavePricingRules replaces the product's rules with the valid subset
	// of raw, in submitted order.
	SavePricingRules(ctx context.Context, productID string, raw []pricing.RawRule) (pricing.Rules, error)
}

// CatalogServiceImpl implements CatalogService.
type CatalogServiceImpl struct {
	products repository.ProductsRepositoryInterface
	settings repository.CalculatorSettingsRepositoryInterface
	rules    repository.PricingRulesRepositoryInterface
	store    *SettingsStore
}

// NewCatalogService creates a catalog service. Writes invalidate the
// product's cached snapshot in store.
func NewCatalogService(
	products repository.ProductsRepositoryInterface,
	settings repository.CalculatorSettingsRepositoryInterface,
	rules repository.PricingRulesRepositoryInterface,
	store *SettingsStore,
) *CatalogServiceImpl {
	return &CatalogServiceImpl{products: products, settings: settings, rules: rules, store: store}
}

func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return getProduct(ctx, s.products, id)
}

func getProduct(ctx context.Context, repo repository.ProductsRepositoryInterface, id string) (*model.Product, error) {
	if repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	product, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *CatalogServiceImpl) SaveProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if s.products == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	log.Info().Str("product_id", product.ID).Msg("product saved")
	return product, nil
}

func validateProduct(p *model.Product) error {
	var errs calculator.ValidationErrors
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, calculator.FieldError{Field: "id", Message: "Product id missing."})
	}
	if p.Price.IsNegative() {
		errs = append(errs, calculator.FieldError{Field: "price", Message: "Price must not be negative."})
	}
	if p.MinimumPrice.Valid && p.MinimumPrice.Decimal.IsNegative() {
		errs = append(errs, calculator.FieldError{Field: "minimum_price", Message: "Minimum price must not be negative."})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *CatalogServiceImpl) ListProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if s.products == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.products.List(ctx, limit)
}

func (s *CatalogServiceImpl) GetSettings(ctx context.Context, productID string) (calculator.Record, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.Record(ctx, productID)
}

func (s *CatalogServiceImpl) SaveSettings(ctx context.Context, productID string, rec calculator.Record) (calculator.Record, error) {
	if s.settings == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	settings, err := calculator.Decode(rec)
	if err != nil {
		return nil, calculator.ValidationErrors{{Field: "calculator_type", Message: err.Error()}}
	}
	normalized := settings.Record()
	if err := s.settings.Save(ctx, productID, normalized); err != nil {
		return nil, err
	}
	s.store.Invalidate(productID)

	log.Info().
		Str("product_id", productID).
		Str("calculator_type", string(settings.CalculatorType())).
		Msg("calculator settings saved")
	return normalized, nil
}

func (s *CatalogServiceImpl) GetPricingRules(ctx context.Context, productID string) (pricing.Rules, error) {
	if s.rules == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	rules, err := s.rules.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = pricing.Rules{}
	}
	return rules, nil
}

func (s *CatalogServiceImpl) SavePricingRules(ctx context.Context, productID string, raw []pricing.RawRule) (pricing.Rules, error) {
	if s.rules == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	rules := pricing.FilterValid(raw)
	if err := s.rules.Save(ctx, productID, rules); err != nil {
		return nil, err
	}
	s.store.Invalidate(productID)

	log.Info().
		Str("product_id", productID).
		Int("submitted", len(raw)).
		Int("saved", len(rules)).
		Msg("pricing rules saved")
	return rules, nil
}
