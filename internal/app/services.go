// Package app provides service initialization.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

const snapshotCacheShards = 16

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Pricing      service.PricingService
	Catalog      service.CatalogService
	Quotes       service.QuotesService
	UnitDefaults service.UnitDefaultsService
	Snapshots    *service.SettingsStore

	snapshotCache *service.ShardedCache
}

// Stop releases background resources held by the services.
func (s *ServiceComponents) Stop() {
	if s != nil && s.snapshotCache != nil {
		s.snapshotCache.Stop()
	}
}

// InitializeServices initializes business logic services over storage.
func InitializeServices(cfg config.Config, storage *StorageComponents) *ServiceComponents {
	if storage == nil {
		storage = &StorageComponents{Driver: config.DriverNone}
	}

	snapshotCache := service.NewShardedCache(cfg.Cache.Size, cfg.Cache.TTL, snapshotCacheShards)

	// Default settings are built from the store units, so a unit change
	// makes every cached snapshot stale.
	var snapshots *service.SettingsStore
	units := service.NewUnitDefaultsService(storage.UnitDefaults, cfg.Units, func() {
		snapshots.InvalidateAll()
	})
	snapshots = service.NewSettingsStore(storage.Settings, storage.PricingRules, units, snapshotCache)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := units.Seed(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize default unit defaults")
	}

	quotes := service.NewQuotesService(storage.Quotes)

	// Pricing only persists quotes when there is somewhere to put them.
	var recorder service.QuotesService
	if storage.Quotes != nil {
		recorder = quotes
	}

	opts := []service.PricingOption{
		service.WithPrecision(cfg.Pricing.Precision),
		service.WithStrictConversions(cfg.Pricing.StrictConversions),
	}
	if cfg.Pricing.RoundPrices {
		opts = append(opts, service.WithPriceRounding(int32(cfg.Pricing.PriceDecimals)))
	}

	return &ServiceComponents{
		Pricing:       service.NewPricingService(storage.Products, snapshots, units, recorder, opts...),
		Catalog:       service.NewCatalogService(storage.Products, storage.Settings, storage.PricingRules, snapshots),
		Quotes:        quotes,
		UnitDefaults:  units,
		Snapshots:     snapshots,
		snapshotCache: snapshotCache,
	}
}
