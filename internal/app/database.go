// Package app provides database initialization and setup.
package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/circuitbreaker"
	"github.com/guttosm/measure-pricing-service/internal/http"
	"github.com/guttosm/measure-pricing-service/internal/metrics"
	"github.com/guttosm/measure-pricing-service/internal/repository"
)

// Circuit breaker names, also used as metric labels.
const (
	catalogBreaker      = "mongodb_catalog"
	unitDefaultsBreaker = "mongodb_unit_defaults"
	quotesBreaker       = "mongodb_quotes"
)

// StorageComponents holds the repositories of the configured driver. All
// repositories are nil when storage is disabled.
type StorageComponents struct {
	Driver       string
	Products     repository.ProductsRepositoryInterface
	Settings     repository.CalculatorSettingsRepositoryInterface
	PricingRules repository.PricingRulesRepositoryInterface
	UnitDefaults repository.UnitDefaultsRepositoryInterface
	Quotes       repository.QuotesRepositoryInterface

	// Checker probes the backend for readiness; nil without storage.
	Checker         http.HealthChecker
	CircuitBreakers map[string]*circuitbreaker.CircuitBreaker

	close func(ctx context.Context) error
}

// Close releases the storage connection.
func (s *StorageComponents) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// InitializeDatabase opens the configured storage driver. A backend that
// cannot be reached is logged and the service continues without storage.
func InitializeDatabase(cfg config.DatabaseConfig) *StorageComponents {
	switch cfg.Driver {
	case config.DriverMongo:
		if s := initializeMongo(cfg); s != nil {
			return s
		}
	case config.DriverSQLite:
		if s := initializeSQLite(cfg); s != nil {
			return s
		}
	}
	log.Warn().Str("driver", cfg.Driver).Msg("Running without storage - prices are not persisted")
	return &StorageComponents{Driver: config.DriverNone}
}

func initializeMongo(cfg config.DatabaseConfig) *StorageComponents {
	db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing without database")
		return nil
	}
	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.SetQuotesTTL(ctx, cfg.QuotesTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to set quotes TTL index")
	}

	catalogCB := newCircuitBreaker(cfg, catalogBreaker)
	unitsCB := newCircuitBreaker(cfg, unitDefaultsBreaker)
	quotesCB := newCircuitBreaker(cfg, quotesBreaker)

	return &StorageComponents{
		Driver:       config.DriverMongo,
		Products:     repository.NewProductsRepositoryWithCircuitBreaker(repository.NewProductsRepository(db), catalogCB),
		Settings:     repository.NewCalculatorSettingsRepositoryWithCircuitBreaker(repository.NewCalculatorSettingsRepository(db), catalogCB),
		PricingRules: repository.NewPricingRulesRepositoryWithCircuitBreaker(repository.NewPricingRulesRepository(db), catalogCB),
		UnitDefaults: repository.NewUnitDefaultsRepositoryWithCircuitBreaker(repository.NewUnitDefaultsRepository(db), unitsCB),
		Quotes:       repository.NewQuotesRepositoryWithCircuitBreaker(repository.NewQuotesRepository(db), quotesCB),
		Checker:      db,
		CircuitBreakers: map[string]*circuitbreaker.CircuitBreaker{
			catalogBreaker:      catalogCB,
			unitDefaultsBreaker: unitsCB,
			quotesBreaker:       quotesCB,
		},
		close: db.Close,
	}
}

func initializeSQLite(cfg config.DatabaseConfig) *StorageComponents {
	store, err := repository.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to open SQLite - continuing without database")
		return nil
	}
	log.Info().Str("path", cfg.SQLitePath).Msg("Opened SQLite store")

	return &StorageComponents{
		Driver:       config.DriverSQLite,
		Products:     store.Products(),
		Settings:     store.Settings(),
		PricingRules: store.PricingRules(),
		UnitDefaults: store.UnitDefaults(),
		Quotes:       store.Quotes(),
		Checker:      store,
		close:        func(context.Context) error { return store.Close() },
	}
}

// newCircuitBreaker builds a breaker that publishes its state as a metric.
// The breaker logs its own transitions.
func newCircuitBreaker(cfg config.DatabaseConfig, name string) *circuitbreaker.CircuitBreaker {
	metrics.SetCircuitBreakerState(name, int(circuitbreaker.StateClosed))
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
}
