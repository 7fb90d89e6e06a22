package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"github.com/guttosm/measure-pricing-service/internal/repository"
	"github.com/guttosm/measure-pricing-service/internal/service/cache"
)

// snapshot is the cached form of a product's settings and rules. Rules are
// kept in their submitted text form so prices survive encoding exactly.
type snapshot struct {
	Settings *calculator.Settings `msgpack:"settings"`
	Rules    []pricing.RawRule    `msgpack:"rules"`
}

// SettingsStore loads a product's calculator settings and pricing rules,
// caching encoded snapshots. Every load hands out a private copy.
type SettingsStore struct {
	settings repository.CalculatorSettingsRepositoryInterface
	rules    repository.PricingRulesRepositoryInterface
	units    UnitDefaultsService
	cache    cache.Cache
}

// NewSettingsStore builds a store. Any repository may be nil, in which case
// products fall back to default settings and no rules. A nil cache disables
// caching.
func NewSettingsStore(
	settings repository.CalculatorSettingsRepositoryInterface,
	rules repository.PricingRulesRepositoryInterface,
	units UnitDefaultsService,
	c cache.Cache,
) *SettingsStore {
	return &SettingsStore{settings: settings, rules: rules, units: units, cache: c}
}

// Load returns the product's settings, migrated to the current schema, and
// its rules. Products without stored settings get the defaults built from
// the active store units.
func (s *SettingsStore) Load(ctx context.Context, productID string) (*calculator.Settings, pricing.Rules, error) {
	if snap, ok := s.cached(productID); ok {
		return snap.Settings, pricing.FilterValid(snap.Rules), nil
	}

	settings, err := s.loadSettings(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	var rules pricing.Rules
	if s.rules != nil {
		rules, err = s.rules.Get(ctx, productID)
		if err != nil {
			return nil, nil, fmt.Errorf("load pricing rules: %w", err)
		}
	}

	s.store(productID, settings, rules)
	return settings, rules, nil
}

// Record returns the product's stored record migrated to the current
// schema, or the default record when none is stored.
func (s *SettingsStore) Record(ctx context.Context, productID string) (calculator.Record, error) {
	settings, err := s.loadSettings(ctx, productID)
	if err != nil {
		return nil, err
	}
	return settings.Record(), nil
}

func (s *SettingsStore) loadSettings(ctx context.Context, productID string) (*calculator.Settings, error) {
	var rec calculator.Record
	if s.settings != nil {
		var err error
		rec, err = s.settings.Get(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("load calculator settings: %w", err)
		}
	}
	if len(rec) == 0 {
		return calculator.Default(s.units.Units(ctx)), nil
	}
	settings, err := calculator.Decode(rec)
	if err != nil {
		return nil, fmt.Errorf("decode calculator settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsStore) cached(productID string) (snapshot, bool) {
	if s.cache == nil {
		return snapshot{}, false
	}
	data, ok := s.cache.Get(productID)
	if !ok {
		return snapshot{}, false
	}
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil || snap.Settings == nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("dropping undecodable settings snapshot")
		s.cache.Invalidate(productID)
		return snapshot{}, false
	}
	return snap, true
}

func (s *SettingsStore) store(productID string, settings *calculator.Settings, rules pricing.Rules) {
	if s.cache == nil {
		return
	}
	snap := snapshot{Settings: settings, Rules: make([]pricing.RawRule, len(rules))}
	for i, r := range rules {
		snap.Rules[i] = r.Raw()
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("settings snapshot not cached")
		return
	}
	s.cache.Set(productID, data)
}

// Invalidate drops the cached snapshot of one product.
func (s *SettingsStore) Invalidate(productID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(productID)
	log.Debug().Str("product_id", productID).Msg("settings snapshot invalidated")
}

// InvalidateAll drops every cached snapshot. Default settings depend on the
// store units, so a unit defaults change invalidates everything.
func (s *SettingsStore) InvalidateAll() {
	if s.cache == nil {
		return
	}
	s.cache.Clear()
	log.Info().Msg("settings snapshots cleared")
}
