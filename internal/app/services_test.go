//go:build !integration

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/mocks"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

var storeUnits = calculator.UnitDefaults{Dimension: "in", Area: "sq. ft.", Volume: "cu. ft.", Weight: "lbs"}

func testConfig() config.Config {
	return config.Config{
		Cache:   config.CacheConfig{Size: 100, TTL: time.Minute},
		Pricing: config.PricingConfig{Precision: 3, RoundPrices: true, PriceDecimals: 2},
		Units:   storeUnits,
		Database: config.DatabaseConfig{
			Driver: config.DriverNone,
		},
	}
}

func TestInitializeServices_WithoutStorage(t *testing.T) {
	components := InitializeServices(testConfig(), nil)
	t.Cleanup(components.Stop)

	require.NotNil(t, components.Pricing)
	require.NotNil(t, components.Catalog)
	require.NotNil(t, components.Snapshots)

	ctx := context.Background()
	assert.Equal(t, storeUnits, components.UnitDefaults.Units(ctx))

	_, err := components.UnitDefaults.GetActive(ctx)
	assert.ErrorIs(t, err, service.ErrRepositoryNotConfigured)

	_, err = components.Quotes.Get(ctx, "q1")
	assert.ErrorIs(t, err, service.ErrRepositoryNotConfigured)

	_, err = components.Catalog.GetProduct(ctx, "p1")
	assert.ErrorIs(t, err, service.ErrRepositoryNotConfigured)

	conv, err := components.Pricing.Convert(12, "in", "ft")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, conv.Result, 1e-9)
}

func TestInitializeServices_SeedsUnitDefaults(t *testing.T) {
	active := &model.UnitDefaultsConfig{ID: "u1", Units: storeUnits, Active: true, Version: 1}

	tests := []struct {
		name      string
		setupMock func(*mocks.MockUnitDefaultsRepositoryInterface)
	}{
		{
			name: "no active config creates default",
			setupMock: func(m *mocks.MockUnitDefaultsRepositoryInterface) {
				m.On("GetActive", mock.Anything).Return(nil, nil).Once()
				m.On("Create", mock.Anything, storeUnits, "system").Return(active, nil).Once()
			},
		},
		{
			name: "active config exists skips creation",
			setupMock: func(m *mocks.MockUnitDefaultsRepositoryInterface) {
				m.On("GetActive", mock.Anything).Return(active, nil).Once()
			},
		},
		{
			name: "storage error is not fatal",
			setupMock: func(m *mocks.MockUnitDefaultsRepositoryInterface) {
				m.On("GetActive", mock.Anything).Return(nil, errors.New("connection refused")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockUnitDefaultsRepositoryInterface{}
			tt.setupMock(repo)

			components := InitializeServices(testConfig(), &StorageComponents{Driver: "mock", UnitDefaults: repo})
			t.Cleanup(components.Stop)

			assert.NotNil(t, components.Pricing)
			repo.AssertExpectations(t)
		})
	}
}

func TestInitializeServices_UnitChangeClearsSnapshots(t *testing.T) {
	ctx := context.Background()

	units := &mocks.MockUnitDefaultsRepositoryInterface{}
	units.On("GetActive", mock.Anything).Return(&model.UnitDefaultsConfig{ID: "u1", Units: storeUnits, Active: true}, nil)
	units.On("Create", mock.Anything, storeUnits, "admin").Return(&model.UnitDefaultsConfig{ID: "u2", Units: storeUnits, Active: true}, nil).Once()

	settings := &mocks.MockCalculatorSettingsRepositoryInterface{}
	settings.On("Get", mock.Anything, "p1").Return(nil, nil)

	components := InitializeServices(testConfig(), &StorageComponents{Driver: "mock", UnitDefaults: units, Settings: settings})
	t.Cleanup(components.Stop)

	for i := 0; i < 2; i++ {
		_, _, err := components.Snapshots.Load(ctx, "p1")
		require.NoError(t, err)
	}
	settings.AssertNumberOfCalls(t, "Get", 1)

	_, err := components.UnitDefaults.Create(ctx, storeUnits, "admin")
	require.NoError(t, err)

	_, _, err = components.Snapshots.Load(ctx, "p1")
	require.NoError(t, err)
	settings.AssertNumberOfCalls(t, "Get", 2)
}
