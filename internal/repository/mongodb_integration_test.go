//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/circuitbreaker"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func floatPtr(v float64) *float64 { return &v }

func TestMongoDB_HealthAndTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	defer func() { require.NoError(t, db.Close(ctx)) }()

	assert.NoError(t, db.HealthCheck(ctx))
	assert.NoError(t, db.SetQuotesTTL(ctx, 24*time.Hour))
	assert.NoError(t, db.SetQuotesTTL(ctx, 48*time.Hour))
	assert.NoError(t, db.SetQuotesTTL(ctx, 0))
}

func TestProductsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	defer func() { require.NoError(t, db.Close(ctx)) }()

	repo := NewProductsRepository(db)

	t.Run("missing product", func(t *testing.T) {
		p, err := repo.Get(ctx, "none")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("save, replace and list", func(t *testing.T) {
		p := &model.Product{
			ID:         "floor",
			Name:       "Floor",
			Price:      decimal.RequireFromString("2.99"),
			Dimensions: model.Dimensions{Length: floatPtr(4), Width: floatPtr(5)},
		}
		require.NoError(t, repo.Save(ctx, p))

		got, err := repo.Get(ctx, "floor")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, p.Price.Equal(got.Price))
		assert.Equal(t, 5.0, *got.Dimensions.Width)

		p.Name = "Floor v2"
		require.NoError(t, repo.Save(ctx, p))

		all, err := repo.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Floor v2", all[0].Name)
	})
}

func TestCalculatorSettingsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	defer func() { require.NoError(t, db.Close(ctx)) }()

	repo := NewCalculatorSettingsRepository(db)

	rec, err := repo.Get(ctx, "p")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// A legacy record without version or pricing sub-flags.
	legacy := calculator.Record{
		"calculator_type": "area-dimension",
		"area-dimension": map[string]any{
			"pricing": map[string]any{"enabled": "yes", "unit": "sq. ft."},
			"length":  map[string]any{"label": "Length", "unit": "ft", "options": []any{"1", "2"}},
			"width":   map[string]any{"label": "Width", "unit": "ft"},
		},
	}
	require.NoError(t, repo.Save(ctx, "p", legacy))

	rec, err = repo.Get(ctx, "p")
	require.NoError(t, err)
	settings, err := calculator.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, calculator.TypeAreaDimension, settings.CalculatorType())
	assert.True(t, settings.IsPricingEnabled())
	assert.False(t, settings.IsPricingInventoryEnabled())
	assert.Equal(t, calculator.AcceptedInputLimited, settings.AcceptedInput("length"))
}

func TestPricingRulesRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	defer func() { require.NoError(t, db.Close(ctx)) }()

	repo := NewPricingRulesRepository(db)

	rules, err := repo.Get(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, rules)

	in := pricing.Rules{
		{RangeStart: 0, RangeEnd: floatPtr(10), RegularPrice: decimal.RequireFromString("5")},
		{RangeStart: 10, RegularPrice: decimal.RequireFromString("8"), SalePrice: decimal.NewNullDecimal(decimal.RequireFromString("6.5"))},
	}
	require.NoError(t, repo.Save(ctx, "p", in))

	rules, err = repo.Get(ctx, "p")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Nil(t, rules[1].RangeEnd)
	assert.True(t, decimal.RequireFromString("6.5").Equal(rules[1].Price()))
}

func TestUnitDefaultsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	defer func() { require.NoError(t, db.Close(ctx)) }()

	repo := NewUnitDefaultsRepository(db)

	t.Run("get active when none exists", func(t *testing.T) {
		active, err := repo.GetActive(ctx)
		assert.NoError(t, err)
		assert.Nil(t, active)
	})

	t.Run("create new active deactivates old", func(t *testing.T) {
		first, err := repo.Create(ctx, calculator.UnitDefaults{Dimension: "in", Area: "sq. ft.", Volume: "cu. ft.", Weight: "lbs"}, "seed")
		require.NoError(t, err)
		second, err := repo.Create(ctx, calculator.UnitDefaults{Dimension: "cm", Area: "sq m", Volume: "cu m", Weight: "kg"}, "admin")
		require.NoError(t, err)

		active, err := repo.GetActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, second.ID, active.ID)
		assert.NotEqual(t, first.ID, active.ID)
	})

	t.Run("update corrects in place", func(t *testing.T) {
		active, err := repo.GetActive(ctx)
		require.NoError(t, err)

		updated, err := repo.Update(ctx, active.ID, calculator.UnitDefaults{Dimension: "mm", Area: "sq m", Volume: "cu m", Weight: "kg"}, "ops")
		require.NoError(t, err)
		assert.Equal(t, active.Version, updated.Version)
		assert.Equal(t, "mm", updated.Units.Dimension)
		assert.Equal(t, "ops", updated.UpdatedBy)
	})

	t.Run("update unknown id", func(t *testing.T) {
		_, err := repo.Update(ctx, "000000000000000000000000", calculator.UnitDefaults{}, "")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.Update(ctx, "bad", calculator.UnitDefaults{}, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		configs, err := repo.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, configs, 2)
		assert.True(t, configs[0].Active)
	})
}

func TestUnitDefaultsRepository_ActiveResolution_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	defer func() { require.NoError(t, db.Close(ctx)) }()

	repo := NewUnitDefaultsRepository(db)
	older := time.Now().Add(-time.Hour).UTC()
	stale := []any{
		UnitDefaultsDocument{ID: primitive.NewObjectID(), Units: calculator.UnitDefaults{Dimension: "in"}, Active: true, Version: 1, CreatedAt: older.Add(-time.Minute), UpdatedAt: older},
		UnitDefaultsDocument{ID: primitive.NewObjectID(), Units: calculator.UnitDefaults{Dimension: "ft"}, Active: true, Version: 1, CreatedAt: older, UpdatedAt: older},
	}
	_, err := db.UnitDefaults.InsertMany(ctx, stale)
	require.NoError(t, err)

	t.Run("newest active wins while several are active", func(t *testing.T) {
		active, err := repo.GetActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, "ft", active.Units.Dimension)
	})

	t.Run("create leaves exactly one active", func(t *testing.T) {
		created, err := repo.Create(ctx, calculator.UnitDefaults{Dimension: "cm"}, "admin")
		require.NoError(t, err)

		configs, err := repo.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, configs, 3)

		var active []string
		for _, c := range configs {
			if c.Active {
				active = append(active, c.ID)
			}
		}
		assert.Equal(t, []string{created.ID}, active)
	})
}

func TestQuotesRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)
	defer func() { require.NoError(t, db.Close(ctx)) }()

	repo := NewQuotesRepository(db)

	for _, productID := range []string{"a", "a", "b"} {
		q := &model.Quote{
			ProductID: productID,
			Inputs:    map[string]string{"length": "4"},
			Total:     model.QuoteMeasurement{Value: 22, Unit: "sq. ft."},
			Overage:   model.QuoteOverage{Percent: 0.1, Original: 20, Amount: 2},
			Price:     decimal.RequireFromString("71.5"),
			RequestID: "req-" + productID,
		}
		require.NoError(t, repo.Create(ctx, q))
		require.NotEmpty(t, q.ID)
	}

	quotes, err := repo.Query(ctx, model.QuoteQueryOptions{ProductID: "a"})
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	got, err := repo.Get(ctx, quotes[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "4", got.Inputs["length"])
	assert.True(t, decimal.RequireFromString("71.5").Equal(got.Price))

	n, err := repo.Count(ctx, model.QuoteQueryOptions{RequestID: "req-b"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRepositoriesWithCircuitBreaker_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDBFromSharedContainer(t)

	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             "test-storage",
	})
	units := NewUnitDefaultsRepositoryWithCircuitBreaker(NewUnitDefaultsRepository(db), cb)
	quotes := NewQuotesRepositoryWithCircuitBreaker(NewQuotesRepository(db), cb)
	products := NewProductsRepositoryWithCircuitBreaker(NewProductsRepository(db), cb)

	_, err := units.Create(ctx, calculator.UnitDefaults{Dimension: "in"}, "seed")
	require.NoError(t, err)

	_, err = units.Update(ctx, "000000000000000000000000", calculator.UnitDefaults{}, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, circuitbreaker.StateClosed, cb.State(), "not found is not a failure")

	// A closed client makes every call fail and trips the breaker.
	require.NoError(t, db.Close(ctx))
	_, err = products.Get(ctx, "x")
	require.Error(t, err)
	require.True(t, cb.IsOpen())

	active, err := units.GetActive(ctx)
	assert.NoError(t, err, "unit defaults fall back when open")
	assert.Nil(t, active)

	assert.NoError(t, quotes.Create(ctx, &model.Quote{ProductID: "x"}), "quotes are dropped when open")

	_, err = products.Get(ctx, "x")
	assert.True(t, errors.Is(err, circuitbreaker.ErrCircuitOpen))
}
