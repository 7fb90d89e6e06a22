package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
)

func TestCatalogHandler_Products(t *testing.T) {
	srv := newTestServer(t)

	t.Run("path id wins", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak", `{"id": "other", "name": "Oak", "price": "3.25"}`)

		var saved model.Product
		decodeData(t, w, &saved)
		assert.Equal(t, "oak", saved.ID)
		assert.Equal(t, "3.25", saved.Price.String())
	})

	t.Run("get", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products/oak", "")

		var got model.Product
		decodeData(t, w, &got)
		assert.Equal(t, "Oak", got.Name)
	})

	t.Run("list", func(t *testing.T) {
		srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/pine", `{"price": "1"}`)

		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products?limit=1", "")
		var got []model.Product
		decodeData(t, w, &got)
		assert.Len(t, got, 1)
	})

	t.Run("negative price", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodPut, "/api/products/oak", `{"price": "-1"}`)
		assert.Contains(t, decodeError(t, w).Details, "price")
	})

	t.Run("price of the wrong type", func(t *testing.T) {
		srv.mustDo(t, http.StatusBadRequest, http.MethodPut, "/api/products/oak", `{"price": {"amount": 1}}`)
	})

	t.Run("missing", func(t *testing.T) {
		srv.mustDo(t, http.StatusNotFound, http.MethodGet, "/api/products/missing", "")
	})
}

func TestCatalogHandler_Settings(t *testing.T) {
	srv := newTestServer(t)
	srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak", `{"price": "2.50"}`)

	t.Run("defaults before anything is stored", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products/oak/settings", "")

		var rec map[string]any
		decodeData(t, w, &rec)
		assert.Contains(t, rec, "calculator_type")
	})

	t.Run("round trip", func(t *testing.T) {
		srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak/settings", areaSettings("sq. ft.", "10", false))

		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products/oak/settings", "")
		var rec map[string]any
		decodeData(t, w, &rec)
		assert.Equal(t, "area-dimension", rec["calculator_type"])
	})

	t.Run("unknown calculator type", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodPut, "/api/products/oak/settings", `{"calculator_type": "bogus"}`)
		assert.Contains(t, decodeError(t, w).Details, "calculator_type")
	})

	t.Run("unknown product", func(t *testing.T) {
		srv.mustDo(t, http.StatusNotFound, http.MethodPut, "/api/products/missing/settings", areaSettings("sq. ft.", "", false))
	})
}

func TestCatalogHandler_PricingRules(t *testing.T) {
	srv := newTestServer(t)
	srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak", `{"price": "2.50"}`)

	t.Run("empty before anything is stored", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products/oak/pricing-rules", "")

		var rules []pricing.Rule
		decodeData(t, w, &rules)
		assert.Empty(t, rules)
	})

	t.Run("drops invalid rows and keeps order", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak/pricing-rules", `{"rules": [
			{"range_start": "10", "regular_price": "2"},
			{"range_start": "abc", "regular_price": "9"},
			{"range_start": "0", "range_end": "10", "regular_price": ""},
			{"range_start": "0", "range_end": "9.99", "regular_price": "3"}
		]}`)

		var saved []pricing.Rule
		decodeData(t, w, &saved)
		require.Len(t, saved, 2)
		assert.Equal(t, "2", saved[0].RegularPrice.String())
		assert.Equal(t, "3", saved[1].RegularPrice.String())

		w = srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products/oak/pricing-rules", "")
		var stored []pricing.Rule
		decodeData(t, w, &stored)
		assert.Len(t, stored, 2)
	})

	t.Run("rules are required", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodPut, "/api/products/oak/pricing-rules", `{}`)
		assert.Contains(t, decodeError(t, w).Details, "rules")
	})
}
