//go:build !integration

package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTranslator_Shared(t *testing.T) {
	require.NotNil(t, GetTranslator())
	assert.Same(t, GetTranslator(), GetTranslator())
}

func TestTranslator_Translate(t *testing.T) {
	tr := NewTranslator()

	tests := []struct {
		name   string
		key    string
		locale string
		want   string
	}{
		{"product not found in english", ErrKeyProductNotFound, "en", "Product not found"},
		{"product not found in portuguese", ErrKeyProductNotFound, "pt", "Produto não encontrado"},
		{"quote not found in dutch", ErrKeyQuoteNotFound, "nl", "Offerte niet gevonden"},
		{"blank locale uses english", ErrKeyCalculatorDisabled, "", "This product is not sold by measurement"},
		{"unknown locale uses english", ErrKeyInsufficientStock, "de", "Not enough stock for the requested measurement"},
		{"unknown key is echoed", "error.surface_too_large", "pt", "error.surface_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Translate(tt.key, tt.locale))
		})
	}
}

func TestTranslator_Supports(t *testing.T) {
	tr := NewTranslator()
	for _, l := range []string{"en", "pt", "nl"} {
		assert.True(t, tr.Supports(l), l)
	}
	assert.False(t, tr.Supports("EN"))
	assert.False(t, tr.Supports(""))
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", DefaultLocale},
		{"pt-BR", "pt"},
		{"NL", "nl"},
		{"en-GB,en;q=0.9", "en"},
		// Unsupported leading languages are skipped, not treated as a miss.
		{"fr-BE,nl;q=0.8,en;q=0.5", "nl"},
		{"de, pt;q=0.3", "pt"},
		{"ja,zh-CN", DefaultLocale},
		{";q=0.5", DefaultLocale},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLocale(tt.header))
		})
	}
}

func TestGetLocale_ReadsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/products/p-1/price", nil)
	c.Request.Header.Set(AcceptLanguageHeader, "pt-PT,pt;q=0.9")
	assert.Equal(t, "pt", GetLocale(c))

	c.Request.Header.Del(AcceptLanguageHeader)
	assert.Equal(t, DefaultLocale, GetLocale(c))
}

func TestMessages_EveryKeyTranslated(t *testing.T) {
	keys := []string{
		ErrKeyInvalidRequest, ErrKeyInvalidRequestBody, ErrKeyInternalError, ErrKeyNotFound,
		ErrKeyRateLimitExceeded, ErrKeyConflict, ErrKeyTimeout, ErrKeyValidationFailed,
		ErrKeyProductNotFound, ErrKeyVariationNotFound, ErrKeyQuoteNotFound,
		ErrKeyNoMatchingPriceRule, ErrKeyUnsupportedConversion, ErrKeyCalculatorDisabled,
		ErrKeyCalculatorMode, ErrKeyNoCalculatorInputs, ErrKeyInsufficientStock, ErrKeyServiceUnavailable,
	}
	messages := getDefaultMessages()

	for locale, translations := range messages {
		for _, key := range keys {
			assert.NotEmpty(t, translations[key], "%s missing in %s", key, locale)
		}
		assert.Len(t, translations, len(keys), locale)
	}
}

func TestTranslate_NoMatchingPriceRule(t *testing.T) {
	msg := NewTranslator().Translate(ErrKeyNoMatchingPriceRule, "en")
	assert.Equal(t, "No price available for a product with this measurement, please contact the store for assistance", msg)
}
