// Package i18n translates user-facing API messages.
package i18n

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLocale is used when the client names no supported language.
	DefaultLocale = "en"
	// AcceptLanguageHeader carries the client's language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	shared     *Translator
	sharedOnce sync.Once
)

// Translator looks up error messages per locale.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator returns a translator over the built-in message tables.
func NewTranslator() *Translator {
	return &Translator{messages: getDefaultMessages()}
}

// GetTranslator returns the process-wide translator.
func GetTranslator() *Translator {
	sharedOnce.Do(func() { shared = NewTranslator() })
	return shared
}

// Supports reports whether locale has its own message table.
func (t *Translator) Supports(locale string) bool {
	_, ok := t.messages[locale]
	return ok
}

// Translate returns the message for key in locale. Missing locales and
// missing keys fall back to DefaultLocale; an unknown key is returned as is.
func (t *Translator) Translate(key, locale string) string {
	for _, l := range []string{locale, DefaultLocale} {
		if msg, ok := t.messages[l][key]; ok {
			return msg
		}
	}
	return key
}

// GetLocale picks the first supported language from the Accept-Language
// header, ignoring region subtags and quality values.
func GetLocale(c *gin.Context) string {
	return ResolveLocale(c.GetHeader(AcceptLanguageHeader))
}

// ResolveLocale is GetLocale over a raw header value, e.g. "fr-BE,nl;q=0.8".
func ResolveLocale(header string) string {
	t := GetTranslator()
	for _, tag := range strings.Split(header, ",") {
		lang, _, _ := strings.Cut(strings.TrimSpace(tag), ";")
		lang, _, _ = strings.Cut(lang, "-")
		lang = strings.ToLower(lang)
		if t.Supports(lang) {
			return lang
		}
	}
	return DefaultLocale
}

func getDefaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			"error.invalid_request":         "Invalid request",
			"error.invalid_request_body":    "Invalid request body",
			"error.internal_error":          "An unexpected error occurred",
			"error.not_found":               "Not found",
			"error.rate_limit_exceeded":     "Too many requests, please try again later",
			"error.conflict":                "Conflict",
			"error.timeout":                 "The request took too long to complete",
			"error.validation_failed":       "One or more measurements are invalid",
			"error.product_not_found":       "Product not found",
			"error.variation_not_found":     "Product variation not found",
			"error.quote_not_found":         "Quote not found",
			"error.no_matching_price_rule":  "No price available for a product with this measurement, please contact the store for assistance",
			"error.unsupported_conversion":  "These units cannot be converted into each other",
			"error.calculator_disabled":     "This product is not sold by measurement",
			"error.calculator_mode":         "This operation is not available for the product's calculator",
			"error.no_calculator_inputs":    "The product's calculator has no enabled measurement fields",
			"error.insufficient_stock":      "Not enough stock for the requested measurement",
			"error.service_unavailable":     "The service is temporarily unavailable, please try again later",
		},
		"pt": {
			"error.invalid_request":         "Requisição inválida",
			"error.invalid_request_body":    "Corpo da requisição inválido",
			"error.internal_error":          "Ocorreu um erro inesperado",
			"error.not_found":               "Não encontrado",
			"error.rate_limit_exceeded":     "Muitas requisições, tente novamente mais tarde",
			"error.conflict":                "Conflito",
			"error.timeout":                 "A requisição demorou demais para ser concluída",
			"error.validation_failed":       "Uma ou mais medidas são inválidas",
			"error.product_not_found":       "Produto não encontrado",
			"error.variation_not_found":     "Variação do produto não encontrada",
			"error.quote_not_found":         "Orçamento não encontrado",
			"error.no_matching_price_rule":  "Não há preço disponível para um produto com esta medida, entre em contato com a loja",
			"error.unsupported_conversion":  "Estas unidades não podem ser convertidas entre si",
			"error.calculator_disabled":     "Este produto não é vendido por medida",
			"error.calculator_mode":         "Esta operação não está disponível para a calculadora do produto",
			"error.no_calculator_inputs":    "A calculadora do produto não tem campos de medida ativos",
			"error.insufficient_stock":      "Estoque insuficiente para a medida solicitada",
			"error.service_unavailable":     "O serviço está temporariamente indisponível, tente novamente mais tarde",
		},
		"nl": {
			"error.invalid_request":         "Ongeldig verzoek",
			"error.invalid_request_body":    "Ongeldige aanvraag body",
			"error.internal_error":          "Er is een onverwachte fout opgetreden",
			"error.not_found":               "Niet gevonden",
			"error.rate_limit_exceeded":     "Te veel verzoeken, probeer het later opnieuw",
			"error.conflict":                "Conflict",
			"error.timeout":                 "Het verzoek duurde te lang",
			"error.validation_failed":       "Een of meer maten zijn ongeldig",
			"error.product_not_found":       "Product niet gevonden",
			"error.variation_not_found":     "Productvariant niet gevonden",
			"error.quote_not_found":         "Offerte niet gevonden",
			"error.no_matching_price_rule":  "Geen prijs beschikbaar voor een product met deze maat, neem contact op met de winkel",
			"error.unsupported_conversion":  "Deze eenheden kunnen niet in elkaar worden omgerekend",
			"error.calculator_disabled":     "Dit product wordt niet op maat verkocht",
			"error.calculator_mode":         "Deze bewerking is niet beschikbaar voor de calculator van dit product",
			"error.no_calculator_inputs":    "De calculator van dit product heeft geen actieve maatvelden",
			"error.insufficient_stock":      "Onvoldoende voorraad voor de gevraagde maat",
			"error.service_unavailable":     "De dienst is tijdelijk niet beschikbaar, probeer het later opnieuw",
		},
	}
}
