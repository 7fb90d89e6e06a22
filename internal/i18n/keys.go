package i18n

// Error message translation keys.
const (
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInternalError      = "error.internal_error"
	ErrKeyNotFound           = "error.not_found"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"
	ErrKeyConflict           = "error.conflict"
	ErrKeyTimeout            = "error.timeout"
	// ErrKeyValidationFailed prefixes the per-field details of rejected inputs.
	ErrKeyValidationFailed  = "error.validation_failed"
	ErrKeyProductNotFound   = "error.product_not_found"
	ErrKeyVariationNotFound = "error.variation_not_found"
	ErrKeyQuoteNotFound     = "error.quote_not_found"
	// ErrKeyNoMatchingPriceRule is shown to customers whose measurement falls
	// outside every pricing rule.
	ErrKeyNoMatchingPriceRule   = "error.no_matching_price_rule"
	ErrKeyUnsupportedConversion = "error.unsupported_conversion"
	ErrKeyCalculatorDisabled    = "error.calculator_disabled"
	ErrKeyCalculatorMode        = "error.calculator_mode"
	ErrKeyNoCalculatorInputs    = "error.no_calculator_inputs"
	ErrKeyInsufficientStock     = "error.insufficient_stock"
	// ErrKeyServiceUnavailable covers open circuit breakers and missing storage.
	ErrKeyServiceUnavailable = "error.service_unavailable"
)
