package dto

import (
	"net/http"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
)

const (
	// ErrCodeInvalidRequest indicates an invalid request.
	ErrCodeInvalidRequest = "invalid_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
	// ErrCodeValidation indicates one or more invalid fields, listed in Details.
	ErrCodeValidation = "validation_failed"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"
	// ErrCodeRateLimit indicates rate limit exceeded.
	ErrCodeRateLimit = "rate_limit_exceeded"
	// ErrCodeConflict indicates a conflict with current state.
	ErrCodeConflict = "conflict"
	// ErrCodeTimeout indicates a request timeout.
	ErrCodeTimeout = "timeout"
	// ErrCodeUnprocessable indicates a well-formed request that cannot be priced.
	ErrCodeUnprocessable = "unprocessable"
	// ErrCodeUnavailable indicates storage is unreachable.
	ErrCodeUnavailable = "service_unavailable"
)

// SuccessResponse wraps successful API responses with metadata.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data contains the actual response data
	// Example: {"calculator_type": "area-dimension", "total": {"value": 22, "unit": "sq. ft."}}
	Data interface{} `json:"data" swaggertype:"object"`
	// RequestID is the unique request identifier
	RequestID string `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Timestamp is when the response was generated
	Timestamp time.Time `json:"timestamp" example:"2026-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse represents a standardized error response for the API.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_failed"`
	Message string `json:"message,omitempty" example:"One or more fields are invalid"`
	// Details maps each invalid field to its problem
	// Example: {"length": "must be a number"}
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewError creates a new ErrorResponse with the given code and message.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID adds a request ID to the error response.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetails attaches per-field details to the error response.
func (e ErrorResponse) WithDetails(details map[string]string) ErrorResponse {
	if len(details) > 0 {
		e.Details = details
	}
	return e
}

// ErrCodeFromStatus returns the appropriate error code for an HTTP status.
func ErrCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusUnprocessableEntity:
		return ErrCodeUnprocessable
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrCodeTimeout
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}

// QuoteListResponse is one page of stored quotes.
//
// @Description Page of quotes, newest first
type QuoteListResponse struct {
	Quotes []*model.Quote `json:"quotes"`
	Total  int64          `json:"total" example:"42"`
	Limit  int            `json:"limit" example:"20"`
	Skip   int            `json:"skip" example:"0"`
} // @name QuoteListResponse

// Unit defaults sources.
const (
	UnitsSourceStored = "stored"
	UnitsSourceConfig = "config"
)

// UnitDefaultsResponse reports the unit defaults in effect. Config is set
// only when they come from storage.
type UnitDefaultsResponse struct {
	Units  calculator.UnitDefaults   `json:"units"`
	Source string                    `json:"source" example:"stored"`
	Config *model.UnitDefaultsConfig `json:"config,omitempty"`
} // @name UnitDefaultsResponse
