package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/i18n"
	"github.com/guttosm/measure-pricing-service/internal/middleware"
)

// Envelopes are pooled; gin serializes synchronously, so an envelope can go
// back to its pool as soon as the response is written.
var (
	successResponsePool = sync.Pool{New: func() any { return new(dto.SuccessResponse) }}
	errorResponsePool   = sync.Pool{New: func() any { return new(dto.ErrorResponse) }}
)

func getSuccessResponse() *dto.SuccessResponse {
	if resp, ok := successResponsePool.Get().(*dto.SuccessResponse); ok {
		return resp
	}
	return new(dto.SuccessResponse)
}

func putSuccessResponse(resp *dto.SuccessResponse) {
	*resp = dto.SuccessResponse{}
	successResponsePool.Put(resp)
}

func getErrorResponse() *dto.ErrorResponse {
	if resp, ok := errorResponsePool.Get().(*dto.ErrorResponse); ok {
		return resp
	}
	return new(dto.ErrorResponse)
}

// putErrorResponse zeroes resp so pooled envelopes never leak details.
func putErrorResponse(resp *dto.ErrorResponse) {
	*resp = dto.ErrorResponse{}
	errorResponsePool.Put(resp)
}

// RequestBuilder provides generic request building and unmarshaling capabilities.
type RequestBuilder struct {
	c *gin.Context
}

// NewRequestBuilder creates a new request builder for the given context.
func NewRequestBuilder(c *gin.Context) *RequestBuilder {
	return &RequestBuilder{c: c}
}

// Bind decodes the JSON body into v and runs its binding tags.
func (b *RequestBuilder) Bind(v any) error {
	return b.c.ShouldBindJSON(v)
}

// BindQuery decodes the query string into the provided type.
func (b *RequestBuilder) BindQuery(v any) error {
	return b.c.ShouldBindQuery(v)
}

// ResponseBuilder writes the success and error envelopes.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a new response builder for the given context.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success wraps data in the success envelope.
func (b *ResponseBuilder) Success(statusCode int, data any) {
	resp := getSuccessResponse()
	resp.Data = data
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	b.c.JSON(statusCode, resp)
	putSuccessResponse(resp)
}

// SuccessOK sends a 200 OK response with the given data.
func (b *ResponseBuilder) SuccessOK(data any) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated sends a 201 Created response with the given data.
func (b *ResponseBuilder) SuccessCreated(data any) {
	b.Success(http.StatusCreated, data)
}

// Error answers with the translated message for messageKey. err, when set,
// is attached to the context for the error handler to log.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.ErrorWithDetails(statusCode, messageKey, nil, err)
}

// ErrorWithDetails sends an error response whose details map each invalid
// field to its problem.
func (b *ResponseBuilder) ErrorWithDetails(statusCode int, messageKey string, details map[string]string, err error) {
	locale := i18n.GetLocale(b.c)
	b.send(statusCode, i18n.GetTranslator().Translate(messageKey, locale), details, err)
}

// ErrorWithMessage sends an error response with a custom message.
func (b *ResponseBuilder) ErrorWithMessage(statusCode int, message string, err error) {
	b.send(statusCode, message, nil, err)
}

func (b *ResponseBuilder) send(statusCode int, message string, details map[string]string, err error) {
	resp := getErrorResponse()

	resp.Error = dto.ErrCodeFromStatus(statusCode)
	if statusCode == http.StatusBadRequest && len(details) > 0 {
		resp.Error = dto.ErrCodeValidation
	}
	resp.Message = message
	resp.Details = details
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	if err != nil {
		_ = b.c.Error(err)
	}

	b.c.AbortWithStatusJSON(statusCode, resp)
	putErrorResponse(resp)
}

// BuildRequest decodes the JSON body into a new T.
func BuildRequest[T any](c *gin.Context) (*T, error) {
	var req T
	if err := NewRequestBuilder(c).Bind(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// BuildQuery decodes and checks the query parameters of a request.
func BuildQuery[T any](c *gin.Context) (*T, error) {
	var q T
	if err := NewRequestBuilder(c).BindQuery(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Validator is implemented by requests with checks beyond binding tags.
type Validator interface {
	Validate() error
}

// BuildRequestAndValidate is BuildRequest followed by Validate when T
// implements Validator. Errors are returned unwrapped for BindError.
func BuildRequestAndValidate[T any](c *gin.Context) (*T, error) {
	req, err := BuildRequest[T](c)
	if err != nil {
		return nil, err
	}
	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return req, nil
}
