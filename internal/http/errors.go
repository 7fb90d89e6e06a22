package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/circuitbreaker"
	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/i18n"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"github.com/guttosm/measure-pricing-service/internal/repository"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

var registerTagNames sync.Once

// useJSONFieldNames makes binding errors report fields by their JSON name.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

// errorMapping pairs a sentinel error with its HTTP status and message key.
type errorMapping struct {
	target error
	status int
	key    string
}

var serviceErrors = []errorMapping{
	{service.ErrProductNotFound, http.StatusNotFound, i18n.ErrKeyProductNotFound},
	{service.ErrVariationNotFound, http.StatusNotFound, i18n.ErrKeyVariationNotFound},
	{service.ErrQuoteNotFound, http.StatusNotFound, i18n.ErrKeyQuoteNotFound},
	{repository.ErrNotFound, http.StatusNotFound, i18n.ErrKeyNotFound},
	{pricing.ErrNoMatchingPriceRule, http.StatusUnprocessableEntity, i18n.ErrKeyNoMatchingPriceRule},
	{measurement.ErrUnsupportedConversion, http.StatusUnprocessableEntity, i18n.ErrKeyUnsupportedConversion},
	{calculator.ErrCalculatorDisabled, http.StatusUnprocessableEntity, i18n.ErrKeyCalculatorDisabled},
	{service.ErrCalculatorMode, http.StatusUnprocessableEntity, i18n.ErrKeyCalculatorMode},
	{service.ErrNoCalculatorInputs, http.StatusUnprocessableEntity, i18n.ErrKeyNoCalculatorInputs},
	{service.ErrInsufficientStock, http.StatusConflict, i18n.ErrKeyInsufficientStock},
	{circuitbreaker.ErrCircuitOpen, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{service.ErrRepositoryNotConfigured, http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, i18n.ErrKeyTimeout},
}

// ServiceError answers with the status a service error maps to. Validation
// problems become 400 with per-field details; unknown errors become 500.
func (b *ResponseBuilder) ServiceError(err error) {
	if details, ok := validationDetails(err); ok {
		b.ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyValidationFailed, details, err)
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			b.Error(m.status, m.key, err)
			return
		}
	}
	b.Error(http.StatusInternalServerError, i18n.ErrKeyInternalError, err)
}

// BindError answers a request whose body or query could not be decoded or
// failed its binding rules.
func (b *ResponseBuilder) BindError(err error) {
	if details, ok := validationDetails(err); ok {
		b.ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyValidationFailed, details, err)
		return
	}
	b.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
}

func validationDetails(err error) (map[string]string, bool) {
	var fieldErrs calculator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs.Details(), true
	}

	var reqErr *dto.ValidationError
	if errors.As(err, &reqErr) {
		return map[string]string{reqErr.Field: reqErr.Message}, true
	}

	if errors.Is(err, calculator.ErrUnknownType) {
		return map[string]string{"calculator_type": err.Error()}, true
	}

	var bindErrs validator.ValidationErrors
	if errors.As(err, &bindErrs) {
		details := make(map[string]string, len(bindErrs))
		for _, fe := range bindErrs {
			details[fe.Field()] = bindingMessage(fe)
		}
		return details, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: "must be a " + typeErr.Type.String()}, true
	}
	return nil, false
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %s rule", fe.Tag())
	}
}
