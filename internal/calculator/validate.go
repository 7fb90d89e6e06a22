package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guttosm/measure-pricing-service/internal/measurement"
)

// stepTolerance absorbs float error when checking that a value sits on a step.
const stepTolerance = 1e-9

// FieldError is one rejected input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every rejected input of one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, " ")
}

// Details maps field names to messages.
func (v ValidationErrors) Details() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Field] = e.Message
	}
	return out
}

// ReadInputs validates raw customer inputs against the selected calculator
// and returns its input measurements holding the submitted values. Every
// field is checked before returning; failures are reported together as
// ValidationErrors.
func (s *Settings) ReadInputs(raw map[measurement.Name]string) ([]*measurement.Measurement, error) {
	if !s.IsCalculatorEnabled() {
		return nil, ErrCalculatorDisabled
	}

	inputs := s.CalculatorMeasurements()
	var errs ValidationErrors

	for _, m := range inputs {
		name := string(m.Name())
		value := math.Abs(measurement.ConvertToFloat(raw[m.Name()]))
		if value <= 0 {
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("%s missing.", m.Label())})
			continue
		}

		if s.AcceptedInput(m.Name()) == AcceptedInputLimited {
			if options := m.Options(); len(options) > 0 && !hasOption(options, value) {
				errs = append(errs, FieldError{
					Field:   name,
					Message: fmt.Sprintf("%s must be one of the available options.", m.Label()),
				})
				continue
			}
		}

		if msg := checkBounds(m.Label(), value, s, m.Name()); msg != "" {
			errs = append(errs, FieldError{Field: name, Message: msg})
			continue
		}

		m.SetValue(value)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return inputs, nil
}

func checkBounds(label string, value float64, s *Settings, name measurement.Name) string {
	attrs, ok := s.InputAttributes(name)
	if !ok {
		return ""
	}

	if attrs.Min != 0 && value < attrs.Min {
		return fmt.Sprintf("%s value must be greater than or equal to %s.", label, formatNumber(attrs.Min))
	}
	if attrs.Max != 0 && value > attrs.Max {
		return fmt.Sprintf("%s value must be less than or equal to %s.", label, formatNumber(attrs.Max))
	}
	if attrs.Step != 0 && attrs.Min != 0 && attrs.Max != 0 {
		steps := (value - attrs.Min) / attrs.Step
		if math.Abs(steps-math.Round(steps)) > stepTolerance {
			return fmt.Sprintf("%s must be between %s and %s in increments of %s.",
				label, formatNumber(attrs.Min), formatNumber(attrs.Max), formatNumber(attrs.Step))
		}
	}
	return ""
}

func hasOption(options []measurement.Option, value float64) bool {
	for _, o := range options {
		if math.Abs(o.Value-value) <= stepTolerance {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
