package settings

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const tagFPSOrder = "fps_order"

// validation order; the first violation in this order is reported
var fieldOrder = []string{
	"sleep_threshold_cpu",
	"sleep_threshold_freq",
	"sleep_threshold_temp",
	"min_fps",
	"max_fps",
	tagFPSOrder,
	"animation_source",
}

type bounds struct {
	min, max float64
	unit     string
}

var ranges = map[string]bounds{
	"sleep_threshold_cpu":  {0, 100, ""},
	"sleep_threshold_freq": {0, 10000, " MHz"},
	"sleep_threshold_temp": {0, 150, "°C"},
	"min_fps":              {FPSFloor, FPSCeiling, ""},
	"max_fps":              {FPSFloor, FPSCeiling, ""},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(fpsOrder, Config{})

	return v
}

func fpsOrder(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if cfg.MinFPS >= cfg.MaxFPS {
		sl.ReportError(cfg.MinFPS, "min_fps", "MinFPS", tagFPSOrder, "")
	}
}

// ValidationError describes the first invalid settings field.
type ValidationError struct {
	field  string
	value  any
	reason string
}

func (e *ValidationError) Error() string { return e.reason }

// Field returns the JSON name of the invalid field.
func (e *ValidationError) Field() string { return e.field }

// Value returns the rejected value.
func (e *ValidationError) Value() any { return e.value }

// Reason returns a human-readable description of the violation.
func (e *ValidationError) Reason() string { return e.reason }

// Validate checks every field against its range and requires
// min_fps < max_fps. It returns the first violation as a *ValidationError.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{reason: err.Error()}
	}

	first := fieldErrs[0]
	for _, fe := range fieldErrs[1:] {
		if rank(fe) < rank(first) {
			first = fe
		}
	}

	return newValidationError(c, first)
}

func rank(fe validator.FieldError) int {
	key := fe.Field()
	if fe.Tag() == tagFPSOrder {
		key = tagFPSOrder
	}
	for i, name := range fieldOrder {
		if name == key {
			return i
		}
	}

	return len(fieldOrder)
}

func newValidationError(c Config, fe validator.FieldError) *ValidationError {
	field := fe.Field()
	value := fe.Value()

	var reason string
	switch {
	case fe.Tag() == tagFPSOrder:
		reason = fmt.Sprintf("min_fps (%g) must be less than max_fps (%g)", c.MinFPS, c.MaxFPS)
	case fe.Tag() == "oneof":
		reason = fmt.Sprintf("%s must be one of %s, got %q",
			field, strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprint(value))
	default:
		if b, ok := ranges[field]; ok {
			reason = fmt.Sprintf("%s must be between %g and %g%s, got %v", field, b.min, b.max, b.unit, value)
		} else {
			reason = fmt.Sprintf("%s is invalid", field)
		}
	}

	return &ValidationError{field: field, value: value, reason: reason}
}
