// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/mgnrega-dashboard/internal/fiscal"
)

// ErrorCode is the API error code for validation failures.
const ErrorCode = "VALIDATION_FAILED"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// DetectRequest is the location detection body. Pointers distinguish a
// missing coordinate from 0.
type DetectRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// HistoryRequest is the history query string.
type HistoryRequest struct {
	Window string `json:"window" validate:"omitempty,oneof=12m all|fyear"`
}

// ValidationError is one failed field.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   any
	message string
}

// Field returns the failing field's json name.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the failing validation tag.
func (e *ValidationError) Tag() string { return e.tag }

// Param returns the tag parameter, e.g. "100" for "max=100".
func (e *ValidationError) Param() string { return e.param }

// Value returns the rejected value.
func (e *ValidationError) Value() any { return e.value }

func (e *ValidationError) Error() string { return e.message }

// RequestValidationError collects every failed field of one request.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual failures.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i := range ve.errors {
		messages[i] = ve.errors[i].message
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors the api package's error body without importing it.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError converts the failures into an API error body.
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.errors) {
	case 0:
		return &APIError{Code: ErrorCode, Message: "Validation failed"}
	case 1:
		e := ve.errors[0]
		return &APIError{
			Code:    ErrorCode,
			Message: e.message,
			Details: map[string]any{"field": e.field, "tag": e.tag, "value": e.value},
		}
	}

	fields := make([]map[string]any, len(ve.errors))
	messages := make([]string, len(ve.errors))
	for i, e := range ve.errors {
		fields[i] = map[string]any{"field": e.field, "tag": e.tag, "message": e.message}
		messages[i] = e.message
	}
	return &APIError{
		Code:    ErrorCode,
		Message: strings.Join(messages, "; "),
		Details: map[string]any{"fields": fields},
	}
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		// Registration only fails on an empty tag or nil func.
		_ = validate.RegisterValidation("fyear", func(fl validator.FieldLevel) bool {
			_, err := fiscal.ParseFinancialYear(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// ValidateStruct validates s and returns nil when it passes.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{errors: []ValidationError{{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
		}}}
	}

	out := make([]ValidationError, len(validationErrs))
	for i, fe := range validationErrs {
		out[i] = ValidationError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translateError(fe),
		}
	}
	return &RequestValidationError{errors: out}
}

var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"fyear":     "%s must be a financial year like 2024-2025",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}
	// Tags joined with | report the whole expression.
	if strings.Contains(tag, "|") {
		return fmt.Sprintf("%s must be 12m, all or a financial year like 2024-2025", field)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
