// Package validation provides request validation using go-playground/validator
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/appstack-io/appstack/core/types"
	"github.com/appstack-io/appstack/middleware"
)

// ModelContextKey is the context key the validated, bound model is stored
// under. Handlers read it instead of re-binding an already consumed body.
const ModelContextKey = "validated_model"

// Validator wraps go-playground/validator
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator instance with custom rules
func NewValidator() *Validator {
	v := validator.New()

	RegisterCustomValidators(v)

	return &Validator{
		validator: v,
	}
}

// Validate implements middleware.Validation. The request body is bound into
// a fresh instance of the options model and checked against its struct tags.
// A nil model means nothing to validate.
func (v *Validator) Validate(c types.Context, opts *middleware.ValidationOptions) *middleware.ValidationResult {
	if opts == nil || opts.Model == nil {
		return &middleware.ValidationResult{Valid: true}
	}

	target := newModelInstance(opts.Model)
	if err := c.Bind(target); err != nil {
		return &middleware.ValidationResult{
			Valid:   false,
			Message: "Invalid request format",
			Code:    opts.Code,
		}
	}

	if err := v.validator.Struct(target); err != nil {
		return &middleware.ValidationResult{
			Valid:   false,
			Message: "Validation failed",
			Code:    opts.Code,
			Errors:  fieldErrors(err),
		}
	}

	c.Set(ModelContextKey, target)
	return &middleware.ValidationResult{Valid: true}
}

// newModelInstance allocates a fresh value of the model's underlying struct
// type so concurrent requests never share a binding target.
func newModelInstance(model any) any {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// fieldErrors maps validator errors to per-field messages.
func fieldErrors(err error) map[string]string {
	errs := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := strings.ToLower(e.Field())
			errs[field] = validationMessage(field, e.Tag(), e.Param())
		}
	}
	return errs
}

// validationMessage returns a custom error message for validation errors
func validationMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "username":
		return fmt.Sprintf("%s must be 3-30 characters, alphanumeric with _ or -", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// RegisterCustomValidators registers all custom validation rules
func RegisterCustomValidators(v *validator.Validate) {
	// Username validator
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		username := fl.Field().String()
		if len(username) < 3 || len(username) > 30 {
			return false
		}
		for i, r := range username {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || r == '_' || r == '-') {
				return false
			}
			if (r == '_' || r == '-') && (i == 0 || i == len(username)-1) {
				return false
			}
		}
		return true
	})
}
