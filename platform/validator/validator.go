// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Dutch postal code: four digits followed by two letters, optional
	// inner whitespace ("1234 AB" and "1234AB" are both accepted).
	nlPostcodeRegex = regexp.MustCompile(`^[1-9][0-9]{3}\s?[A-Za-z]{2}$`)
	// House number addition: short alphanumeric suffix such as "A" or "II".
	houseAdditionRegex = regexp.MustCompile(`^[A-Za-z0-9]{1,4}$`)
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator with the funnel's custom rules registered:
// nl_postcode and house_addition.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("nl_postcode", func(fl validator.FieldLevel) bool {
		return nlPostcodeRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("house_addition", func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		if value == "" {
			return true
		}
		return houseAdditionRegex.MatchString(value)
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
