// Package validation wraps struct tag validation and holds the
// business validation rules shared by handlers and services.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	domainerr "github.com/taqume/toycell-be/internal/errors"

	"github.com/go-playground/validator/v10"
)

// SupportedCurrencies lists the ISO 4217 codes wallets can be opened in.
var SupportedCurrencies = []string{"TRY", "USD", "EUR"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return IsSupportedCurrency(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Struct validates a tagged request struct and converts the first
// failure into a domain validation error with a readable message.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domainerr.ErrValidation
	}

	fe := verrs[0]
	return &domainerr.DomainError{
		Code:    domainerr.ErrValidation.Code,
		Message: fieldMessage(fe),
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "currency_code":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(SupportedCurrencies, ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// IsSupportedCurrency reports whether code is one of the currencies the
// platform operates in. The comparison is case sensitive, codes are
// stored uppercase.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

var specialCharRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)

// HasSpecialChar checks if a string contains at least one special character.
func HasSpecialChar(s string) bool {
	return specialCharRegex.MatchString(s)
}

// ValidPassword enforces the minimum password policy.
func ValidPassword(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return &domainerr.DomainError{
			Code:    domainerr.ErrValidation.Code,
			Message: "password must be between 8 and 72 characters",
		}
	}
	if !HasSpecialChar(password) {
		return &domainerr.DomainError{
			Code:    domainerr.ErrValidation.Code,
			Message: "password must contain at least one special character",
		}
	}
	return nil
}
