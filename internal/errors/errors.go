// Package errors defines the structured business errors surfaced by the
// API. Each error carries a stable machine-readable code mirrored in
// HTTP responses.
package errors

// DomainError is a business error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Is lets errors.Is match two domain errors by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

var (
	ErrValidation = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "validation error",
	}
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "unauthorized",
	}
	ErrInternal = &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	}
)
