package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/payments"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a user, address, product or order is missing.
	ErrNotFound = repositories.ErrNotFound
	// ErrConflict is returned when a username or email is already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials is returned by Login for a bad username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when an operation needs an authenticated user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPaymentProvider is returned when the payment processor call fails.
	ErrPaymentProvider = payments.ErrProvider
	// ErrInvalidTransition is returned when an order cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// ValidationError reports malformed or missing input, keyed by field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(message, field, reason string) *ValidationError {
	ve := &ValidationError{Message: message, Fields: map[string]string{}}
	if field != "" {
		ve.Fields[field] = reason
	}
	return ve
}

// FromValidator converts validator output into a ValidationError. Errors that
// are not validator.ValidationErrors are returned unchanged.
func FromValidator(message string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Message: message, Fields: make(map[string]string, len(verrs))}
	for _, e := range verrs {
		ve.Fields[fieldPath(e)] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return ve
}

// fieldPath strips the top-level struct name from the namespace, so that
// nested fields read "items[0].quantity".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}
