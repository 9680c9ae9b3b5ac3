package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports an order request that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotFoundError is returned for an unknown order or one belonging to another user.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order not found: %s", e.OrderID)
}

// TransitionError is returned when a callback does not fit the order's current status.
type TransitionError struct {
	OrderID string
	From    Status
	Event   string
	Cause   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot %s from %s: %v", e.OrderID, e.Event, e.From, e.Cause)
}

func (e *TransitionError) Unwrap() error {
	return e.Cause
}

// GatewayError wraps a failure from the payment gateway.
type GatewayError struct {
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("payment gateway: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("payment gateway: %s", e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// fromValidator converts the first validator failure into a *ValidationError.
func fromValidator(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Tag()}
	}
	return &ValidationError{Field: "request", Message: err.Error()}
}
