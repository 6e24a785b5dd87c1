package stripe

import (
	"fmt"
)

// Error codes used to map service failures to API responses.
const (
	CodeCustomerLookup = "customer_lookup_failed"
	CodeMappingWrite   = "mapping_write_failed"
	CodeAPICallFailed  = "api_call_failed"
)

// StripeError represents a Stripe-specific error
type StripeError struct { //revive:disable:exported
	Code    string
	Message string
	Err     error
}

func (e *StripeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.Err
}

// NewStripeError creates a new StripeError with the given code, message, and underlying error
func NewStripeError(code, message string, err error) *StripeError {
	return &StripeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
