package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OverpaymentError is returned when a requested or reconciled amount would
// push the paid total past the pledged amount. The excess is never silently
// absorbed; the condition is surfaced for manual review.
type OverpaymentError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance %s", e.Requested.String(), e.Remaining.String())
}

// NewOverpaymentError creates a new OverpaymentError
func NewOverpaymentError(requested, remaining decimal.Decimal) *OverpaymentError {
	return &OverpaymentError{Requested: requested, Remaining: remaining}
}

// InvalidContactError is returned when the payer contact does not match the
// mobile-money rail's addressing format.
type InvalidContactError struct {
	Contact string
}

func (e *InvalidContactError) Error() string {
	return fmt.Sprintf("contact %q is not a valid mobile-money number", e.Contact)
}

// NewInvalidContactError creates a new InvalidContactError
func NewInvalidContactError(contact string) *InvalidContactError {
	return &InvalidContactError{Contact: contact}
}

// UnknownAttemptError is an integrity violation: an outcome notification
// referenced a gateway reference no attempt was issued for.
type UnknownAttemptError struct {
	GatewayReference string
}

func (e *UnknownAttemptError) Error() string {
	return fmt.Sprintf("no payment attempt found for gateway reference %q", e.GatewayReference)
}

// NewUnknownAttemptError creates a new UnknownAttemptError
func NewUnknownAttemptError(gatewayReference string) *UnknownAttemptError {
	return &UnknownAttemptError{GatewayReference: gatewayReference}
}
