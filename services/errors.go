package services

import "errors"

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrMissingIdentifier    = errors.New("request carries no checkout identifier or reference")
	ErrPaymentNotFound      = errors.New("payment record not found")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
	ErrProcessorError       = errors.New("payment processor returned an error")
	ErrRecordStore          = errors.New("payment record store failure")
)

// CheckoutError carries the user-facing message for a failed checkout
// alongside the underlying cause.
type CheckoutError struct {
	Message string
	Err     error
}

func (e *CheckoutError) Error() string { return e.Message }

func (e *CheckoutError) Unwrap() error { return e.Err }
