package booking

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("booking not found")
	ErrForbidden  = errors.New("forbidden")
	// ErrAlreadyCancelled: the booking is terminal, or a cancellation row
	// already exists. Either way the second cancel attempt is a conflict.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrRefundNotRetryable: retry was asked for a refund that is not in a
	// failed state.
	ErrRefundNotRetryable = errors.New("refund is not retryable")
)
