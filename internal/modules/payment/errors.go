package payment

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("payment not found")
	ErrForbidden  = errors.New("forbidden")
	// ErrInvalidSignature: the webhook signature is missing, malformed or
	// wrong. Rejected before any payload parsing.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrBookingUnresolvable: a checkout event that names no known booking,
	// neither via metadata nor via a stored session id.
	ErrBookingUnresolvable = errors.New("event does not resolve to a booking")
	// ErrGatewayUnavailable: the outbound gateway call failed. Local state is
	// already consistent (the refund row is marked failed) and the submission
	// can be retried with the same idempotency key.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
