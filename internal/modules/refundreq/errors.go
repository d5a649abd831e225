package refundreq

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("refund request not found")
	ErrForbidden  = errors.New("forbidden")
	// ErrAlreadyDecided: approve/reject on a request that already left
	// pending. Both outcomes are terminal.
	ErrAlreadyDecided = errors.New("refund request already decided")
	// ErrNothingToRefund: the payment has no refundable remainder left.
	ErrNothingToRefund = errors.New("nothing left to refund")
)
