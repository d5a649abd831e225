package pricing

import "errors"

var (
	ErrValidation = errors.New("validation error")
	// ErrNoPeriod: at least one night of the requested range is not covered by
	// any period. Uncovered nights reject the whole request (default closed).
	ErrNoPeriod = errors.New("no period covers the requested range")
	// ErrClosed: the covering period for at least one night is closed.
	ErrClosed = errors.New("range includes a closed period")
	// ErrMinNights: the stay is shorter than a covering period allows.
	ErrMinNights = errors.New("stay shorter than the period minimum")
	// ErrMaxGuests: the party exceeds a covering period's capacity.
	ErrMaxGuests = errors.New("party larger than the period allows")
	// ErrPeriodOverlap: a period write would overlap an existing period.
	ErrPeriodOverlap = errors.New("period overlaps an existing period")
)
