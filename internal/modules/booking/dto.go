package booking

import (
	"time"

	"villabook/internal/domain"
)

type CreateBookingRequest struct {
	PropertyID     int64  `json:"property_id" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	GuestsCount    int    `json:"guests_count" binding:"required,gte=1"`
	ExtraBedsCount int    `json:"extra_beds_count" binding:"gte=0"`
}

// Actor identifies who is asking. Admins may act on any booking; customers
// only on their own.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == "admin" }

// CancelRequest carries the optional free-text reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CancelResult is the synchronous answer to a cancellation. Settlement of a
// submitted refund is confirmed later by the webhook path; the caller never
// blocks on it.
type CancelResult struct {
	BookingID      int64                `json:"booking_id"`
	Status         domain.BookingStatus `json:"status"`
	RefundType     domain.RefundType    `json:"refund_type"`
	RefundCents    int64                `json:"refund_cents"`
	VoucherCents   int64                `json:"voucher_cents"`
	RefundStatus   domain.RefundStatus  `json:"refund_status,omitempty"`
	RetryAvailable bool                 `json:"retry_available"`
	TierKey        string               `json:"tier_key,omitempty"`
}

// CancellationPreview is the no-side-effect view of what a cancellation would
// yield right now. It uses the exact same policy math as the commit path.
type CancellationPreview struct {
	BookingID       int64  `json:"booking_id"`
	DaysBeforeStart int    `json:"days_before_start"`
	TierKey         string `json:"tier_key"`
	TierLabel       string `json:"tier_label"`
	RefundCents     int64  `json:"refund_cents"`
	VoucherCents    int64  `json:"voucher_cents"`
}

// BookingDetails is the customer-facing listing row.
type BookingDetails struct {
	ID              int64                `json:"id"`
	PropertyID      int64                `json:"property_id"`
	StartDate       time.Time            `json:"start_date"`
	EndDate         time.Time            `json:"end_date"`
	Status          domain.BookingStatus `json:"status"`
	TotalPriceCents int64                `json:"total_price_cents"`
	GuestsCount     int                  `json:"guests_count"`
	PaymentStatus   domain.PaymentStatus `json:"payment_status,omitempty"`
}
