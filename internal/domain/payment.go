package domain

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentProvider string

const (
	ProviderGateway PaymentProvider = "gateway"
	ProviderAdmin   PaymentProvider = "admin"
	ProviderNone    PaymentProvider = "none"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentRefunded          PaymentStatus = "refunded"
)

// Payment is the 1:1 money record of a booking. AmountCents holds the locally
// estimated total until checkout completes; the gateway-reported amount is
// authoritative and overwrites it. RefundedCents is monotonically
// non-decreasing and never exceeds AmountCents.
//
// Only webhook reconciliation and refund application mutate a payment.
type Payment struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	BookingID         int64           `json:"booking_id" gorm:"uniqueIndex;not null"`
	Provider          PaymentProvider `json:"provider" gorm:"type:varchar(20);not null;default:'gateway'"`
	Status            PaymentStatus   `json:"status" gorm:"type:varchar(30);not null;default:'pending';index"`
	AmountCents       int64           `json:"amount_cents" gorm:"not null;default:0"`
	RefundedCents     int64           `json:"refunded_cents" gorm:"not null;default:0"`
	Currency          string          `json:"currency" gorm:"type:varchar(3);not null;default:'EUR'"`
	CheckoutSessionID string          `json:"checkout_session_id" gorm:"type:varchar(255);index"`
	PaymentIntentID   string          `json:"payment_intent_id" gorm:"type:varchar(255);index"`
	RawEvent          datatypes.JSON  `json:"-" gorm:"column:raw_event"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

// RefundableRemaining is what is still owed on this payment, never negative.
func (p Payment) RefundableRemaining() int64 {
	if r := p.AmountCents - p.RefundedCents; r > 0 {
		return r
	}
	return 0
}
