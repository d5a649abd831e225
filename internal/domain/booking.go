package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a stay over a half-open date range [StartDate, EndDate).
// Lifecycle: pending -> confirmed (webhook/admin) -> cancelled, or
// pending -> cancelled directly (expiry, customer). Cancelled is terminal.
type Booking struct {
	ID              int64         `json:"id" gorm:"primaryKey"`
	PropertyID      int64         `json:"property_id" gorm:"index;not null"`
	UserID          *int64        `json:"user_id,omitempty" gorm:"index"`
	StartDate       time.Time     `json:"start_date" gorm:"not null"`
	EndDate         time.Time     `json:"end_date" gorm:"not null"`
	Status          BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalPriceCents int64         `json:"total_price_cents" gorm:"not null;default:0"`
	GuestsCount     int           `json:"guests_count" gorm:"not null;default:1"`
	ExtraBedsCount  int           `json:"extra_beds_count" gorm:"not null;default:0"`
	CreatedAt       time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time     `json:"updated_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Payment  *Payment  `json:"payment,omitempty" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string { return "bookings" }

// Nights returns the whole-night stay length. Both bounds are expected to be
// UTC-midnight date-only values; rounding (not truncation) tolerates a bound
// that drifted fractionally during upstream normalization.
func (b Booking) Nights() int {
	return NightsBetween(b.StartDate, b.EndDate)
}

// NightsBetween counts nights in the half-open range [start, end).
func NightsBetween(start, end time.Time) int {
	h := end.Sub(start).Hours() / 24
	if h < 0 {
		return 0
	}
	return int(h + 0.5)
}
