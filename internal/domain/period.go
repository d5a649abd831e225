package domain

import "time"

// BookingPeriod is an admin-defined date range on a property carrying the
// nightly price and open/closed state. StartDate/EndDate are date-only UTC
// midnight values forming a half-open range [StartDate, EndDate).
//
// Periods for one property must not overlap; the period repository enforces
// this at write time. Legacy rows that predate the check are tolerated by the
// segmentation walk, which tie-breaks on earliest start date.
type BookingPeriod struct {
	ID                    int64     `json:"id" gorm:"primaryKey"`
	PropertyID            int64     `json:"property_id" gorm:"index;not null"`
	StartDate             time.Time `json:"start_date" gorm:"index;not null"`
	EndDate               time.Time `json:"end_date" gorm:"not null"`
	IsOpen                bool      `json:"is_open" gorm:"not null;default:true"`
	NightlyPriceCents     int64     `json:"nightly_price_cents" gorm:"not null;default:0"`
	WeeklyDiscountBps     int64     `json:"weekly_discount_bps" gorm:"not null;default:0"`
	WeeklyThresholdNights int       `json:"weekly_threshold_nights" gorm:"not null;default:7"`
	MinNights             int       `json:"min_nights" gorm:"not null;default:1"`
	MaxGuests             int       `json:"max_guests" gorm:"not null;default:0"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (BookingPeriod) TableName() string { return "booking_periods" }

// Covers reports whether the half-open period range contains the given night.
func (p BookingPeriod) Covers(night time.Time) bool {
	return !p.StartDate.After(night) && night.Before(p.EndDate)
}
