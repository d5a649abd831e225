package pricing

import (
	"time"

	"villabook/internal/domain"
)

// Segment attributes a sub-range of a requested window to exactly one
// covering period. From/To form a half-open range.
type Segment struct {
	Period domain.BookingPeriod `json:"period"`
	From   time.Time            `json:"from"`
	To     time.Time            `json:"to"`
}

// Nights counts the whole nights inside the segment.
func (s Segment) Nights() int {
	return domain.NightsBetween(s.From, s.To)
}

// Quote is the priced result for a stay.
type Quote struct {
	PropertyID int64     `json:"property_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Nights     int       `json:"nights"`
	BaseCents  int64     `json:"base_cents"`
	TotalCents int64     `json:"total_cents"`
	AppliedBps *int64    `json:"applied_bps"`
	Segments   []Segment `json:"segments"`
}

// QuoteRequest carries the query half of a quote; the property id comes from
// the route path.
type QuoteRequest struct {
	StartDate string `form:"start_date" json:"start_date" binding:"required"`
	EndDate   string `form:"end_date" json:"end_date" binding:"required"`
	Guests    int    `form:"guests" json:"guests" binding:"required,gte=1"`
}

type UpsertPeriodRequest struct {
	ID                    int64  `json:"id"`
	PropertyID            int64  `json:"property_id" binding:"required" validate:"gt=0"`
	StartDate             string `json:"start_date" binding:"required"`
	EndDate               string `json:"end_date" binding:"required"`
	IsOpen                *bool  `json:"is_open" binding:"required"`
	NightlyPriceCents     int64  `json:"nightly_price_cents" validate:"gte=0"`
	WeeklyDiscountBps     int64  `json:"weekly_discount_bps" validate:"gte=0,lte=10000"`
	WeeklyThresholdNights int    `json:"weekly_threshold_nights" validate:"gte=0"`
	MinNights             int    `json:"min_nights" validate:"gte=0"`
	MaxGuests             int    `json:"max_guests" validate:"gte=0"`
}
