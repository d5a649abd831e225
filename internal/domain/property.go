package domain

import "time"

// Property is the rental unit bookings and periods attach to. Content
// management (photos, descriptions, amenities) lives in the admin panel and is
// out of scope here; this row only anchors foreign keys and capacity checks.
type Property struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	MaxGuests int       `json:"max_guests" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Property) TableName() string { return "properties" }
