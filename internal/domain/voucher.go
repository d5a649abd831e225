package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoucherStatus string

const (
	VoucherActive    VoucherStatus = "active"
	VoucherUsed      VoucherStatus = "used"
	VoucherExpired   VoucherStatus = "expired"
	VoucherVoid      VoucherStatus = "void"
	VoucherExhausted VoucherStatus = "exhausted"
	VoucherRevoked   VoucherStatus = "revoked"
)

// CreditVoucher is non-cash credit issued in lieu of part of a refund when the
// cancellation policy awards a voucher portion. Created at most once per
// cancellation; redemption flow lives elsewhere.
type CreditVoucher struct {
	ID                uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            int64         `json:"user_id" gorm:"index;not null"`
	OriginalBookingID int64         `json:"original_booking_id" gorm:"uniqueIndex;not null"`
	IssuedCents       int64         `json:"issued_cents" gorm:"not null"`
	RemainingCents    int64         `json:"remaining_cents" gorm:"not null"`
	Status            VoucherStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	ExpiresAt         time.Time     `json:"expires_at"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (CreditVoucher) TableName() string { return "credit_vouchers" }

func (v *CreditVoucher) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
