package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundType string

const (
	RefundTypeGateway RefundType = "gateway_refund"
	RefundTypeVoucher RefundType = "voucher"
	RefundTypeNone    RefundType = "none"
)

// Cancellation records the financial outcome of cancelling a booking. The
// unique index on BookingID is the cancellation idempotency guard: at most one
// cancellation, and through it at most one policy refund and voucher, can ever
// exist per booking.
type Cancellation struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID          int64      `json:"booking_id" gorm:"uniqueIndex;not null"`
	PolicyRefundCents  int64      `json:"policy_refund_cents" gorm:"not null;default:0"`
	VoucherIssuedCents int64      `json:"voucher_issued_cents" gorm:"not null;default:0"`
	RefundType         RefundType `json:"refund_type" gorm:"type:varchar(20);not null;default:'none'"`
	TierKey            string     `json:"tier_key" gorm:"type:varchar(40)"`
	Reason             string     `json:"reason" gorm:"type:text"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (Cancellation) TableName() string { return "cancellations" }

func (c *Cancellation) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
