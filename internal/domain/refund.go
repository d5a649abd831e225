package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RefundSource string

const (
	RefundSourcePolicyCancel RefundSource = "policy_cancel"
	RefundSourceAdminRequest RefundSource = "admin_request"
)

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
	RefundCanceled  RefundStatus = "canceled"
)

// Refund is a single outbound refund submission against a payment. The row is
// created as pending before the gateway is called, so a retried submission
// finds and updates it instead of duplicating the money movement.
//
// AppliedAt gates the financial effect of a succeeded refund: it is read,
// checked and set inside the same transaction that bumps RefundedCents, so a
// duplicate webhook delivery cannot double-apply. CustomerNotifiedAt plays the
// same role for the one customer notification.
type Refund struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID          int64          `json:"booking_id" gorm:"index;not null"`
	PaymentID          int64          `json:"payment_id" gorm:"index;not null"`
	Source             RefundSource   `json:"source" gorm:"type:varchar(20);not null"`
	Status             RefundStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AmountCents        int64          `json:"amount_cents" gorm:"not null"`
	ExternalRefundID   string         `json:"external_refund_id" gorm:"type:varchar(255);index"`
	IdempotencyKey     string         `json:"idempotency_key" gorm:"type:varchar(128);uniqueIndex;not null"`
	FailureReason      string         `json:"failure_reason,omitempty" gorm:"type:text"`
	RawEvent           datatypes.JSON `json:"-" gorm:"column:raw_event"`
	AppliedAt          *time.Time     `json:"applied_at,omitempty"`
	CustomerNotifiedAt *time.Time     `json:"customer_notified_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (Refund) TableName() string { return "refunds" }

func (r *Refund) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
