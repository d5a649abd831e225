package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundRequestStatus string

const (
	RefundRequestPending  RefundRequestStatus = "pending"
	RefundRequestApproved RefundRequestStatus = "approved"
	RefundRequestRejected RefundRequestStatus = "rejected"
)

// RefundRequest is a customer's ask for an out-of-policy refund, decided by an
// admin. pending -> approved|rejected, both terminal. Approval refunds 100% of
// the payment's remaining refundable amount through the regular refund path.
type RefundRequest struct {
	ID                uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID         int64               `json:"booking_id" gorm:"index;not null"`
	RequesterUserID   int64               `json:"requester_user_id" gorm:"index;not null"`
	Reason            string              `json:"reason" gorm:"type:text"`
	Status            RefundRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AdminNotes        string              `json:"admin_notes,omitempty" gorm:"type:text"`
	DecidedBy         *int64              `json:"decided_by,omitempty"`
	DecidedAt         *time.Time          `json:"decided_at,omitempty"`
	ResultingRefundID *uuid.UUID          `json:"resulting_refund_id,omitempty" gorm:"type:uuid"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (RefundRequest) TableName() string { return "refund_requests" }

func (r *RefundRequest) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
