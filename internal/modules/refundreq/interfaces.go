package refundreq

import (
	"context"
	"time"

	"villabook/internal/domain"

	"github.com/google/uuid"
)

type requestRepo interface {
	Create(ctx context.Context, req *domain.RefundRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.RefundRequest, error)
	Reject(ctx context.Context, id uuid.UUID, decidedBy int64, notes string, now time.Time) error
}

type bookingReader interface {
	GetByIDWithPayment(ctx context.Context, id int64) (*domain.Booking, error)
}

type ledgerRepo interface {
	CreateRefundForRequest(ctx context.Context, requestID uuid.UUID, decidedBy int64, ref *domain.Refund, now time.Time) error
}

type refundSubmitter interface {
	SubmitRefund(ctx context.Context, ref *domain.Refund, p *domain.Payment) error
}

type notifier interface {
	Notify(ctx context.Context, templateKey, recipient string, vars map[string]string) error
}
