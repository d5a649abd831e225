package payment

import (
	"context"
	"time"

	"villabook/internal/domain"

	"github.com/google/uuid"
)

type bookingReader interface {
	GetByIDWithPayment(ctx context.Context, id int64) (*domain.Booking, error)
}

type paymentRepo interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error)
	StoreCheckoutSession(ctx context.Context, bookingID int64, sessionID string) error
}

type refundRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Refund, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Refund, error)
	MarkSubmitted(ctx context.Context, id uuid.UUID, externalID string, status domain.RefundStatus) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RefundStatus, rawEvent []byte) error
	BackfillExternalID(ctx context.Context, id uuid.UUID, externalID string) error
	MarkNotified(ctx context.Context, id uuid.UUID) (bool, error)
}

type ledgerRepo interface {
	MarkConfirmedPaid(ctx context.Context, bookingID, amountCents int64, currency, sessionID, intentID string, rawEvent []byte, now time.Time) (bool, error)
	ApplyRefundSucceeded(ctx context.Context, refundID uuid.UUID, appliedCents int64, rawEvent []byte, now time.Time) (bool, error)
}

type notifier interface {
	Notify(ctx context.Context, templateKey, recipient string, vars map[string]string) error
}
