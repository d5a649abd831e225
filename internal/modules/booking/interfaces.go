package booking

import (
	"context"
	"time"

	"villabook/internal/domain"
	"villabook/internal/modules/pricing"
	"villabook/internal/repository"

	"github.com/google/uuid"
)

type bookingRepo interface {
	CreateWithPayment(ctx context.Context, b *domain.Booking, p *domain.Payment) error
	GetByIDWithPayment(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
}

type cancellationRepo interface {
	ExistsByBookingID(ctx context.Context, bookingID int64) (bool, error)
}

type voucherReader interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.CreditVoucher, error)
}

type refundReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Refund, error)
}

type ledgerRepo interface {
	CancelBooking(ctx context.Context, p repository.CancelParams) error
}

type quoter interface {
	Quote(ctx context.Context, propertyID int64, start, end time.Time, guests int) (*pricing.Quote, error)
}

type refundSubmitter interface {
	SubmitRefund(ctx context.Context, ref *domain.Refund, p *domain.Payment) error
}

type notifier interface {
	Notify(ctx context.Context, templateKey, recipient string, vars map[string]string) error
}
