package pricing

import (
	"context"
	"time"

	"villabook/internal/domain"
)

type periodReader interface {
	ListOverlapping(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.BookingPeriod, error)
}

type periodWriter interface {
	Save(ctx context.Context, p *domain.BookingPeriod) error
	Delete(ctx context.Context, id int64) error
}
