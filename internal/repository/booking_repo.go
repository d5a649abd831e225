package repository

import (
	"context"
	"time"

	"villabook/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithPayment inserts the booking and its 1:1 payment row atomically.
func (r *BookingRepository) CreateWithPayment(ctx context.Context, b *domain.Booking, p *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		p.BookingID = b.ID
		return tx.Create(p).Error
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDWithPayment loads a booking together with its payment row.
func (r *BookingRepository) GetByIDWithPayment(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Preload("Payment").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpiredPendingIDs selects bookings still pending, created before cutoff
// and without a cancellation row. Candidates only: the sweeper re-checks every
// precondition under a row lock before touching anything.
func (r *BookingRepository) ListExpiredPendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	var ids []int64
	q := `
SELECT b.id
FROM bookings b
LEFT JOIN cancellations c ON c.booking_id = b.id
WHERE b.status = 'pending'
  AND b.created_at < ?
  AND c.id IS NULL
ORDER BY b.created_at ASC
LIMIT ?
`
	if err := r.db.WithContext(ctx).Raw(q, cutoff, limit).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
