package repository

import (
	"context"

	"villabook/internal/domain"

	"gorm.io/gorm"
)

type CancellationRepository struct {
	db *gorm.DB
}

func NewCancellationRepository(db *gorm.DB) *CancellationRepository {
	return &CancellationRepository{db: db}
}

func (r *CancellationRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Cancellation, error) {
	var c domain.Cancellation
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CancellationRepository) ExistsByBookingID(ctx context.Context, bookingID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Cancellation{}).
		Where("booking_id = ?", bookingID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
