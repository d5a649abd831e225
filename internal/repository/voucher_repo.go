package repository

import (
	"context"

	"villabook/internal/domain"

	"gorm.io/gorm"
)

type VoucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) *VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CreditVoucher, error) {
	var out []domain.CreditVoucher
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VoucherRepository) GetByOriginalBookingID(ctx context.Context, bookingID int64) (*domain.CreditVoucher, error) {
	var v domain.CreditVoucher
	if err := r.db.WithContext(ctx).Where("original_booking_id = ?", bookingID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
