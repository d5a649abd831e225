package repository

import (
	"context"

	"villabook/internal/domain"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySessionID resolves a payment by the gateway checkout session stored at
// checkout-init time. Used as the fallback when a webhook carries no usable
// booking metadata.
func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("checkout_session_id = ?", sessionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// StoreCheckoutSession records the gateway session id on the payment row.
func (r *PaymentRepository) StoreCheckoutSession(ctx context.Context, bookingID int64, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("booking_id = ?", bookingID).
		Update("checkout_session_id", sessionID).Error
}
