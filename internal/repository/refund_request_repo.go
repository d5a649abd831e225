package repository

import (
	"context"
	"errors"
	"time"

	"villabook/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRequestDecided fires when a decision is attempted on a refund request
// that already left the pending state. Both decisions are terminal.
var ErrRequestDecided = errors.New("refund request already decided")

type RefundRequestRepository struct {
	db *gorm.DB
}

func NewRefundRequestRepository(db *gorm.DB) *RefundRequestRepository {
	return &RefundRequestRepository{db: db}
}

func (r *RefundRequestRepository) Create(ctx context.Context, req *domain.RefundRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RefundRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	var req domain.RefundRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RefundRequestRepository) ListPending(ctx context.Context, limit, offset int) ([]domain.RefundRequest, error) {
	var out []domain.RefundRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.RefundRequestPending).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject moves a pending request to rejected. The status guard in the WHERE
// clause makes the transition race-safe; zero rows affected means someone
// decided first.
func (r *RefundRequestRepository) Reject(ctx context.Context, id uuid.UUID, decidedBy int64, notes string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.RefundRequest{}).
		Where("id = ? AND status = ?", id, domain.RefundRequestPending).
		Updates(map[string]interface{}{
			"status":      domain.RefundRequestRejected,
			"decided_by":  decidedBy,
			"decided_at":  now,
			"admin_notes": notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestDecided
	}
	return nil
}
