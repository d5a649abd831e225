package repository

import (
	"context"

	"villabook/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, ref *domain.Refund) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

func (r *RefundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Refund, error) {
	var ref domain.Refund
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *RefundRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Refund, error) {
	var ref domain.Refund
	if err := r.db.WithContext(ctx).Where("external_refund_id = ?", externalID).First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

// MarkSubmitted records the gateway's answer to a refund submission.
func (r *RefundRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, externalID string, status domain.RefundStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Refund{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"external_refund_id": externalID,
			"status":             status,
			"failure_reason":     "",
		}).Error
}

func (r *RefundRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Refund{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         domain.RefundFailed,
			"failure_reason": reason,
		}).Error
}

// UpdateStatus records a gateway status change on a still-pending refund. The
// status guard keeps stale deliveries from regressing a terminal row; the
// retry path moves failed rows through MarkSubmitted instead.
func (r *RefundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RefundStatus, rawEvent []byte) error {
	updates := map[string]interface{}{"status": status}
	if len(rawEvent) > 0 {
		updates["raw_event"] = rawEvent
	}
	return r.db.WithContext(ctx).
		Model(&domain.Refund{}).
		Where("id = ? AND status = ?", id, domain.RefundPending).
		Updates(updates).Error
}

// BackfillExternalID links a local refund to its gateway id when the original
// submission response was lost. Only fills an empty column.
func (r *RefundRepository) BackfillExternalID(ctx context.Context, id uuid.UUID, externalID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Refund{}).
		Where("id = ? AND (external_refund_id = '' OR external_refund_id IS NULL)", id).
		Update("external_refund_id", externalID).Error
}

// MarkNotified sets customer_notified_at once; a second call is a no-op.
// Returns whether this call was the one that set it.
func (r *RefundRepository) MarkNotified(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Refund{}).
		Where("id = ? AND customer_notified_at IS NULL", id).
		Update("customer_notified_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
