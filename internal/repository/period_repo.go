package repository

import (
	"context"
	"errors"
	"time"

	"villabook/internal/domain"

	"gorm.io/gorm"
)

var ErrPeriodOverlap = errors.New("period overlaps an existing period")

type PeriodRepository struct {
	db *gorm.DB
}

func NewPeriodRepository(db *gorm.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// ListOverlapping returns the property's periods intersecting the half-open
// range [start, end), sorted by start date ascending. The sort order is what
// the segmentation walk's tie-break relies on.
func (r *PeriodRepository) ListOverlapping(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.BookingPeriod, error) {
	var periods []domain.BookingPeriod
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND start_date < ? AND end_date > ?", propertyID, end, start).
		Order("start_date ASC").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// Save inserts or updates a period after checking, inside the same
// transaction, that its range does not overlap any other period of the
// property. Non-overlap is a write-time invariant, not an optional validation.
func (r *PeriodRepository) Save(ctx context.Context, p *domain.BookingPeriod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		q := tx.Model(&domain.BookingPeriod{}).
			Where("property_id = ? AND start_date < ? AND end_date > ?", p.PropertyID, p.EndDate, p.StartDate)
		if p.ID != 0 {
			q = q.Where("id <> ?", p.ID)
		}
		if err := q.Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrPeriodOverlap
		}
		return tx.Save(p).Error
	})
}

func (r *PeriodRepository) GetByID(ctx context.Context, id int64) (*domain.BookingPeriod, error) {
	var p domain.BookingPeriod
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PeriodRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.BookingPeriod{}, id).Error
}
