package pricing

import (
	"context"
	"errors"
	"time"

	"villabook/internal/domain"
	"villabook/internal/repository"
)

type Service struct {
	reader periodReader
	writer periodWriter
}

func NewService(reader periodReader, writer periodWriter) *Service {
	return &Service{reader: reader, writer: writer}
}

// SegmentOpenPeriods splits the half-open range [start, end) into ordered,
// contiguous, non-overlapping segments, each attributed to exactly one open
// period — or fails for the whole range.
//
// The walk moves a cursor from start to end. At every step the first period in
// start-date order satisfying startDate <= cursor < endDate wins; when periods
// overlap (legacy rows), the earliest-starting one is used deterministically.
// No covering period means ErrNoPeriod, a closed covering period means
// ErrClosed. There is no partial success: one bad night voids the range.
func (s *Service) SegmentOpenPeriods(ctx context.Context, propertyID int64, start, end time.Time) ([]Segment, error) {
	if !end.After(start) {
		return nil, ErrValidation
	}

	periods, err := s.reader.ListOverlapping(ctx, propertyID, start, end)
	if err != nil {
		return nil, err
	}

	var segments []Segment
	cursor := start
	for cursor.Before(end) {
		var covering *domain.BookingPeriod
		for i := range periods {
			if periods[i].Covers(cursor) {
				covering = &periods[i]
				break
			}
		}
		if covering == nil {
			return nil, ErrNoPeriod
		}
		if !covering.IsOpen {
			return nil, ErrClosed
		}

		to := covering.EndDate
		if to.After(end) {
			to = end
		}
		segments = append(segments, Segment{Period: *covering, From: cursor, To: to})
		cursor = to
	}
	return segments, nil
}

// Quote prices a stay. The base total sums nightly prices per segment; when
// the whole stay reaches the weekly threshold of the first covering period and
// that period carries a discount, the discount applies to the entire stay, not
// just the nights beyond the threshold.
func (s *Service) Quote(ctx context.Context, propertyID int64, start, end time.Time, guests int) (*Quote, error) {
	segments, err := s.SegmentOpenPeriods(ctx, propertyID, start, end)
	if err != nil {
		return nil, err
	}

	nights := domain.NightsBetween(start, end)
	var base int64
	for _, seg := range segments {
		p := seg.Period
		if p.MinNights > 0 && nights < p.MinNights {
			return nil, ErrMinNights
		}
		if p.MaxGuests > 0 && guests > p.MaxGuests {
			return nil, ErrMaxGuests
		}
		base += int64(seg.Nights()) * p.NightlyPriceCents
	}

	q := &Quote{
		PropertyID: propertyID,
		StartDate:  start,
		EndDate:    end,
		Nights:     nights,
		BaseCents:  base,
		TotalCents: base,
		Segments:   segments,
	}

	lead := segments[0].Period
	if lead.WeeklyDiscountBps > 0 && lead.WeeklyThresholdNights > 0 && nights >= lead.WeeklyThresholdNights {
		q.TotalCents = discounted(base, lead.WeeklyDiscountBps)
		bps := lead.WeeklyDiscountBps
		q.AppliedBps = &bps
	}
	return q, nil
}

// discounted returns round(base * (1 - bps/10000)).
func discounted(base, bps int64) int64 {
	return (base*(10000-bps) + 5000) / 10000
}

// UpsertPeriod validates and persists a period. Overlap with any other period
// of the property is rejected at write time.
func (s *Service) UpsertPeriod(ctx context.Context, req UpsertPeriodRequest) (*domain.BookingPeriod, error) {
	start, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrValidation
	}
	end, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, ErrValidation
	}
	if !end.After(start) {
		return nil, ErrValidation
	}

	p := &domain.BookingPeriod{
		ID:                    req.ID,
		PropertyID:            req.PropertyID,
		StartDate:             start,
		EndDate:               end,
		IsOpen:                req.IsOpen == nil || *req.IsOpen,
		NightlyPriceCents:     req.NightlyPriceCents,
		WeeklyDiscountBps:     req.WeeklyDiscountBps,
		WeeklyThresholdNights: req.WeeklyThresholdNights,
		MinNights:             req.MinNights,
		MaxGuests:             req.MaxGuests,
	}
	if err := s.writer.Save(ctx, p); err != nil {
		if errors.Is(err, repository.ErrPeriodOverlap) {
			return nil, ErrPeriodOverlap
		}
		return nil, err
	}
	return p, nil
}

// DeletePeriod removes a period. Existing bookings keep their recorded price.
func (s *Service) DeletePeriod(ctx context.Context, id int64) error {
	return s.writer.Delete(ctx, id)
}

// ParseDate parses a date-only value into UTC midnight.
func ParseDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", v)
}
