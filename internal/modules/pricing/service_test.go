package pricing

import (
	"context"
	"testing"
	"time"

	"villabook/internal/domain"
	"villabook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPeriodReader struct {
	mock.Mock
}

func (m *MockPeriodReader) ListOverlapping(ctx context.Context, propertyID int64, start, end time.Time) ([]domain.BookingPeriod, error) {
	args := m.Called(ctx, propertyID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingPeriod), args.Error(1)
}

type MockPeriodWriter struct {
	mock.Mock
}

func (m *MockPeriodWriter) Save(ctx context.Context, p *domain.BookingPeriod) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPeriodWriter) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func openPeriod(id int64, start, end time.Time, priceCents int64) domain.BookingPeriod {
	return domain.BookingPeriod{
		ID:                    id,
		PropertyID:            1,
		StartDate:             start,
		EndDate:               end,
		IsOpen:                true,
		NightlyPriceCents:     priceCents,
		WeeklyDiscountBps:     0,
		WeeklyThresholdNights: 7,
		MinNights:             1,
	}
}

func TestSegmentOpenPeriods_ExactCover(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 10)

	periods := []domain.BookingPeriod{
		openPeriod(1, date(2026, 5, 20), date(2026, 6, 4), 10_000),
		openPeriod(2, date(2026, 6, 4), date(2026, 6, 20), 12_000),
	}
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return(periods, nil)

	service := NewService(reader, nil)
	segments, err := service.SegmentOpenPeriods(context.Background(), 1, start, end)

	assert.NoError(t, err)
	assert.Len(t, segments, 2)
	// segments are contiguous and exactly cover [start, end)
	assert.Equal(t, start, segments[0].From)
	assert.Equal(t, date(2026, 6, 4), segments[0].To)
	assert.Equal(t, date(2026, 6, 4), segments[1].From)
	assert.Equal(t, end, segments[1].To)
	assert.Equal(t, int64(1), segments[0].Period.ID)
	assert.Equal(t, int64(2), segments[1].Period.ID)
}

func TestSegmentOpenPeriods_GapFails(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 10)

	// one uncovered night between the two periods
	periods := []domain.BookingPeriod{
		openPeriod(1, date(2026, 5, 20), date(2026, 6, 4), 10_000),
		openPeriod(2, date(2026, 6, 5), date(2026, 6, 20), 12_000),
	}
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return(periods, nil)

	service := NewService(reader, nil)
	_, err := service.SegmentOpenPeriods(context.Background(), 1, start, end)

	assert.ErrorIs(t, err, ErrNoPeriod)
}

func TestSegmentOpenPeriods_NoPeriodsAtAll(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 3)
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return([]domain.BookingPeriod{}, nil)

	service := NewService(reader, nil)
	_, err := service.SegmentOpenPeriods(context.Background(), 1, start, end)

	assert.ErrorIs(t, err, ErrNoPeriod)
}

func TestSegmentOpenPeriods_ClosedNightFails(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 10)

	closed := openPeriod(2, date(2026, 6, 4), date(2026, 6, 20), 12_000)
	closed.IsOpen = false
	periods := []domain.BookingPeriod{
		openPeriod(1, date(2026, 5, 20), date(2026, 6, 4), 10_000),
		closed,
	}
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return(periods, nil)

	service := NewService(reader, nil)
	_, err := service.SegmentOpenPeriods(context.Background(), 1, start, end)

	assert.ErrorIs(t, err, ErrClosed)
}

func TestSegmentOpenPeriods_OverlapTieBreaksOnEarliestStart(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 5)
	end := date(2026, 6, 8)

	// legacy overlapping rows: the earlier-starting one must win
	periods := []domain.BookingPeriod{
		openPeriod(1, date(2026, 6, 1), date(2026, 6, 10), 10_000),
		openPeriod(2, date(2026, 6, 5), date(2026, 6, 15), 99_000),
	}
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return(periods, nil)

	service := NewService(reader, nil)
	segments, err := service.SegmentOpenPeriods(context.Background(), 1, start, end)

	assert.NoError(t, err)
	assert.Len(t, segments, 1)
	assert.Equal(t, int64(1), segments[0].Period.ID)
}

func TestQuote_BelowThresholdNoDiscount(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 4) // 3 nights

	p := openPeriod(1, date(2026, 5, 1), date(2026, 7, 1), 20_000)
	p.WeeklyDiscountBps = 1000
	p.WeeklyThresholdNights = 7
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return([]domain.BookingPeriod{p}, nil)

	service := NewService(reader, nil)
	q, err := service.Quote(context.Background(), 1, start, end, 2)

	assert.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, int64(60_000), q.BaseCents)
	assert.Equal(t, int64(60_000), q.TotalCents)
	assert.Nil(t, q.AppliedBps)
}

func TestQuote_WeeklyDiscountAppliesToWholeStay(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 9) // 8 nights

	p := openPeriod(1, date(2026, 5, 1), date(2026, 7, 1), 20_000)
	p.WeeklyDiscountBps = 1000 // 10%
	p.WeeklyThresholdNights = 7
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return([]domain.BookingPeriod{p}, nil)

	service := NewService(reader, nil)
	q, err := service.Quote(context.Background(), 1, start, end, 2)

	assert.NoError(t, err)
	assert.Equal(t, 8, q.Nights)
	assert.Equal(t, int64(160_000), q.BaseCents)
	// 10% off the entire stay, not just the 8th night
	assert.Equal(t, int64(144_000), q.TotalCents)
	if assert.NotNil(t, q.AppliedBps) {
		assert.Equal(t, int64(1000), *q.AppliedBps)
	}
}

func TestQuote_MultiSegmentPricing(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 7) // 6 nights: 3 at 10k, 3 at 14k

	periods := []domain.BookingPeriod{
		openPeriod(1, date(2026, 5, 20), date(2026, 6, 4), 10_000),
		openPeriod(2, date(2026, 6, 4), date(2026, 6, 20), 14_000),
	}
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return(periods, nil)

	service := NewService(reader, nil)
	q, err := service.Quote(context.Background(), 1, start, end, 2)

	assert.NoError(t, err)
	assert.Equal(t, int64(3*10_000+3*14_000), q.TotalCents)
	assert.Nil(t, q.AppliedBps)
}

func TestQuote_MinNightsEnforced(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 3)

	p := openPeriod(1, date(2026, 5, 1), date(2026, 7, 1), 20_000)
	p.MinNights = 5
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return([]domain.BookingPeriod{p}, nil)

	service := NewService(reader, nil)
	_, err := service.Quote(context.Background(), 1, start, end, 2)

	assert.ErrorIs(t, err, ErrMinNights)
}

func TestQuote_MaxGuestsEnforced(t *testing.T) {
	reader := new(MockPeriodReader)
	start := date(2026, 6, 1)
	end := date(2026, 6, 5)

	p := openPeriod(1, date(2026, 5, 1), date(2026, 7, 1), 20_000)
	p.MaxGuests = 4
	reader.On("ListOverlapping", mock.Anything, int64(1), start, end).Return([]domain.BookingPeriod{p}, nil)

	service := NewService(reader, nil)
	_, err := service.Quote(context.Background(), 1, start, end, 6)

	assert.ErrorIs(t, err, ErrMaxGuests)
}

func TestSegmentOpenPeriods_InvalidRange(t *testing.T) {
	service := NewService(new(MockPeriodReader), nil)
	_, err := service.SegmentOpenPeriods(context.Background(), 1, date(2026, 6, 5), date(2026, 6, 5))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpsertPeriod_OverlapRejected(t *testing.T) {
	writer := new(MockPeriodWriter)
	writer.On("Save", mock.Anything, mock.Anything).Return(repository.ErrPeriodOverlap)

	service := NewService(new(MockPeriodReader), writer)
	open := true
	_, err := service.UpsertPeriod(context.Background(), UpsertPeriodRequest{
		PropertyID: 1,
		StartDate:  "2026-06-01",
		EndDate:    "2026-06-10",
		IsOpen:     &open,
		MinNights:  1,
	})

	assert.ErrorIs(t, err, ErrPeriodOverlap)
}

func TestUpsertPeriod_BadDates(t *testing.T) {
	service := NewService(new(MockPeriodReader), new(MockPeriodWriter))
	open := true
	_, err := service.UpsertPeriod(context.Background(), UpsertPeriodRequest{
		PropertyID: 1,
		StartDate:  "2026-06-10",
		EndDate:    "2026-06-01",
		IsOpen:     &open,
	})
	assert.ErrorIs(t, err, ErrValidation)
}
