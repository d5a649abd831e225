package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) ListExpiredPendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ExpirePending(ctx context.Context, bookingID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookingID, now)
	return args.Bool(0), args.Error(1)
}

var sweepNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newSweeper(bookings *MockBookingRepo, ledger *MockLedger) *Service {
	s := NewService(bookings, ledger, 30*time.Minute, nil)
	s.now = func() time.Time { return sweepNow }
	return s
}

func TestSweepOnce_ExpiresLapsedBookings(t *testing.T) {
	bookings := new(MockBookingRepo)
	ledger := new(MockLedger)
	cutoff := sweepNow.Add(-30 * time.Minute)

	bookings.On("ListExpiredPendingIDs", mock.Anything, cutoff, 100).Return([]int64{1, 2, 3}, nil)
	ledger.On("ExpirePending", mock.Anything, int64(1), sweepNow).Return(true, nil)
	ledger.On("ExpirePending", mock.Anything, int64(2), sweepNow).Return(true, nil)
	ledger.On("ExpirePending", mock.Anything, int64(3), sweepNow).Return(true, nil)

	expired, err := newSweeper(bookings, ledger).SweepOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, expired)
}

func TestSweepOnce_SkipsBookingsThatGotPaidMeanwhile(t *testing.T) {
	bookings := new(MockBookingRepo)
	ledger := new(MockLedger)

	bookings.On("ListExpiredPendingIDs", mock.Anything, mock.Anything, 100).Return([]int64{1, 2}, nil)
	// booking 1 was confirmed by a webhook between the scan and the lock
	ledger.On("ExpirePending", mock.Anything, int64(1), sweepNow).Return(false, nil)
	ledger.On("ExpirePending", mock.Anything, int64(2), sweepNow).Return(true, nil)

	expired, err := newSweeper(bookings, ledger).SweepOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
}

func TestSweepOnce_OneFailureDoesNotStopTheBatch(t *testing.T) {
	bookings := new(MockBookingRepo)
	ledger := new(MockLedger)

	bookings.On("ListExpiredPendingIDs", mock.Anything, mock.Anything, 100).Return([]int64{1, 2}, nil)
	ledger.On("ExpirePending", mock.Anything, int64(1), sweepNow).Return(false, errors.New("deadlock"))
	ledger.On("ExpirePending", mock.Anything, int64(2), sweepNow).Return(true, nil)

	expired, err := newSweeper(bookings, ledger).SweepOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
	ledger.AssertNumberOfCalls(t, "ExpirePending", 2)
}

func TestSweepOnce_ScanFailurePropagates(t *testing.T) {
	bookings := new(MockBookingRepo)
	bookings.On("ListExpiredPendingIDs", mock.Anything, mock.Anything, 100).Return(nil, errors.New("db down"))

	_, err := newSweeper(bookings, new(MockLedger)).SweepOnce(context.Background())

	assert.Error(t, err)
}

func TestSweepOnce_NoCandidates(t *testing.T) {
	bookings := new(MockBookingRepo)
	ledger := new(MockLedger)
	bookings.On("ListExpiredPendingIDs", mock.Anything, mock.Anything, 100).Return([]int64{}, nil)

	expired, err := newSweeper(bookings, ledger).SweepOnce(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, expired)
	ledger.AssertNotCalled(t, "ExpirePending", mock.Anything, mock.Anything, mock.Anything)
}
