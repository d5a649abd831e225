package sweeper

import (
	"context"
	"time"
)

type bookingRepo interface {
	ListExpiredPendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
}

type ledgerRepo interface {
	ExpirePending(ctx context.Context, bookingID int64, now time.Time) (bool, error)
}

// Service cancels pending bookings whose payment hold window has lapsed.
// Each candidate expires in its own transaction so one contended row cannot
// stall the rest of the batch.
type Service struct {
	bookings   bookingRepo
	ledger     ledgerRepo
	holdWindow time.Duration
	batchSize  int
	loggerf    func(format string, args ...interface{})
	now        func() time.Time
}

func NewService(bookings bookingRepo, ledger ledgerRepo, holdWindow time.Duration, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings:   bookings,
		ledger:     ledger,
		holdWindow: holdWindow,
		batchSize:  100,
		loggerf:    loggerf,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SweepOnce expires one batch of lapsed pending bookings and reports how many
// were actually cancelled. Bookings that got paid or cancelled between the
// candidate scan and the row lock come back not-expired, which is fine.
func (s *Service) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.holdWindow)

	ids, err := s.bookings.ListExpiredPendingIDs(ctx, cutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		ok, err := s.ledger.ExpirePending(ctx, id, now)
		if err != nil {
			s.loggerf("level=error msg=expiry sweep failed booking_id=%d err=%v", id, err)
			continue
		}
		if ok {
			expired++
		}
	}

	if expired > 0 {
		s.loggerf("level=info msg=expired unpaid bookings count=%d candidates=%d", expired, len(ids))
	}
	return expired, nil
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.loggerf("level=error msg=expiry sweep pass failed err=%v", err)
			}
		}
	}
}
