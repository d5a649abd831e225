package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"villabook/internal/domain"
	"villabook/internal/modules/payment"
	"villabook/internal/modules/policy"
	"villabook/internal/modules/pricing"
	"villabook/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// voucherValidity is how long an issued credit voucher stays redeemable.
const voucherValidity = 365 * 24 * time.Hour

type Service struct {
	bookings      bookingRepo
	cancellations cancellationRepo
	refunds       refundReader
	vouchers      voucherReader
	ledger        ledgerRepo
	prices        quoter
	submitter     refundSubmitter
	notifs        notifier
	loggerf       func(format string, args ...interface{})
	currency      string
	now           func() time.Time
}

func NewService(bookings bookingRepo, cancellations cancellationRepo, refunds refundReader, vouchers voucherReader, ledger ledgerRepo, prices quoter, submitter refundSubmitter, notifs notifier, currency string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings:      bookings,
		cancellations: cancellations,
		refunds:       refunds,
		vouchers:      vouchers,
		ledger:        ledger,
		prices:        prices,
		submitter:     submitter,
		notifs:        notifs,
		loggerf:       loggerf,
		currency:      currency,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create prices the stay through the segmentation engine and persists the
// booking with its pending gateway payment. Pricing failures (gap, closed
// period, min-nights, capacity) void the whole request.
func (s *Service) Create(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	start, err := pricing.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrValidation
	}
	end, err := pricing.ParseDate(req.EndDate)
	if err != nil {
		return nil, ErrValidation
	}
	if !end.After(start) || start.Before(midnight(s.now())) {
		return nil, ErrValidation
	}

	q, err := s.prices.Quote(ctx, req.PropertyID, start, end, req.GuestsCount)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		PropertyID:      req.PropertyID,
		UserID:          &userID,
		StartDate:       start,
		EndDate:         end,
		Status:          domain.BookingPending,
		TotalPriceCents: q.TotalCents,
		GuestsCount:     req.GuestsCount,
		ExtraBedsCount:  req.ExtraBedsCount,
	}
	p := &domain.Payment{
		Provider:    domain.ProviderGateway,
		Status:      domain.PaymentPending,
		AmountCents: q.TotalCents,
		Currency:    s.currency,
	}
	if err := s.bookings.CreateWithPayment(ctx, b, p); err != nil {
		return nil, err
	}
	b.Payment = p
	s.loggerf("level=info msg=booking created booking_id=%d property_id=%d total_cents=%d", b.ID, b.PropertyID, b.TotalPriceCents)
	return b, nil
}

// PreviewCancellation computes what cancelling right now would yield, with no
// side effects. It shares every line of policy math with Cancel, so the two
// cannot drift apart.
func (s *Service) PreviewCancellation(ctx context.Context, bookingID int64, actor Actor) (*CancellationPreview, error) {
	b, err := s.loadOwned(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}

	days := policy.DaysBeforeStart(s.now(), b.StartDate)
	out := policy.ComputeRefundOutcome(days, b.TotalPriceCents)
	return &CancellationPreview{
		BookingID:       b.ID,
		DaysBeforeStart: days,
		TierKey:         out.Tier.Key,
		TierLabel:       out.Tier.Label,
		RefundCents:     out.RefundCents,
		VoucherCents:    out.VoucherCents,
	}, nil
}

// Cancel runs the customer cancellation state machine.
//
// The cancellation itself (booking terminal, cancellation row, voucher,
// pending refund row) commits in one transaction before the gateway is
// called. A gateway failure therefore never rolls back the cancellation: the
// booking stays cancelled, the refund row flips to failed, and the caller
// gets a distinct retry-available result.
func (s *Service) Cancel(ctx context.Context, bookingID int64, actor Actor, req CancelRequest) (*CancelResult, error) {
	b, err := s.loadOwned(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}
	exists, err := s.cancellations.ExistsByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyCancelled
	}
	if b.Payment == nil {
		return nil, fmt.Errorf("booking %d has no payment row", bookingID)
	}

	now := s.now()
	days := policy.DaysBeforeStart(now, b.StartDate)
	outcome := policy.ComputeRefundOutcome(days, b.TotalPriceCents)

	// Non-gateway payments carry no money to move, and a gateway payment
	// that was never captured holds none either. Record the cancellation
	// and stop.
	if b.Payment.Provider != domain.ProviderGateway || b.Payment.Status == domain.PaymentPending {
		c := &domain.Cancellation{
			RefundType: domain.RefundTypeNone,
			TierKey:    outcome.Tier.Key,
			Reason:     req.Reason,
		}
		if err := s.cancel(ctx, bookingID, c, nil, nil, now); err != nil {
			return nil, err
		}
		return &CancelResult{
			BookingID:  bookingID,
			Status:     domain.BookingCancelled,
			RefundType: domain.RefundTypeNone,
		}, nil
	}

	// Cap the refund at what is actually still owed, even when the policy
	// nominally allows more (e.g. after a prior partial refund).
	remaining := b.Payment.RefundableRemaining()
	refundCents := outcome.RefundCents
	if refundCents > remaining {
		refundCents = remaining
	}

	refundType := domain.RefundTypeNone
	switch {
	case refundCents > 0:
		refundType = domain.RefundTypeGateway
	case outcome.VoucherCents > 0:
		refundType = domain.RefundTypeVoucher
	}

	// The cancellation keeps the uncapped policy figure; the refund row
	// carries the amount actually submitted.
	c := &domain.Cancellation{
		PolicyRefundCents:  outcome.RefundCents,
		VoucherIssuedCents: outcome.VoucherCents,
		RefundType:         refundType,
		TierKey:            outcome.Tier.Key,
		Reason:             req.Reason,
	}

	var voucher *domain.CreditVoucher
	if outcome.VoucherCents > 0 && b.UserID != nil {
		voucher = &domain.CreditVoucher{
			UserID:         *b.UserID,
			IssuedCents:    outcome.VoucherCents,
			RemainingCents: outcome.VoucherCents,
			Status:         domain.VoucherActive,
			ExpiresAt:      now.Add(voucherValidity),
		}
	}

	var refund *domain.Refund
	if refundCents > 0 {
		// The pending row exists before the outbound call so a retry finds
		// and updates it instead of duplicating the submission.
		refundID := uuid.New()
		refund = &domain.Refund{
			ID:             refundID,
			PaymentID:      b.Payment.ID,
			Source:         domain.RefundSourcePolicyCancel,
			Status:         domain.RefundPending,
			AmountCents:    refundCents,
			IdempotencyKey: payment.RefundIdempotencyKey(bookingID, refundID.String()),
		}
	}

	if err := s.cancel(ctx, bookingID, c, voucher, refund, now); err != nil {
		return nil, err
	}

	result := &CancelResult{
		BookingID:    bookingID,
		Status:       domain.BookingCancelled,
		RefundType:   refundType,
		RefundCents:  refundCents,
		VoucherCents: outcome.VoucherCents,
		TierKey:      outcome.Tier.Key,
	}

	if refund != nil {
		if err := s.submitter.SubmitRefund(ctx, refund, b.Payment); err != nil {
			// Cancellation and refund submission are decoupled: the booking
			// stays cancelled, the refund row is failed and retryable.
			result.RefundStatus = domain.RefundFailed
			result.RetryAvailable = true
			s.notifyCancelled(ctx, b, req.Reason)
			return result, nil
		}
		result.RefundStatus = domain.RefundPending
	}

	s.notifyCancelled(ctx, b, req.Reason)
	return result, nil
}

func (s *Service) cancel(ctx context.Context, bookingID int64, c *domain.Cancellation, v *domain.CreditVoucher, r *domain.Refund, now time.Time) error {
	err := s.ledger.CancelBooking(ctx, repository.CancelParams{
		BookingID:    bookingID,
		Cancellation: c,
		Voucher:      v,
		Refund:       r,
		Now:          now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrBookingCancelled) || errors.Is(err, repository.ErrCancellationExists) {
			return ErrAlreadyCancelled
		}
		return err
	}
	return nil
}

// RetryRefundSubmission re-sends a failed refund to the gateway. The original
// idempotency key is reused, so even a submission whose response was lost
// cannot execute twice.
func (s *Service) RetryRefundSubmission(ctx context.Context, bookingID int64, refundID uuid.UUID, actor Actor) (*domain.Refund, error) {
	b, err := s.loadOwned(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	ref, err := s.refunds.GetByID(ctx, refundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ref.BookingID != bookingID {
		return nil, ErrNotFound
	}
	if ref.Status != domain.RefundFailed {
		return nil, ErrRefundNotRetryable
	}
	if err := s.submitter.SubmitRefund(ctx, ref, b.Payment); err != nil {
		return nil, err
	}
	return s.refunds.GetByID(ctx, refundID)
}

func (s *Service) GetMyBookings(ctx context.Context, userID int64, limit, offset int) ([]BookingDetails, error) {
	rows, err := s.bookings.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]BookingDetails, 0, len(rows))
	for _, b := range rows {
		d := BookingDetails{
			ID:              b.ID,
			PropertyID:      b.PropertyID,
			StartDate:       b.StartDate,
			EndDate:         b.EndDate,
			Status:          b.Status,
			TotalPriceCents: b.TotalPriceCents,
			GuestsCount:     b.GuestsCount,
		}
		if b.Payment != nil {
			d.PaymentStatus = b.Payment.Status
		}
		out = append(out, d)
	}
	return out, nil
}

// GetMyVouchers lists the credit vouchers issued to the user, newest first.
func (s *Service) GetMyVouchers(ctx context.Context, userID int64) ([]domain.CreditVoucher, error) {
	return s.vouchers.ListByUser(ctx, userID)
}

func (s *Service) GetByID(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error) {
	return s.loadOwned(ctx, bookingID, actor)
}

func (s *Service) loadOwned(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error) {
	b, err := s.bookings.GetByIDWithPayment(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		if b.UserID == nil || *b.UserID != actor.UserID {
			return nil, ErrForbidden
		}
	}
	return b, nil
}

func (s *Service) notifyCancelled(ctx context.Context, b *domain.Booking, reason string) {
	if s.notifs == nil || b.UserID == nil {
		return
	}
	if err := s.notifs.Notify(ctx, "booking_cancelled", fmt.Sprintf("user:%d", *b.UserID), map[string]string{
		"booking_id": fmt.Sprintf("%d", b.ID),
		"reason":     reason,
	}); err != nil {
		s.loggerf("level=error msg=cancellation notification failed booking_id=%d err=%v", b.ID, err)
	}
}

func midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
