package refundreq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"villabook/internal/domain"
	"villabook/internal/modules/payment"
	"villabook/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service drives the admin-approved refund path. Unlike the policy
// cancellation it refunds 100% of whatever is still refundable on the
// payment, and it never touches the booking status.
type Service struct {
	requests  requestRepo
	bookings  bookingReader
	ledger    ledgerRepo
	submitter refundSubmitter
	notifs    notifier
	loggerf   func(format string, args ...interface{})
	now       func() time.Time
}

func NewService(requests requestRepo, bookings bookingReader, ledger ledgerRepo, submitter refundSubmitter, notifs notifier, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		requests:  requests,
		bookings:  bookings,
		ledger:    ledger,
		submitter: submitter,
		notifs:    notifs,
		loggerf:   loggerf,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create files a refund request for a paid gateway booking owned by the
// requester.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*domain.RefundRequest, error) {
	b, err := s.bookings.GetByIDWithPayment(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID == nil || *b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Payment == nil || b.Payment.Provider != domain.ProviderGateway {
		return nil, ErrValidation
	}
	if b.Payment.Status != domain.PaymentPaid && b.Payment.Status != domain.PaymentPartiallyRefunded {
		return nil, ErrValidation
	}
	if b.Payment.RefundableRemaining() == 0 {
		return nil, ErrNothingToRefund
	}

	r := &domain.RefundRequest{
		BookingID:       req.BookingID,
		RequesterUserID: userID,
		Reason:          req.Reason,
		Status:          domain.RefundRequestPending,
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Approve moves a pending request to approved and submits a refund for the
// full remaining refundable amount. The pending refund row and the approved
// status commit in one transaction before the gateway call, mirroring the
// cancellation path's durability guarantee.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID, adminID int64, notes string) (*domain.Refund, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.Status != domain.RefundRequestPending {
		return nil, ErrAlreadyDecided
	}

	b, err := s.bookings.GetByIDWithPayment(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Payment == nil {
		return nil, ErrValidation
	}
	remaining := b.Payment.RefundableRemaining()
	if remaining == 0 {
		return nil, ErrNothingToRefund
	}

	refundID := uuid.New()
	ref := &domain.Refund{
		ID:             refundID,
		BookingID:      req.BookingID,
		PaymentID:      b.Payment.ID,
		Source:         domain.RefundSourceAdminRequest,
		Status:         domain.RefundPending,
		AmountCents:    remaining,
		IdempotencyKey: payment.RefundIdempotencyKey(req.BookingID, refundID.String()),
	}
	if err := s.ledger.CreateRefundForRequest(ctx, requestID, adminID, ref, s.now()); err != nil {
		if errors.Is(err, repository.ErrRequestDecided) {
			return nil, ErrAlreadyDecided
		}
		return nil, err
	}

	if err := s.submitter.SubmitRefund(ctx, ref, b.Payment); err != nil {
		// The request stays approved and the failed refund stays retryable;
		// approval and submission are decoupled the same way cancellation is.
		s.loggerf("level=error msg=approved refund submission failed request_id=%s refund_id=%s err=%v", requestID, refundID, err)
		ref.Status = domain.RefundFailed
		return ref, nil
	}

	s.notifyDecision(ctx, req, "refund_request_approved")
	return ref, nil
}

func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, adminID int64, notes string) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.requests.Reject(ctx, requestID, adminID, notes, s.now()); err != nil {
		if errors.Is(err, repository.ErrRequestDecided) {
			return ErrAlreadyDecided
		}
		return err
	}
	s.notifyDecision(ctx, req, "refund_request_rejected")
	return nil
}

func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]domain.RefundRequest, error) {
	return s.requests.ListPending(ctx, limit, offset)
}

func (s *Service) notifyDecision(ctx context.Context, req *domain.RefundRequest, templateKey string) {
	if s.notifs == nil {
		return
	}
	if err := s.notifs.Notify(ctx, templateKey, fmt.Sprintf("user:%d", req.RequesterUserID), map[string]string{
		"booking_id": fmt.Sprintf("%d", req.BookingID),
	}); err != nil {
		s.loggerf("level=error msg=refund request notification failed request_id=%s err=%v", req.ID, err)
	}
}
