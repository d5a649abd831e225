package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"villabook/internal/domain"
	"villabook/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookService folds signature-verified gateway events into the ledger.
// Both handlers are idempotent: replaying any event produces the same final
// state and no second financial effect.
type WebhookService struct {
	bookings bookingReader
	payments paymentRepo
	refunds  refundRepo
	ledger   ledgerRepo
	notifs   notifier
	loggerf  func(format string, args ...interface{})
	now      func() time.Time
}

func NewWebhookService(bookings bookingReader, payments paymentRepo, refunds refundRepo, ledger ledgerRepo, notifs notifier, loggerf func(format string, args ...interface{})) *WebhookService {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &WebhookService{
		bookings: bookings,
		payments: payments,
		refunds:  refunds,
		ledger:   ledger,
		notifs:   notifs,
		loggerf:  loggerf,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// HandleCheckoutCompleted confirms the booking a completed checkout session
// belongs to. The booking id comes from event metadata first; when absent or
// invalid, the session id stored at checkout-init time resolves it. The
// fallback only resolves an id, it never creates anything. The gateway's
// reported amount overwrites the locally estimated one.
func (s *WebhookService) HandleCheckoutCompleted(ctx context.Context, evt Event, rawBody []byte) (*WebhookOutcome, error) {
	if evt.Type != EventCheckoutCompleted {
		return &WebhookOutcome{Handled: false, Detail: "ignored event type " + evt.Type}, nil
	}
	obj := evt.Data.Object

	bookingID := obj.BookingIDFromMetadata()
	if bookingID == 0 && obj.ID != "" {
		p, err := s.payments.GetBySessionID(ctx, obj.ID)
		if err == nil {
			bookingID = p.BookingID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if bookingID == 0 {
		return nil, ErrBookingUnresolvable
	}

	b, err := s.bookings.GetByIDWithPayment(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingUnresolvable
		}
		return nil, err
	}
	if b.Payment == nil {
		return nil, ErrBookingUnresolvable
	}
	if b.Payment.Provider != domain.ProviderGateway {
		// Other providers settle outside the gateway; acknowledging is
		// correct, erroring would make the gateway retry forever.
		return &WebhookOutcome{Handled: false, Detail: "non-gateway provider"}, nil
	}

	amount := obj.AmountTotal
	if amount == 0 {
		amount = b.Payment.AmountCents
	}
	changed, err := s.ledger.MarkConfirmedPaid(ctx, bookingID, amount, obj.Currency, obj.ID, obj.PaymentIntent, rawBody, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrBookingCancelled) {
			s.loggerf("level=warn msg=checkout completed for cancelled booking booking_id=%d session=%s", bookingID, obj.ID)
			return &WebhookOutcome{Handled: false, Detail: "booking already cancelled"}, nil
		}
		return nil, err
	}
	if !changed {
		s.loggerf("level=info msg=idempotent checkout replay booking_id=%d", bookingID)
		return &WebhookOutcome{Handled: true, Changed: false, Detail: "already confirmed"}, nil
	}

	s.loggerf("level=info msg=booking confirmed by checkout webhook booking_id=%d amount_cents=%d", bookingID, amount)
	if s.notifs != nil && b.UserID != nil {
		if nErr := s.notifs.Notify(ctx, "booking_confirmed", fmt.Sprintf("user:%d", *b.UserID), map[string]string{
			"booking_id": fmt.Sprintf("%d", bookingID),
		}); nErr != nil {
			s.loggerf("level=error msg=booking confirmation notification failed booking_id=%d err=%v", bookingID, nErr)
		}
	}
	return &WebhookOutcome{Handled: true, Changed: true}, nil
}

// HandleRefundEvent settles refund lifecycle events. Only refund.created and
// refund.updated are processed. The local refund row is resolved primarily by
// external refund id, falling back to the refund_id metadata; when neither
// matches, the event is logged and acknowledged — there is nothing local to
// fix and erroring would loop the delivery forever.
func (s *WebhookService) HandleRefundEvent(ctx context.Context, evt Event, rawBody []byte) (*WebhookOutcome, error) {
	if evt.Type != EventRefundCreated && evt.Type != EventRefundUpdated {
		return &WebhookOutcome{Handled: false, Detail: "ignored event type " + evt.Type}, nil
	}
	obj := evt.Data.Object

	ref, err := s.resolveRefund(ctx, obj)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		s.loggerf("level=warn msg=refund event matches no local refund external_id=%s", obj.ID)
		return &WebhookOutcome{Handled: false, Detail: "no matching refund"}, nil
	}

	// Self-healing link: the submission response may have been lost.
	if ref.ExternalRefundID == "" && obj.ID != "" {
		if err := s.refunds.BackfillExternalID(ctx, ref.ID, obj.ID); err != nil {
			return nil, err
		}
	}

	status := MapGatewayRefundStatus(obj.Status)
	if status != domain.RefundSucceeded {
		// Deliveries can arrive out of order. A late non-succeeded event must
		// not pull an already settled refund out of its terminal state.
		if ref.AppliedAt != nil || ref.Status == domain.RefundSucceeded {
			s.loggerf("level=warn msg=stale refund event ignored refund_id=%s gateway_status=%s", ref.ID, obj.Status)
			return &WebhookOutcome{Handled: true, Changed: false, Detail: "refund already settled"}, nil
		}
		if err := s.refunds.UpdateStatus(ctx, ref.ID, status, rawBody); err != nil {
			return nil, err
		}
		return &WebhookOutcome{Handled: true, Changed: true, Detail: string(status)}, nil
	}

	amount := obj.Amount
	if amount == 0 {
		amount = ref.AmountCents
	}
	applied, err := s.ledger.ApplyRefundSucceeded(ctx, ref.ID, amount, rawBody, s.now())
	if err != nil {
		return nil, err
	}
	if applied {
		s.loggerf("level=info msg=refund applied refund_id=%s amount_cents=%d", ref.ID, amount)
	} else {
		s.loggerf("level=info msg=idempotent refund replay refund_id=%s", ref.ID)
	}

	s.notifyRefunded(ctx, ref.ID)
	return &WebhookOutcome{Handled: true, Changed: applied}, nil
}

func (s *WebhookService) resolveRefund(ctx context.Context, obj EventObject) (*domain.Refund, error) {
	if obj.ID != "" {
		ref, err := s.refunds.GetByExternalID(ctx, obj.ID)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	raw, ok := obj.Metadata["refund_id"]
	if !ok {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	ref, err := s.refunds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ref, nil
}

// notifyRefunded sends the customer notification at most once. The attempt
// runs first and customer_notified_at is set only afterwards, so a failed
// attempt stays retryable on the next delivery; the applied_at gate already
// protects the money.
func (s *WebhookService) notifyRefunded(ctx context.Context, refundID uuid.UUID) {
	if s.notifs == nil {
		return
	}
	ref, err := s.refunds.GetByID(ctx, refundID)
	if err != nil {
		s.loggerf("level=error msg=failed to reload refund for notification refund_id=%s err=%v", refundID, err)
		return
	}
	if ref.CustomerNotifiedAt != nil {
		return
	}

	b, err := s.bookings.GetByIDWithPayment(ctx, ref.BookingID)
	if err != nil || b.UserID == nil {
		return
	}
	if err := s.notifs.Notify(ctx, "refund_succeeded", fmt.Sprintf("user:%d", *b.UserID), map[string]string{
		"booking_id":   fmt.Sprintf("%d", ref.BookingID),
		"amount_cents": fmt.Sprintf("%d", ref.AmountCents),
	}); err != nil {
		s.loggerf("level=error msg=refund notification failed refund_id=%s err=%v", refundID, err)
		return
	}
	if _, err := s.refunds.MarkNotified(ctx, refundID); err != nil {
		s.loggerf("level=error msg=failed to record refund notification refund_id=%s err=%v", refundID, err)
	}
}
