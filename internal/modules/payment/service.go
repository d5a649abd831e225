package payment

import (
	"context"
	"errors"
	"fmt"

	"villabook/internal/domain"

	"gorm.io/gorm"
)

// Service owns the outbound side of the gateway integration: opening checkout
// sessions and submitting refunds. The gateway handle is injected so tests and
// other providers can substitute it.
type Service struct {
	bookings bookingReader
	payments paymentRepo
	refunds  refundRepo
	gateway  Gateway
	loggerf  func(format string, args ...interface{})

	successURL string
	cancelURL  string
}

func NewService(bookings bookingReader, payments paymentRepo, refunds refundRepo, gateway Gateway, successURL, cancelURL string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings:   bookings,
		payments:   payments,
		refunds:    refunds,
		gateway:    gateway,
		loggerf:    loggerf,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// InitCheckout opens a gateway session for a pending gateway-provider booking
// and stores the session id on the payment row, which is what the webhook
// fallback lookup later resolves by.
func (s *Service) InitCheckout(ctx context.Context, bookingID, userID int64) (*InitCheckoutResponse, error) {
	b, err := s.bookings.GetByIDWithPayment(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID == nil || *b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingPending || b.Payment == nil || b.Payment.Provider != domain.ProviderGateway {
		return nil, ErrValidation
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutSessionParams{
		AmountCents: b.TotalPriceCents,
		Currency:    b.Payment.Currency,
		Description: fmt.Sprintf("Villa booking #%d", b.ID),
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
		Metadata:    map[string]string{"booking_id": fmt.Sprintf("%d", b.ID)},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.payments.StoreCheckoutSession(ctx, b.ID, session.ID); err != nil {
		return nil, fmt.Errorf("store checkout session: %w", err)
	}
	return &InitCheckoutResponse{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// SubmitRefund sends a pending refund row to the gateway. The row already
// exists durably, so a failed call leaves a consistent failed state and a
// retry reuses the same idempotency key — the gateway will never execute the
// refund twice.
func (s *Service) SubmitRefund(ctx context.Context, ref *domain.Refund, p *domain.Payment) error {
	gr, err := s.gateway.CreateRefund(ctx, CreateRefundParams{
		PaymentIntentID: p.PaymentIntentID,
		AmountCents:     ref.AmountCents,
		Currency:        p.Currency,
		IdempotencyKey:  ref.IdempotencyKey,
		Metadata: map[string]string{
			"booking_id": fmt.Sprintf("%d", ref.BookingID),
			"refund_id":  ref.ID.String(),
		},
	})
	if err != nil {
		s.loggerf("level=error msg=refund submission failed booking_id=%d refund_id=%s err=%v", ref.BookingID, ref.ID, err)
		if mErr := s.refunds.MarkFailed(ctx, ref.ID, err.Error()); mErr != nil {
			s.loggerf("level=error msg=failed to mark refund failed refund_id=%s err=%v", ref.ID, mErr)
		}
		return ErrGatewayUnavailable
	}

	status := MapGatewayRefundStatus(gr.Status)
	if err := s.refunds.MarkSubmitted(ctx, ref.ID, gr.ID, status); err != nil {
		return fmt.Errorf("record refund submission: %w", err)
	}
	s.loggerf("level=info msg=refund submitted booking_id=%d refund_id=%s external_id=%s status=%s", ref.BookingID, ref.ID, gr.ID, status)
	return nil
}

// RefundIdempotencyKey derives the deterministic key for one refund
// submission. Stable identifiers only, so every retry of the same refund
// carries the same key.
func RefundIdempotencyKey(bookingID int64, refundID string) string {
	return fmt.Sprintf("refund:%d:%s", bookingID, refundID)
}

// MapGatewayRefundStatus normalizes the gateway's refund status vocabulary
// onto the local one. Unknown values stay pending until a later event settles
// them.
func MapGatewayRefundStatus(s string) domain.RefundStatus {
	switch s {
	case "succeeded":
		return domain.RefundSucceeded
	case "failed":
		return domain.RefundFailed
	case "canceled", "cancelled":
		return domain.RefundCanceled
	default:
		return domain.RefundPending
	}
}
