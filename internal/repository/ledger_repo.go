package repository

import (
	"context"
	"errors"
	"time"

	"villabook/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrBookingCancelled is returned when a transition is attempted out of
	// the terminal cancelled state.
	ErrBookingCancelled = errors.New("booking already cancelled")
	// ErrCancellationExists is the idempotency guard firing: a cancellation
	// row already exists for the booking.
	ErrCancellationExists = errors.New("cancellation already exists for booking")
)

// LedgerRepository owns every multi-row mutation of the booking/payment/
// refund/voucher ledger. Each method is one transaction built as a row-locked
// read-check-write, so no reader ever observes a booking confirmed without its
// payment paid, or a refund succeeded without refunded_cents updated. The
// database row under the transaction is the lock; there are no in-process
// locks.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CancelParams carries the rows a cancellation commit writes. Refund and
// Voucher are optional; when Refund is set it is persisted as pending before
// any gateway call happens, giving the outbound submission a durable record.
type CancelParams struct {
	BookingID    int64
	Cancellation *domain.Cancellation
	Voucher      *domain.CreditVoucher
	Refund       *domain.Refund
	Now          time.Time
}

// CancelBooking atomically marks the booking cancelled and writes the
// cancellation row plus the optional voucher and pending refund. The unique
// index on cancellations.booking_id backstops the status re-check against
// concurrent cancel attempts.
func (r *LedgerRepository) CancelBooking(ctx context.Context, p CancelParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, p.BookingID).Error; err != nil {
			return err
		}
		if b.Status == domain.BookingCancelled {
			return ErrBookingCancelled
		}

		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND status <> ?", p.BookingID, domain.BookingCancelled).
			Updates(map[string]interface{}{
				"status":       domain.BookingCancelled,
				"cancelled_at": p.Now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookingCancelled
		}

		p.Cancellation.BookingID = p.BookingID
		if err := tx.Create(p.Cancellation).Error; err != nil {
			if IsUniqueViolation(err, "") {
				return ErrCancellationExists
			}
			return err
		}

		if p.Voucher != nil {
			p.Voucher.OriginalBookingID = p.BookingID
			if err := tx.Create(p.Voucher).Error; err != nil {
				return err
			}
		}
		if p.Refund != nil {
			p.Refund.BookingID = p.BookingID
			if err := tx.Create(p.Refund).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkConfirmedPaid folds a checkout-completed event into the ledger: payment
// becomes paid with the gateway-reported amount (authoritative over the local
// estimate) and the booking becomes confirmed, in one transaction. Returns
// false without touching anything when the booking is already confirmed and
// the payment already paid, which is how a duplicate delivery replays safely.
func (r *LedgerRepository) MarkConfirmedPaid(ctx context.Context, bookingID, amountCents int64, currency, sessionID, intentID string, rawEvent []byte, now time.Time) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, bookingID).Error; err != nil {
			return err
		}
		var p domain.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
			return err
		}

		if b.Status == domain.BookingConfirmed && p.Status == domain.PaymentPaid {
			changed = false
			return nil
		}
		if b.Status == domain.BookingCancelled {
			return ErrBookingCancelled
		}

		payUpdates := map[string]interface{}{
			"status":       domain.PaymentPaid,
			"amount_cents": amountCents,
			"paid_at":      now,
		}
		if currency != "" {
			payUpdates["currency"] = currency
		}
		if sessionID != "" {
			payUpdates["checkout_session_id"] = sessionID
		}
		if intentID != "" {
			payUpdates["payment_intent_id"] = intentID
		}
		if len(rawEvent) > 0 {
			payUpdates["raw_event"] = rawEvent
		}
		if err := tx.Model(&domain.Payment{}).Where("id = ?", p.ID).Updates(payUpdates).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Booking{}).Where("id = ?", bookingID).
			Update("status", domain.BookingConfirmed).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

// ApplyRefundSucceeded applies the financial effect of a succeeded refund
// exactly once. The applied_at column is the gate: it is read under a row
// lock, and if already set the call returns applied=false with no effect.
// Otherwise refunded_cents grows by appliedCents capped at amount_cents, the
// payment status flips to refunded or partially_refunded, and applied_at is
// set, all in the same transaction.
func (r *LedgerRepository) ApplyRefundSucceeded(ctx context.Context, refundID uuid.UUID, appliedCents int64, rawEvent []byte, now time.Time) (bool, error) {
	var applied bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ref domain.Refund
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", refundID).First(&ref).Error; err != nil {
			return err
		}
		if ref.AppliedAt != nil {
			applied = false
			return nil
		}

		var p domain.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", ref.PaymentID).First(&p).Error; err != nil {
			return err
		}

		refunded := p.RefundedCents + appliedCents
		if refunded > p.AmountCents {
			refunded = p.AmountCents
		}
		status := domain.PaymentPartiallyRefunded
		if refunded >= p.AmountCents {
			status = domain.PaymentRefunded
		}
		if err := tx.Model(&domain.Payment{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"refunded_cents": refunded,
			"status":         status,
		}).Error; err != nil {
			return err
		}

		refUpdates := map[string]interface{}{
			"status":     domain.RefundSucceeded,
			"applied_at": now,
		}
		if len(rawEvent) > 0 {
			refUpdates["raw_event"] = rawEvent
		}
		if err := tx.Model(&domain.Refund{}).Where("id = ?", ref.ID).Updates(refUpdates).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// ExpirePending reclaims one abandoned pending booking. The caller selected it
// by query; here the row is re-read under a lock and every precondition is
// re-checked, guarding against the race where a checkout webhook confirmed the
// booking between selection and this update. No refund is ever written here:
// pending bookings are never paid.
func (r *LedgerRepository) ExpirePending(ctx context.Context, bookingID int64, now time.Time) (bool, error) {
	var expired bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, bookingID).Error; err != nil {
			return err
		}
		if b.Status != domain.BookingPending {
			expired = false
			return nil
		}
		var cnt int64
		if err := tx.Model(&domain.Cancellation{}).Where("booking_id = ?", bookingID).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			expired = false
			return nil
		}

		if err := tx.Model(&domain.Booking{}).Where("id = ?", bookingID).Updates(map[string]interface{}{
			"status":       domain.BookingCancelled,
			"cancelled_at": now,
		}).Error; err != nil {
			return err
		}
		c := &domain.Cancellation{
			BookingID:  bookingID,
			RefundType: domain.RefundTypeNone,
			Reason:     "expired_unpaid",
		}
		if err := tx.Create(c).Error; err != nil {
			if IsUniqueViolation(err, "") {
				expired = false
				return nil
			}
			return err
		}
		expired = true
		return nil
	})
	return expired, err
}

// CreateRefundForRequest marks the refund request approved and writes the
// pending refund row in one transaction. The status guard in the UPDATE makes
// a second approval lose: zero rows affected means the request was already
// decided.
func (r *LedgerRepository) CreateRefundForRequest(ctx context.Context, requestID uuid.UUID, decidedBy int64, ref *domain.Refund, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ref).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.RefundRequest{}).
			Where("id = ? AND status = ?", requestID, domain.RefundRequestPending).
			Updates(map[string]interface{}{
				"status":              domain.RefundRequestApproved,
				"decided_by":          decidedBy,
				"decided_at":          now,
				"resulting_refund_id": ref.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestDecided
		}
		return nil
	})
}
