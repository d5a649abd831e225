package refundreq

import (
	"context"
	"errors"
	"testing"
	"time"

	"villabook/internal/domain"
	"villabook/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.RefundRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRequest), args.Error(1)
}

func (m *MockRequestRepo) ListPending(ctx context.Context, limit, offset int) ([]domain.RefundRequest, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefundRequest), args.Error(1)
}

func (m *MockRequestRepo) Reject(ctx context.Context, id uuid.UUID, decidedBy int64, notes string, now time.Time) error {
	args := m.Called(ctx, id, decidedBy, notes, now)
	return args.Error(0)
}

type MockBookingReader struct {
	mock.Mock
}

func (m *MockBookingReader) GetByIDWithPayment(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) CreateRefundForRequest(ctx context.Context, requestID uuid.UUID, decidedBy int64, ref *domain.Refund, now time.Time) error {
	args := m.Called(ctx, requestID, decidedBy, ref, now)
	return args.Error(0)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitRefund(ctx context.Context, ref *domain.Refund, p *domain.Payment) error {
	args := m.Called(ctx, ref, p)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, templateKey, recipient string, vars map[string]string) error {
	args := m.Called(ctx, templateKey, recipient, vars)
	return args.Error(0)
}

type fixture struct {
	requests  *MockRequestRepo
	bookings  *MockBookingReader
	ledger    *MockLedger
	submitter *MockSubmitter
	notifier  *MockNotifier
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		requests:  new(MockRequestRepo),
		bookings:  new(MockBookingReader),
		ledger:    new(MockLedger),
		submitter: new(MockSubmitter),
		notifier:  new(MockNotifier),
	}
	f.service = NewService(f.requests, f.bookings, f.ledger, f.submitter, f.notifier, nil)
	f.service.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func paidBooking(id, userID int64, amount, refunded int64) *domain.Booking {
	return &domain.Booking{
		ID:     id,
		UserID: &userID,
		Status: domain.BookingConfirmed,
		Payment: &domain.Payment{
			ID:              id * 10,
			BookingID:       id,
			Provider:        domain.ProviderGateway,
			Status:          domain.PaymentPaid,
			AmountCents:     amount,
			RefundedCents:   refunded,
			Currency:        "eur",
			PaymentIntentID: "pi_1",
		},
	}
}

func TestCreate_FilesPendingRequest(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByIDWithPayment", mock.Anything, int64(5)).Return(paidBooking(5, 7, 100_000, 0), nil)
	f.requests.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := f.service.Create(context.Background(), 7, CreateRequest{BookingID: 5, Reason: "double charge"})

	assert.NoError(t, err)
	assert.Equal(t, domain.RefundRequestPending, r.Status)
	assert.Equal(t, int64(7), r.RequesterUserID)
}

func TestCreate_ForbiddenForOtherUser(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByIDWithPayment", mock.Anything, int64(5)).Return(paidBooking(5, 7, 100_000, 0), nil)

	_, err := f.service.Create(context.Background(), 99, CreateRequest{BookingID: 5, Reason: "x"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_NothingToRefund(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByIDWithPayment", mock.Anything, int64(5)).Return(paidBooking(5, 7, 100_000, 100_000), nil)

	_, err := f.service.Create(context.Background(), 7, CreateRequest{BookingID: 5, Reason: "x"})

	assert.ErrorIs(t, err, ErrNothingToRefund)
}

func TestCreate_UnpaidBookingRejected(t *testing.T) {
	f := newFixture()
	b := paidBooking(5, 7, 100_000, 0)
	b.Payment.Status = domain.PaymentPending
	f.bookings.On("GetByIDWithPayment", mock.Anything, int64(5)).Return(b, nil)

	_, err := f.service.Create(context.Background(), 7, CreateRequest{BookingID: 5, Reason: "x"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestApprove_RefundsFullRemaining(t *testing.T) {
	f := newFixture()
	requestID := uuid.New()
	b := paidBooking(5, 7, 100_000, 30_000)

	f.requests.On("GetByID", mock.Anything, requestID).
		Return(&domain.RefundRequest{ID: requestID, BookingID: 5, RequesterUserID: 7, Status: domain.RefundRequestPending}, nil)
	f.bookings.On("GetByIDWithPayment", mock.Anything, int64(5)).Return(b, nil)
	f.ledger.On("CreateRefundForRequest", mock.Anything, requestID, int64(1), mock.Anything, mock.Anything).Return(nil)
	f.submitter.On("SubmitRefund", mock.Anything, mock.Anything, b.Payment).Return(nil)
	f.notifier.On("Notify", mock.Anything, "refund_request_approved", "user:7", mock.Anything).Return(nil)

	ref, err := f.service.Approve(context.Background(), requestID, 1, "verified")

	assert.NoError(t, err)
	// the admin path refunds everything still owed, not a policy share
	assert.Equal(t, int64(70_000), ref.AmountCents)
	assert.Equal(t, domain.RefundSourceAdminRequest, ref.Source)
	assert.NotEmpty(t, ref.IdempotencyKey)
}

func TestApprove_AlreadyDecided(t *testing.T) {
	f := newFixture()
	requestID := uuid.New()
	f.requests.On("GetByID", mock.Anything, requestID).
		Return(&domain.RefundRequest{ID: requestID, BookingID: 5, Status: domain.RefundRequestRejected}, nil)

	_, err := f.service.Approve(context.Background(), requestID, 1, "")

	assert.ErrorIs(t, err, ErrAlreadyDecided)
	f.ledger.AssertNotCalled(t, "CreateRefundForRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_ConcurrentDecisionLosesOnLedger(t *testing.T) {
	f := newFixture()
	requestID := uuid.New()
	b := paidBooking(5, 7, 100_000, 0)

	f.requests.On("GetByID", mock.Anything, requestID).
		Return(&domain.RefundRequest{ID: requestID, BookingID: 5, Status: domain.RefundRequestPending}, nil)
	f.bookings.On("GetByIDWithPayment", mock.Anything, int64(5)).Return(b, nil)
	f.ledger.On("CreateRefundForRequest", mock.Anything, requestID, int64(1), mock.Anything, mock.Anything).
		Return(repository.ErrRequestDecided)

	_, err := f.service.Approve(context.Background(), requestID, 1, "")

	assert.ErrorIs(t, err, ErrAlreadyDecided)
	f.submitter.AssertNotCalled(t, "SubmitRefund", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_SubmissionFailureKeepsApproval(t *testing.T) {
	f := newFixture()
	requestID := uuid.New()
	b := paidBooking(5, 7, 100_000, 0)

	f.requests.On("GetByID", mock.Anything, requestID).
		Return(&domain.RefundRequest{ID: requestID, BookingID: 5, RequesterUserID: 7, Status: domain.RefundRequestPending}, nil)
	f.bookings.On("GetByIDWithPayment", mock.Anything, int64(5)).Return(b, nil)
	f.ledger.On("CreateRefundForRequest", mock.Anything, requestID, int64(1), mock.Anything, mock.Anything).Return(nil)
	f.submitter.On("SubmitRefund", mock.Anything, mock.Anything, b.Payment).Return(errors.New("gateway down"))

	ref, err := f.service.Approve(context.Background(), requestID, 1, "")

	assert.NoError(t, err)
	assert.Equal(t, domain.RefundFailed, ref.Status)
}

func TestReject_NotifiesRequester(t *testing.T) {
	f := newFixture()
	requestID := uuid.New()
	f.requests.On("GetByID", mock.Anything, requestID).
		Return(&domain.RefundRequest{ID: requestID, BookingID: 5, RequesterUserID: 7, Status: domain.RefundRequestPending}, nil)
	f.requests.On("Reject", mock.Anything, requestID, int64(1), "not eligible", mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, "refund_request_rejected", "user:7", mock.Anything).Return(nil)

	err := f.service.Reject(context.Background(), requestID, 1, "not eligible")

	assert.NoError(t, err)
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestReject_NotFound(t *testing.T) {
	f := newFixture()
	requestID := uuid.New()
	f.requests.On("GetByID", mock.Anything, requestID).Return(nil, gorm.ErrRecordNotFound)

	err := f.service.Reject(context.Background(), requestID, 1, "")

	assert.ErrorIs(t, err, ErrNotFound)
}
