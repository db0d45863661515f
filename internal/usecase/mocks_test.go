package usecase

import (
	"context"
	"time"

	"artist-booking/internal/data/entity"
	"artist-booking/pkg/notification"
	"artist-booking/pkg/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*entity.Booking, error) {
	args := m.Called(ctx, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*entity.Booking, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountByClientID(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) FindByArtistID(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	args := m.Called(ctx, artistID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountByArtistID(ctx context.Context, artistID uuid.UUID) (int64, error) {
	args := m.Called(ctx, artistID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) HasPendingForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) HasPendingForArtistService(ctx context.Context, artistID, serviceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, artistID, serviceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) FindSchedulableByArtist(ctx context.Context, artistID uuid.UUID) ([]*entity.Booking, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Booking), args.Error(1)
}

func (m *MockBookingRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, checkoutSessionID string) error {
	args := m.Called(ctx, id, checkoutSessionID)
	return args.Error(0)
}

func (m *MockBookingRepository) SetReview(ctx context.Context, id uuid.UUID, review string, rating int) (bool, error) {
	args := m.Called(ctx, id, review, rating)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) SetStripeFee(ctx context.Context, id uuid.UUID, feeCents int64) (bool, error) {
	args := m.Called(ctx, id, feeCents)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) UpdateSessions(ctx context.Context, booking *entity.Booking) (bool, error) {
	args := m.Called(ctx, booking)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) SetOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, id, otp, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) ConfirmCAS(ctx context.Context, id uuid.UUID, chargeID string, feeCents int64) (bool, error) {
	args := m.Called(ctx, id, chargeID, feeCents)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) CancelCAS(ctx context.Context, id uuid.UUID, fromPayment, toPayment entity.PaymentStatus, refundID, cancelBy string) (bool, error) {
	args := m.Called(ctx, id, fromPayment, toPayment, refundID, cancelBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) CompleteCAS(ctx context.Context, id uuid.UUID, transferID string, artistEarningCents, platformFeeCents int64) (bool, error) {
	args := m.Called(ctx, id, transferID, artistEarningCents, platformFeeCents)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) AttachPaymentIntentCAS(ctx context.Context, checkoutSessionID, intentID string) (bool, error) {
	args := m.Called(ctx, checkoutSessionID, intentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) AttachPaymentIntentByBookingCAS(ctx context.Context, id uuid.UUID, checkoutSessionID, intentID string) (bool, error) {
	args := m.Called(ctx, id, checkoutSessionID, intentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) MarkPaymentSucceededCAS(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) MarkPaymentFailedCAS(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) MarkRefundedCAS(ctx context.Context, id uuid.UUID, refundID string) (bool, error) {
	args := m.Called(ctx, id, refundID)
	return args.Bool(0), args.Error(1)
}

type MockArtistRepository struct {
	mock.Mock
}

func (m *MockArtistRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Artist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Artist), args.Error(1)
}

func (m *MockArtistRepository) IncrementCompleted(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Client), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Service), args.Error(1)
}

func (m *MockServiceRepository) IncrementCompleted(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAuthSessionRepository struct {
	mock.Mock
}

func (m *MockAuthSessionRepository) FindValidSession(ctx context.Context, token string) (*entity.AuthSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthSession), args.Error(1)
}

type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	args := m.Called(ctx, eventID, eventType)
	return args.Bool(0), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockGateway) CapturePaymentIntent(ctx context.Context, intentID string) (*payment.CaptureResult, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CaptureResult), args.Error(1)
}

func (m *MockGateway) CancelPaymentIntent(ctx context.Context, intentID string) (*payment.CancelResult, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CancelResult), args.Error(1)
}

func (m *MockGateway) RetrieveChargeFee(ctx context.Context, chargeID string) (int64, error) {
	args := m.Called(ctx, chargeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) CreateTransfer(ctx context.Context, params payment.TransferParams) (*payment.Transfer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transfer), args.Error(1)
}

func (m *MockGateway) CreateRefund(ctx context.Context, intentID string, amount int64) (*payment.Refund, error) {
	args := m.Called(ctx, intentID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Refund), args.Error(1)
}

// noopNotifier swallows notifications. Dispatch fires them from a
// goroutine, so tests use this instead of an expectation-based mock.
type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, n notification.Notification) error {
	return nil
}
