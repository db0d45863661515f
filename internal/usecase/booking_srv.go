package usecase

import (
	"context"
	"fmt"
	"time"

	"artist-booking/internal/data/entity"
	"artist-booking/internal/data/repository"
	"artist-booking/internal/dto/request"
	"artist-booking/internal/dto/response"
	"artist-booking/pkg/apperr"
	"artist-booking/pkg/notification"
	"artist-booking/pkg/payment"
	"artist-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Client side
	CreateBooking(ctx context.Context, clientID string, req *request.CreateBookingRequest) (*response.CheckoutResponse, error)
	CompleteBooking(ctx context.Context, clientID string, bookingID string, req *request.CompleteBookingRequest) (*response.BookingResponse, error)
	AddReview(ctx context.Context, clientID string, bookingID string, req *request.ReviewBookingRequest) (*response.BookingResponse, error)

	// Artist side
	ConfirmBooking(ctx context.Context, artistID string, bookingID string) (*response.BookingResponse, error)
	MarkReadyForDelivery(ctx context.Context, artistID string, bookingID string) error

	// Either party
	CancelBooking(ctx context.Context, actorID, role string, bookingID string) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, actorID, role string, bookingID string) (*response.BookingResponse, error)
	ListBookings(ctx context.Context, actorID, role string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo     *repository.Repository
	gateway  payment.Gateway
	notifier notification.Notifier
	config   *utils.Config
	log      *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	gateway payment.Gateway,
	notifier notification.Notifier,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		config:   config,
		log:      log.With(zap.String("service", "booking")),
	}
}

// Idempotency keys are derived from the booking id and operation name so
// a retried gateway call never duplicates the financial operation.
func checkoutIdempotencyKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("checkout:%s", bookingID.String())
}

func transferIdempotencyKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("transfer:%s", bookingID.String())
}

func (s *bookingService) CreateBooking(ctx context.Context, clientID string, req *request.CreateBookingRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validationf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	clientUUID, err := uuid.Parse(clientID)
	if err != nil {
		return nil, apperr.Validationf("invalid client ID format %s", clientID)
	}

	serviceUUID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperr.Validationf("invalid service ID format %s", req.ServiceID)
	}

	if req.PreferredDateTo < req.PreferredDateFrom {
		return nil, apperr.Validationf("preferred date range is inverted")
	}

	service, err := s.repo.Service.FindByID(ctx, serviceUUID)
	if err != nil {
		return nil, fmt.Errorf("find service: %w", err)
	}
	if service == nil {
		return nil, apperr.NotFoundf("service %s not found", req.ServiceID)
	}

	artist, err := s.repo.Artist.FindByID(ctx, service.ArtistID)
	if err != nil {
		return nil, fmt.Errorf("find artist: %w", err)
	}
	if artist == nil {
		return nil, apperr.NotFoundf("artist for service %s not found", req.ServiceID)
	}

	client, err := s.repo.Client.FindByID(ctx, clientUUID)
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	if client == nil {
		return nil, apperr.NotFoundf("client %s not found", clientID)
	}

	// One pending booking per client, and one pending booking per
	// artist+service pair.
	hasPending, err := s.repo.Booking.HasPendingForClient(ctx, clientUUID)
	if err != nil {
		return nil, fmt.Errorf("check pending bookings: %w", err)
	}
	if hasPending {
		return nil, apperr.Conflictf("you already have a pending booking, complete or cancel it first")
	}

	hasPending, err = s.repo.Booking.HasPendingForArtistService(ctx, artist.ID, service.ID)
	if err != nil {
		return nil, fmt.Errorf("check pending bookings: %w", err)
	}
	if hasPending {
		return nil, apperr.Conflictf("this service already has a pending booking")
	}

	now := time.Now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingRef:    utils.GenerateBookingRef(),
		ArtistID:      artist.ID,
		ClientID:      clientUUID,
		ServiceID:     service.ID,
		ClientInfo:    client.Contact(),
		ArtistInfo:    artist.Contact(),
		Sessions:      []entity.Session{},
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
		PriceCents:    service.PriceCents,
		Version:       1,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	checkout, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		Amount:      booking.PriceCents,
		Currency:    s.config.Stripe.Currency,
		Description: fmt.Sprintf("%s with %s", service.Name, artist.Name),
		Metadata: map[string]string{
			"booking_id":          booking.ID.String(),
			"booking_ref":         booking.BookingRef,
			"preferred_date_from": req.PreferredDateFrom,
			"preferred_date_to":   req.PreferredDateTo,
		},
		IdempotencyKey: checkoutIdempotencyKey(booking.ID),
	})
	if err != nil {
		// Compensate: the booking must not survive pointing at a payment
		// handle that was never created.
		if delErr := s.repo.Booking.Delete(ctx, booking.ID); delErr != nil {
			s.log.Error("Failed to roll back booking after checkout failure",
				zap.Error(delErr),
				zap.String("booking_id", booking.ID.String()),
			)
		}
		return nil, err
	}

	booking.Payment.CheckoutSessionID = checkout.ID
	if err := s.repo.Booking.SetCheckoutSession(ctx, booking.ID, checkout.ID); err != nil {
		// The webhook can still correlate by booking_id metadata, so the
		// booking is kept.
		s.log.Error("Failed to store checkout session reference",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("checkout_session_id", checkout.ID),
		)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_ref", booking.BookingRef),
		zap.String("client_id", clientID),
		zap.String("artist_id", artist.ID.String()),
		zap.Int64("price_cents", booking.PriceCents),
	)

	return &response.CheckoutResponse{
		Booking:     response.BookingToResponse(booking),
		CheckoutURL: checkout.URL,
	}, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, artistID string, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadPartyBooking(ctx, artistID, utils.RoleArtist, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != entity.BookingStatusPending {
		return nil, apperr.Conflictf("booking is already %s", booking.Status)
	}
	if booking.PaymentStatus != entity.PaymentStatusAuthorized {
		return nil, apperr.Conflictf("payment has not been authorized yet")
	}
	if len(booking.Sessions) == 0 {
		return nil, apperr.Conflictf("schedule at least one session before confirming")
	}

	capture, err := s.gateway.CapturePaymentIntent(ctx, booking.Payment.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	feeCents, err := s.gateway.RetrieveChargeFee(ctx, capture.LatestChargeID)
	if err != nil {
		// Capture already settled; record without the fee rather than
		// blocking the confirmation.
		s.log.Warn("Failed to retrieve processor fee after capture",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("charge_id", capture.LatestChargeID),
		)
		feeCents = 0
	}

	applied, err := s.repo.Booking.ConfirmCAS(ctx, booking.ID, capture.LatestChargeID, feeCents)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	if !applied {
		return nil, apperr.Conflictf("booking was already confirmed")
	}

	booking.Status = entity.BookingStatusConfirmed
	booking.PaymentStatus = entity.PaymentStatusCaptured
	booking.Payment.ChargeID = capture.LatestChargeID
	booking.StripeFeeCents = feeCents

	s.log.Info("Booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("charge_id", capture.LatestChargeID),
		zap.Int64("amount_received_cents", capture.AmountReceived),
		zap.Int64("stripe_fee_cents", feeCents),
	)

	notification.Dispatch(s.notifier, s.log, notification.Notification{
		Kind:           notification.KindBookingConfirmed,
		RecipientEmail: booking.ClientInfo.Email,
		RecipientPhone: booking.ClientInfo.Phone,
		BookingID:      booking.ID.String(),
		Data: map[string]string{
			"booking_ref": booking.BookingRef,
			"artist_name": booking.ArtistInfo.Name,
		},
	})

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actorID, role string, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadPartyBooking(ctx, actorID, role, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.IsTerminal() {
		return nil, apperr.Conflictf("booking is already %s", booking.Status)
	}

	// Once every session is delivered the only way out is completion.
	if booking.Status == entity.BookingStatusReadyForCompletion {
		return nil, apperr.Conflictf("all sessions are delivered, booking can only be completed")
	}

	var refundID string
	fromPayment := booking.PaymentStatus

	switch booking.PaymentStatus {
	case entity.PaymentStatusAuthorized:
		// Funds are only held, release them.
		if _, err := s.gateway.CancelPaymentIntent(ctx, booking.Payment.PaymentIntentID); err != nil {
			return nil, err
		}

	case entity.PaymentStatusCaptured:
		if role != utils.RoleArtist {
			return nil, apperr.Forbiddenf("only the artist may cancel a captured booking")
		}
		// Refund the net amount using the fee recorded at capture time.
		refund, err := s.gateway.CreateRefund(ctx, booking.Payment.PaymentIntentID, booking.PriceCents-booking.StripeFeeCents)
		if err != nil {
			return nil, err
		}
		refundID = refund.ID

	default:
		return nil, apperr.Conflictf("booking with payment status %s cannot be cancelled", booking.PaymentStatus)
	}

	applied, err := s.repo.Booking.CancelCAS(ctx, booking.ID, fromPayment, entity.PaymentStatusRefunded, refundID, role)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if !applied {
		return nil, apperr.Conflictf("booking state changed, cancellation not applied")
	}

	now := time.Now()
	booking.Status = entity.BookingStatusCancelled
	booking.PaymentStatus = entity.PaymentStatusRefunded
	booking.Payment.RefundID = refundID
	booking.CancelledAt = &now
	booking.CancelBy = role

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("cancel_by", role),
		zap.String("refund_id", refundID),
	)

	// Tell the other party.
	recipient := booking.ClientInfo
	if role == utils.RoleClient {
		recipient = booking.ArtistInfo
	}
	notification.Dispatch(s.notifier, s.log, notification.Notification{
		Kind:           notification.KindBookingCancelled,
		RecipientEmail: recipient.Email,
		RecipientPhone: recipient.Phone,
		BookingID:      booking.ID.String(),
		Data: map[string]string{
			"booking_ref": booking.BookingRef,
			"cancel_by":   role,
		},
	})

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) MarkReadyForDelivery(ctx context.Context, artistID string, bookingID string) error {
	booking, err := s.loadPartyBooking(ctx, artistID, utils.RoleArtist, bookingID)
	if err != nil {
		return err
	}

	if booking.Status != entity.BookingStatusReadyForCompletion || booking.PaymentStatus != entity.PaymentStatusCaptured {
		return apperr.Conflictf("all sessions must be completed and payment captured before delivery")
	}

	otp := utils.GenerateOTP(s.config.OTP.Length)
	expiresAt := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	applied, err := s.repo.Booking.SetOTP(ctx, booking.ID, otp, expiresAt)
	if err != nil {
		return fmt.Errorf("issue completion code: %w", err)
	}
	if !applied {
		return apperr.Conflictf("booking state changed, completion code not issued")
	}

	s.log.Info("Completion code issued",
		zap.String("booking_id", booking.ID.String()),
		zap.Time("expires_at", expiresAt),
	)

	// The code travels out-of-band to the client, never in the API reply.
	notification.Dispatch(s.notifier, s.log, notification.Notification{
		Kind:           notification.KindCompletionOTP,
		RecipientEmail: booking.ClientInfo.Email,
		RecipientPhone: booking.ClientInfo.Phone,
		BookingID:      booking.ID.String(),
		Data: map[string]string{
			"booking_ref": booking.BookingRef,
			"otp":         otp,
		},
	})

	return nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, clientID string, bookingID string, req *request.CompleteBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validationf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, err := s.loadPartyBooking(ctx, clientID, utils.RoleClient, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != entity.BookingStatusReadyForCompletion || booking.PaymentStatus != entity.PaymentStatusCaptured {
		return nil, apperr.Conflictf("booking is not ready for completion")
	}

	if booking.OTP == "" || booking.OTP != req.OTP {
		return nil, apperr.Validationf("invalid completion code")
	}
	if booking.OTPExpiresAt == nil || time.Now().After(*booking.OTPExpiresAt) {
		return nil, apperr.Validationf("completion code has expired")
	}

	artist, err := s.repo.Artist.FindByID(ctx, booking.ArtistID)
	if err != nil {
		return nil, fmt.Errorf("find artist: %w", err)
	}
	if artist == nil {
		return nil, apperr.NotFoundf("artist %s not found", booking.ArtistID.String())
	}
	if !artist.HasPayoutAccount() {
		return nil, apperr.PayoutRequiredf("artist has no payout account configured")
	}

	// Commission math in integer minor units, no rounding drift:
	// price = platform fee + processor fee + artist earning.
	amount := booking.PriceCents
	platformFee := amount * s.config.Stripe.CommissionPercent / 100
	artistEarning := amount - platformFee - booking.StripeFeeCents
	if artistEarning <= 0 {
		return nil, apperr.Conflictf("artist payout would not be positive")
	}

	transfer, err := s.gateway.CreateTransfer(ctx, payment.TransferParams{
		Amount:         artistEarning,
		Currency:       s.config.Stripe.Currency,
		Destination:    artist.StripeAccountID,
		SourceChargeID: booking.Payment.ChargeID,
		IdempotencyKey: transferIdempotencyKey(booking.ID),
	})
	if err != nil {
		// No local change: the booking stays ready_for_completion and the
		// completion may be retried.
		return nil, err
	}

	applied, err := s.repo.Booking.CompleteCAS(ctx, booking.ID, transfer.ID, artistEarning, platformFee)
	if err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}
	if !applied {
		return nil, apperr.Conflictf("booking was already completed")
	}

	if err := s.repo.Artist.IncrementCompleted(ctx, booking.ArtistID); err != nil {
		s.log.Warn("Failed to increment artist completion counter", zap.Error(err))
	}
	if err := s.repo.Service.IncrementCompleted(ctx, booking.ServiceID); err != nil {
		s.log.Warn("Failed to increment service completion counter", zap.Error(err))
	}

	now := time.Now()
	booking.Status = entity.BookingStatusCompleted
	booking.PaymentStatus = entity.PaymentStatusSucceeded
	booking.Payment.TransferID = transfer.ID
	booking.ArtistEarningCents = artistEarning
	booking.PlatformFeeCents = platformFee
	booking.OTP = ""
	booking.OTPExpiresAt = nil
	booking.CompletedAt = &now

	s.log.Info("Booking completed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("transfer_id", transfer.ID),
		zap.Int64("artist_earning_cents", artistEarning),
		zap.Int64("platform_fee_cents", platformFee),
	)

	notification.Dispatch(s.notifier, s.log, notification.Notification{
		Kind:           notification.KindBookingCompleted,
		RecipientEmail: booking.ArtistInfo.Email,
		RecipientPhone: booking.ArtistInfo.Phone,
		BookingID:      booking.ID.String(),
		Data: map[string]string{
			"booking_ref":          booking.BookingRef,
			"artist_earning_cents": fmt.Sprintf("%d", artistEarning),
		},
	})

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) AddReview(ctx context.Context, clientID string, bookingID string, req *request.ReviewBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validationf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, err := s.loadPartyBooking(ctx, clientID, utils.RoleClient, bookingID)
	if err != nil {
		return nil, err
	}

	applied, err := s.repo.Booking.SetReview(ctx, booking.ID, req.Review, req.Rating)
	if err != nil {
		return nil, fmt.Errorf("set review: %w", err)
	}
	if !applied {
		return nil, apperr.Conflictf("only completed bookings can be reviewed")
	}

	booking.Review = req.Review
	booking.Rating = req.Rating

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actorID, role string, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadPartyBooking(ctx, actorID, role, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListBookings(ctx context.Context, actorID, role string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, apperr.Validationf("invalid user ID format %s", actorID)
	}

	limit := req.Limit()
	offset := req.Offset()

	var bookings []*entity.Booking
	var total int64

	switch role {
	case utils.RoleClient:
		bookings, err = s.repo.Booking.FindByClientID(ctx, actorUUID, limit, offset)
		if err == nil {
			total, err = s.repo.Booking.CountByClientID(ctx, actorUUID)
		}
	case utils.RoleArtist:
		bookings, err = s.repo.Booking.FindByArtistID(ctx, actorUUID, limit, offset)
		if err == nil {
			total, err = s.repo.Booking.CountByArtistID(ctx, actorUUID)
		}
	default:
		return nil, apperr.Forbiddenf("unknown role %s", role)
	}
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	items := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		items[i] = response.BookingToResponse(booking)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

// ==================== HELPER METHODS ====================

// loadPartyBooking fetches a booking and verifies that the actor is the
// booking party matching the role. No other actor may touch a booking.
func (s *bookingService) loadPartyBooking(ctx context.Context, actorID, role string, bookingID string) (*entity.Booking, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, apperr.Validationf("invalid user ID format %s", actorID)
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperr.Validationf("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking %s not found", bookingID)
	}

	switch role {
	case utils.RoleClient:
		if booking.ClientID != actorUUID {
			return nil, apperr.Forbiddenf("you are not a party to this booking")
		}
	case utils.RoleArtist:
		if booking.ArtistID != actorUUID {
			return nil, apperr.Forbiddenf("you are not a party to this booking")
		}
	default:
		return nil, apperr.Forbiddenf("unknown role %s", role)
	}

	return booking, nil
}
