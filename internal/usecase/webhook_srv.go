package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"artist-booking/internal/data/entity"
	"artist-booking/internal/data/repository"
	"artist-booking/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebhookService reconciles processor events into booking state. Every
// handler is idempotent: replays and out-of-order deliveries are applied
// through state-conditional updates that no-op when the booking already
// moved past the event.
type WebhookService interface {
	HandleEvent(ctx context.Context, event *payment.Event) error
}

type webhookService struct {
	repo    *repository.Repository
	gateway payment.Gateway
	log     *zap.Logger
}

func NewWebhookService(repo *repository.Repository, gateway payment.Gateway, log *zap.Logger) WebhookService {
	return &webhookService{
		repo:    repo,
		gateway: gateway,
		log:     log.With(zap.String("service", "webhook")),
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, event *payment.Event) error {
	log := s.log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	var err error
	switch event.Type {
	case payment.EventCheckoutCompleted:
		err = s.handleCheckoutCompleted(ctx, log, event.Data.Object)
	case payment.EventPaymentSucceeded:
		err = s.handlePaymentSucceeded(ctx, log, event.Data.Object)
	case payment.EventPaymentFailed:
		err = s.handlePaymentFailed(ctx, log, event.Data.Object)
	case payment.EventChargeRefunded:
		err = s.handleChargeRefunded(ctx, log, event.Data.Object)
	default:
		// Unknown event types are acknowledged so the processor stops
		// redelivering them.
		log.Debug("Ignoring unhandled event type")
		return nil
	}
	if err != nil {
		return err
	}

	// Record the event id only after the transition applied, so a crash
	// mid-processing leads to a redelivery instead of a lost event.
	firstSeen, err := s.repo.WebhookEvent.Record(ctx, event.ID, event.Type)
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	if !firstSeen {
		log.Info("Replayed webhook event acknowledged")
	}

	return nil
}

// handleCheckoutCompleted attaches the payment intent created by the
// finished checkout session and moves the payment to authorized. The
// checkout is created with manual capture, so completion means funds
// are held, not settled.
func (s *webhookService) handleCheckoutCompleted(ctx context.Context, log *zap.Logger, object json.RawMessage) error {
	var checkout payment.CheckoutObject
	if err := json.Unmarshal(object, &checkout); err != nil {
		return fmt.Errorf("decode checkout object: %w", err)
	}

	if checkout.PaymentIntent == "" {
		log.Warn("Checkout completed without a payment intent",
			zap.String("checkout_session_id", checkout.ID),
		)
		return nil
	}

	applied, err := s.repo.Booking.AttachPaymentIntentCAS(ctx, checkout.ID, checkout.PaymentIntent)
	if err != nil {
		return err
	}
	if !applied {
		// The session id may never have reached the booking when the
		// write after checkout creation failed; fall back to the
		// booking_id metadata and backfill it.
		applied, err = s.attachByBookingMetadata(ctx, &checkout)
		if err != nil {
			return err
		}
	}
	if !applied {
		log.Info("Checkout completion already applied or booking moved on",
			zap.String("checkout_session_id", checkout.ID),
		)
		return nil
	}

	log.Info("Payment authorized via checkout completion",
		zap.String("checkout_session_id", checkout.ID),
		zap.String("payment_intent_id", checkout.PaymentIntent),
		zap.String("booking_id", checkout.Metadata["booking_id"]),
	)
	return nil
}

func (s *webhookService) attachByBookingMetadata(ctx context.Context, checkout *payment.CheckoutObject) (bool, error) {
	raw, ok := checkout.Metadata["booking_id"]
	if !ok {
		return false, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		s.log.Warn("Invalid booking_id metadata on checkout event", zap.String("booking_id", raw))
		return false, nil
	}

	return s.repo.Booking.AttachPaymentIntentByBookingCAS(ctx, id, checkout.ID, checkout.PaymentIntent)
}

func (s *webhookService) handlePaymentSucceeded(ctx context.Context, log *zap.Logger, object json.RawMessage) error {
	var intent payment.IntentObject
	if err := json.Unmarshal(object, &intent); err != nil {
		return fmt.Errorf("decode payment intent object: %w", err)
	}

	booking, err := s.findBookingForIntent(ctx, intent.ID, intent.Metadata)
	if err != nil {
		return err
	}
	if booking == nil {
		log.Warn("No booking found for payment intent",
			zap.String("payment_intent_id", intent.ID),
		)
		return nil
	}

	applied, err := s.repo.Booking.MarkPaymentSucceededCAS(ctx, booking.ID)
	if err != nil {
		return err
	}

	s.backfillStripeFee(ctx, log, booking, intent.LatestCharge)

	if !applied {
		log.Info("Payment success already reflected",
			zap.String("booking_id", booking.ID.String()),
		)
		return nil
	}

	log.Info("Payment marked captured from processor event",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_intent_id", intent.ID),
	)
	return nil
}

// backfillStripeFee repairs a booking whose fee lookup failed at capture
// time. Best effort: a miss here leaves the fee for the next event.
func (s *webhookService) backfillStripeFee(ctx context.Context, log *zap.Logger, booking *entity.Booking, chargeID string) {
	if booking.StripeFeeCents != 0 || chargeID == "" {
		return
	}

	feeCents, err := s.gateway.RetrieveChargeFee(ctx, chargeID)
	if err != nil {
		log.Warn("Stripe fee backfill lookup failed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("charge_id", chargeID),
		)
		return
	}
	if feeCents == 0 {
		return
	}

	applied, err := s.repo.Booking.SetStripeFee(ctx, booking.ID, feeCents)
	if err != nil {
		log.Warn("Stripe fee backfill write failed",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}
	if applied {
		log.Info("Stripe fee backfilled",
			zap.String("booking_id", booking.ID.String()),
			zap.Int64("stripe_fee_cents", feeCents),
		)
	}
}

func (s *webhookService) handlePaymentFailed(ctx context.Context, log *zap.Logger, object json.RawMessage) error {
	var intent payment.IntentObject
	if err := json.Unmarshal(object, &intent); err != nil {
		return fmt.Errorf("decode payment intent object: %w", err)
	}

	booking, err := s.findBookingForIntent(ctx, intent.ID, intent.Metadata)
	if err != nil {
		return err
	}
	if booking == nil {
		log.Warn("No booking found for failed payment intent",
			zap.String("payment_intent_id", intent.ID),
		)
		return nil
	}

	applied, err := s.repo.Booking.MarkPaymentFailedCAS(ctx, booking.ID)
	if err != nil {
		return err
	}
	if !applied {
		log.Info("Payment failure arrived after settlement, ignored",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_status", string(booking.PaymentStatus)),
		)
		return nil
	}

	log.Info("Booking cancelled after payment failure",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_intent_id", intent.ID),
	)
	return nil
}

func (s *webhookService) handleChargeRefunded(ctx context.Context, log *zap.Logger, object json.RawMessage) error {
	var charge payment.ChargeObject
	if err := json.Unmarshal(object, &charge); err != nil {
		return fmt.Errorf("decode charge object: %w", err)
	}

	if !charge.Refunded || charge.PaymentIntent == "" {
		return nil
	}

	booking, err := s.repo.Booking.FindByPaymentIntentID(ctx, charge.PaymentIntent)
	if err != nil {
		return err
	}
	if booking == nil {
		log.Warn("No booking found for refunded charge",
			zap.String("charge_id", charge.ID),
		)
		return nil
	}

	refundID := ""
	if len(charge.Refunds.Data) > 0 {
		refundID = charge.Refunds.Data[0].ID
	}

	applied, err := s.repo.Booking.MarkRefundedCAS(ctx, booking.ID, refundID)
	if err != nil {
		return err
	}
	if !applied {
		log.Info("Refund already reflected",
			zap.String("booking_id", booking.ID.String()),
		)
		return nil
	}

	log.Info("Booking marked refunded from processor event",
		zap.String("booking_id", booking.ID.String()),
		zap.String("refund_id", refundID),
	)
	return nil
}

// findBookingForIntent correlates an intent event to its booking, first
// by the stored intent id, then by the booking_id metadata the checkout
// stamped onto the intent. The metadata path covers the race where the
// intent event outruns checkout.session.completed.
func (s *webhookService) findBookingForIntent(ctx context.Context, intentID string, metadata map[string]string) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByPaymentIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if booking != nil {
		return booking, nil
	}

	if bookingID, ok := metadata["booking_id"]; ok {
		return s.findBookingByMetadataID(ctx, bookingID)
	}

	return nil, nil
}

func (s *webhookService) findBookingByMetadataID(ctx context.Context, raw string) (*entity.Booking, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		s.log.Warn("Invalid booking_id metadata on processor event", zap.String("booking_id", raw))
		return nil, nil
	}
	return s.repo.Booking.FindByID(ctx, id)
}
