package repository

import (
	"context"
	"fmt"
	"time"

	"artist-booking/internal/data/entity"
	"artist-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*entity.Booking, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (*entity.Booking, error)
	FindByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByClientID(ctx context.Context, clientID uuid.UUID) (int64, error)
	FindByArtistID(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByArtistID(ctx context.Context, artistID uuid.UUID) (int64, error)

	// Business queries
	HasPendingForClient(ctx context.Context, clientID uuid.UUID) (bool, error)
	HasPendingForArtistService(ctx context.Context, artistID, serviceID uuid.UUID) (bool, error)
	FindSchedulableByArtist(ctx context.Context, artistID uuid.UUID) ([]*entity.Booking, error)
	SetCheckoutSession(ctx context.Context, id uuid.UUID, checkoutSessionID string) error
	SetReview(ctx context.Context, id uuid.UUID, review string, rating int) (bool, error)
	SetStripeFee(ctx context.Context, id uuid.UUID, feeCents int64) (bool, error)

	// Conditional writes. Each returns applied=false when the booking is
	// no longer in the expected state, so concurrent transitions surface
	// as conflicts instead of corrupting state. Every status transition
	// also bumps version so it collides with UpdateSessions' guard.
	UpdateSessions(ctx context.Context, booking *entity.Booking) (bool, error)
	SetOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) (bool, error)
	ConfirmCAS(ctx context.Context, id uuid.UUID, chargeID string, feeCents int64) (bool, error)
	CancelCAS(ctx context.Context, id uuid.UUID, fromPayment entity.PaymentStatus, toPayment entity.PaymentStatus, refundID, cancelBy string) (bool, error)
	CompleteCAS(ctx context.Context, id uuid.UUID, transferID string, artistEarningCents, platformFeeCents int64) (bool, error)
	AttachPaymentIntentCAS(ctx context.Context, checkoutSessionID, intentID string) (bool, error)
	AttachPaymentIntentByBookingCAS(ctx context.Context, id uuid.UUID, checkoutSessionID, intentID string) (bool, error)
	MarkPaymentSucceededCAS(ctx context.Context, id uuid.UUID) (bool, error)
	MarkPaymentFailedCAS(ctx context.Context, id uuid.UUID) (bool, error)
	MarkRefundedCAS(ctx context.Context, id uuid.UUID, refundID string) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	id, booking_ref, artist_id, client_id, service_id,
	client_info, artist_info, sessions,
	status, payment_status, payment,
	price_cents, stripe_fee_cents, artist_earning_cents, platform_fee_cents,
	scheduled_duration_min, otp, otp_expires_at,
	cancelled_at, cancel_by, completed_at, review, rating,
	version, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.BookingRef,
		&booking.ArtistID,
		&booking.ClientID,
		&booking.ServiceID,
		&booking.ClientInfo,
		&booking.ArtistInfo,
		&booking.Sessions,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.Payment,
		&booking.PriceCents,
		&booking.StripeFeeCents,
		&booking.ArtistEarningCents,
		&booking.PlatformFeeCents,
		&booking.ScheduledDurationInMin,
		&booking.OTP,
		&booking.OTPExpiresAt,
		&booking.CancelledAt,
		&booking.CancelBy,
		&booking.CompletedAt,
		&booking.Review,
		&booking.Rating,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_ref, artist_id, client_id, service_id,
		                      client_info, artist_info, sessions,
		                      status, payment_status, payment,
		                      price_cents, stripe_fee_cents, artist_earning_cents, platform_fee_cents,
		                      scheduled_duration_min, otp, otp_expires_at,
		                      cancelled_at, cancel_by, completed_at, review, rating,
		                      version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.BookingRef,
		booking.ArtistID,
		booking.ClientID,
		booking.ServiceID,
		booking.ClientInfo,
		booking.ArtistInfo,
		booking.Sessions,
		booking.Status,
		booking.PaymentStatus,
		booking.Payment,
		booking.PriceCents,
		booking.StripeFeeCents,
		booking.ArtistEarningCents,
		booking.PlatformFeeCents,
		booking.ScheduledDurationInMin,
		booking.OTP,
		booking.OTPExpiresAt,
		booking.CancelledAt,
		booking.CancelBy,
		booking.CompletedAt,
		booking.Review,
		booking.Rating,
		booking.Version,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_ref", booking.BookingRef),
			zap.String("client_id", booking.ClientID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingRef, err)
	}

	return nil
}

// Delete is a compensation step used only when checkout-session creation
// fails right after insert. Settled bookings are never deleted.
func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1 AND status = 'pending' AND payment_status = 'pending'`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found or no longer pending", id.String())
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByCheckoutSessionID(ctx context.Context, checkoutSessionID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment->>'checkout_session_id' = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, checkoutSessionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by checkout session",
			zap.Error(err),
			zap.String("checkout_session_id", checkoutSessionID),
		)
		return nil, fmt.Errorf("find booking by checkout session %s: %w", checkoutSessionID, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment->>'payment_intent_id' = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, intentID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by payment intent",
			zap.Error(err),
			zap.String("payment_intent_id", intentID),
		)
		return nil, fmt.Errorf("find booking by payment intent %s: %w", intentID, err)
	}

	return booking, nil
}

func (r *bookingRepository) findPage(ctx context.Context, query string, ownerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	bookings, err := r.findPage(ctx, query, clientID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by client ID",
			zap.Error(err),
			zap.String("client_id", clientID.String()),
		)
		return nil, fmt.Errorf("find bookings by client ID %s: %w", clientID.String(), err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByClientID(ctx context.Context, clientID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE client_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, clientID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by client ID",
			zap.Error(err),
			zap.String("client_id", clientID.String()),
		)
		return 0, fmt.Errorf("count bookings by client ID %s: %w", clientID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindByArtistID(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE artist_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	bookings, err := r.findPage(ctx, query, artistID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by artist ID",
			zap.Error(err),
			zap.String("artist_id", artistID.String()),
		)
		return nil, fmt.Errorf("find bookings by artist ID %s: %w", artistID.String(), err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByArtistID(ctx context.Context, artistID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE artist_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, artistID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by artist ID",
			zap.Error(err),
			zap.String("artist_id", artistID.String()),
		)
		return 0, fmt.Errorf("count bookings by artist ID %s: %w", artistID.String(), err)
	}

	return count, nil
}

// ==================== BUSINESS QUERIES ====================

func (r *bookingRepository) HasPendingForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE client_id = $1 AND status = 'pending')`

	var exists bool
	if err := r.db.QueryRow(ctx, query, clientID).Scan(&exists); err != nil {
		r.log.Error("Failed to check pending booking for client",
			zap.Error(err),
			zap.String("client_id", clientID.String()),
		)
		return false, fmt.Errorf("check pending booking for client %s: %w", clientID.String(), err)
	}

	return exists, nil
}

func (r *bookingRepository) HasPendingForArtistService(ctx context.Context, artistID, serviceID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE artist_id = $1 AND service_id = $2 AND status = 'pending')`

	var exists bool
	if err := r.db.QueryRow(ctx, query, artistID, serviceID).Scan(&exists); err != nil {
		r.log.Error("Failed to check pending booking for artist service",
			zap.Error(err),
			zap.String("artist_id", artistID.String()),
			zap.String("service_id", serviceID.String()),
		)
		return false, fmt.Errorf("check pending booking for artist %s service %s: %w",
			artistID.String(), serviceID.String(), err)
	}

	return exists, nil
}

// FindSchedulableByArtist returns every non-terminal booking of the
// artist, used for cross-booking session conflict checks.
func (r *bookingRepository) FindSchedulableByArtist(ctx context.Context, artistID uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE artist_id = $1 AND status NOT IN ('completed', 'cancelled')
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, artistID)
	if err != nil {
		r.log.Error("Failed to find schedulable bookings by artist",
			zap.Error(err),
			zap.String("artist_id", artistID.String()),
		)
		return nil, fmt.Errorf("find schedulable bookings by artist %s: %w", artistID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, checkoutSessionID string) error {
	query := `
		UPDATE bookings
		SET payment = jsonb_set(payment, '{checkout_session_id}', to_jsonb($2::text)),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, checkoutSessionID)
	if err != nil {
		r.log.Error("Failed to set checkout session",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("set checkout session on booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) SetReview(ctx context.Context, id uuid.UUID, review string, rating int) (bool, error) {
	query := `
		UPDATE bookings
		SET review = $2, rating = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'completed'
	`

	result, err := r.db.Exec(ctx, query, id, review, rating)
	if err != nil {
		r.log.Error("Failed to set review",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("set review on booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// SetStripeFee backfills the processor fee when the lookup at capture
// time failed. Only a missing fee on a captured booking is written, so
// a replayed event cannot overwrite a recorded one.
func (r *bookingRepository) SetStripeFee(ctx context.Context, id uuid.UUID, feeCents int64) (bool, error) {
	query := `
		UPDATE bookings
		SET stripe_fee_cents = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND stripe_fee_cents = 0 AND payment_status = 'captured'
	`

	result, err := r.db.Exec(ctx, query, id, feeCents)
	if err != nil {
		r.log.Error("Failed to set stripe fee",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("set stripe fee on booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// ==================== CONDITIONAL WRITES ====================

// UpdateSessions persists the session list, derived duration and rolled
// up status in one write, guarded by the optimistic version.
func (r *bookingRepository) UpdateSessions(ctx context.Context, booking *entity.Booking) (bool, error) {
	query := `
		UPDATE bookings
		SET sessions = $2, scheduled_duration_min = $3, status = $4,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $5
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.Sessions,
		booking.ScheduledDurationInMin,
		booking.Status,
		booking.Version,
	)
	if err != nil {
		r.log.Error("Failed to update sessions",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return false, fmt.Errorf("update sessions on booking %s: %w", booking.ID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) SetOTP(ctx context.Context, id uuid.UUID, otp string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET otp = $2, otp_expires_at = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'ready_for_completion' AND payment_status = 'captured'
	`

	result, err := r.db.Exec(ctx, query, id, otp, expiresAt)
	if err != nil {
		r.log.Error("Failed to set OTP",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("set OTP on booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) ConfirmCAS(ctx context.Context, id uuid.UUID, chargeID string, feeCents int64) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'confirmed', payment_status = 'captured',
		    payment = jsonb_set(payment, '{charge_id}', to_jsonb($2::text)),
		    stripe_fee_cents = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND payment_status = 'authorized'
	`

	result, err := r.db.Exec(ctx, query, id, chargeID, feeCents)
	if err != nil {
		r.log.Error("Failed to confirm booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("confirm booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) CancelCAS(ctx context.Context, id uuid.UUID, fromPayment, toPayment entity.PaymentStatus, refundID, cancelBy string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', payment_status = $3,
		    payment = jsonb_set(payment, '{refund_id}', to_jsonb($4::text)),
		    cancelled_at = NOW(), cancel_by = $5, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND payment_status = $2 AND status IN ('pending', 'confirmed', 'in_progress')
	`

	result, err := r.db.Exec(ctx, query, id, fromPayment, toPayment, refundID, cancelBy)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("cancel booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) CompleteCAS(ctx context.Context, id uuid.UUID, transferID string, artistEarningCents, platformFeeCents int64) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', payment_status = 'succeeded',
		    payment = jsonb_set(payment, '{transfer_id}', to_jsonb($2::text)),
		    artist_earning_cents = $3, platform_fee_cents = $4,
		    otp = '', otp_expires_at = NULL,
		    completed_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'ready_for_completion' AND payment_status = 'captured'
	`

	result, err := r.db.Exec(ctx, query, id, transferID, artistEarningCents, platformFeeCents)
	if err != nil {
		r.log.Error("Failed to complete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("complete booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// AttachPaymentIntentCAS links the intent created by a finished checkout
// session and moves the payment to authorized. No-op on replay.
func (r *bookingRepository) AttachPaymentIntentCAS(ctx context.Context, checkoutSessionID, intentID string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment = jsonb_set(payment, '{payment_intent_id}', to_jsonb($2::text)),
		    payment_status = 'authorized', version = version + 1, updated_at = NOW()
		WHERE payment->>'checkout_session_id' = $1 AND payment_status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, checkoutSessionID, intentID)
	if err != nil {
		r.log.Error("Failed to attach payment intent",
			zap.Error(err),
			zap.String("checkout_session_id", checkoutSessionID),
		)
		return false, fmt.Errorf("attach payment intent to checkout %s: %w", checkoutSessionID, err)
	}

	return result.RowsAffected() > 0, nil
}

// AttachPaymentIntentByBookingCAS is the metadata fallback for checkout
// completion: when the checkout session id was never stored on the
// booking, the event is correlated by the booking_id stamped into the
// checkout metadata, and the session id is backfilled alongside the
// intent.
func (r *bookingRepository) AttachPaymentIntentByBookingCAS(ctx context.Context, id uuid.UUID, checkoutSessionID, intentID string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment = jsonb_set(
		        jsonb_set(payment, '{checkout_session_id}', to_jsonb($2::text)),
		        '{payment_intent_id}', to_jsonb($3::text)),
		    payment_status = 'authorized', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND payment_status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id, checkoutSessionID, intentID)
	if err != nil {
		r.log.Error("Failed to attach payment intent by booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("attach payment intent to booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) MarkPaymentSucceededCAS(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'captured',
		    status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND payment_status IN ('pending', 'authorized')
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark payment succeeded",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("mark payment succeeded on booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) MarkPaymentFailedCAS(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', status = 'cancelled',
		    cancelled_at = NOW(), cancel_by = 'system', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND payment_status IN ('pending', 'authorized')
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark payment failed",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("mark payment failed on booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) MarkRefundedCAS(ctx context.Context, id uuid.UUID, refundID string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'refunded',
		    payment = jsonb_set(payment, '{refund_id}', to_jsonb($2::text)),
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND payment_status != 'refunded'
	`

	result, err := r.db.Exec(ctx, query, id, refundID)
	if err != nil {
		r.log.Error("Failed to mark booking refunded",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("mark booking %s refunded: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}
