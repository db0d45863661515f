package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending            BookingStatus = "pending"
	BookingStatusConfirmed          BookingStatus = "confirmed"
	BookingStatusInProgress         BookingStatus = "in_progress"
	BookingStatusReadyForCompletion BookingStatus = "ready_for_completion"
	BookingStatusCompleted          BookingStatus = "completed"
	BookingStatusCancelled          BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type SessionStatus string

const (
	SessionStatusPending     SessionStatus = "pending"
	SessionStatusScheduled   SessionStatus = "scheduled"
	SessionStatusRescheduled SessionStatus = "rescheduled"
	SessionStatusCompleted   SessionStatus = "completed"
)

// ContactInfo is a denormalized snapshot captured at booking time so the
// booking stays readable if the profile changes later.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PaymentInfo holds the processor-side references attached to a booking.
type PaymentInfo struct {
	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
	PaymentIntentID   string `json:"payment_intent_id,omitempty"`
	ChargeID          string `json:"charge_id,omitempty"`
	RefundID          string `json:"refund_id,omitempty"`
	TransferID        string `json:"transfer_id,omitempty"`
}

// Session is a time-boxed appointment embedded in its booking. Sessions
// are never addressable outside the parent aggregate.
type Session struct {
	ID             uuid.UUID     `json:"id"`
	SessionNumber  int           `json:"session_number"`
	Date           string        `json:"date"`
	StartTime      string        `json:"start_time"`
	EndTime        string        `json:"end_time"`
	StartTimeInMin int           `json:"start_time_in_min"`
	EndTimeInMin   int           `json:"end_time_in_min"`
	Status         SessionStatus `json:"status"`
}

type Booking struct {
	BaseNoDelete
	BookingRef string    `db:"booking_ref"`
	ArtistID   uuid.UUID `db:"artist_id"`
	ClientID   uuid.UUID `db:"client_id"`
	ServiceID  uuid.UUID `db:"service_id"`

	ClientInfo ContactInfo `db:"client_info"`
	ArtistInfo ContactInfo `db:"artist_info"`

	Sessions []Session `db:"sessions"`

	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	Payment       PaymentInfo   `db:"payment"`

	// Money in minor units. PriceCents is immutable after creation,
	// StripeFeeCents is recorded at capture, ArtistEarningCents and
	// PlatformFeeCents at completion.
	PriceCents         int64 `db:"price_cents"`
	StripeFeeCents     int64 `db:"stripe_fee_cents"`
	ArtistEarningCents int64 `db:"artist_earning_cents"`
	PlatformFeeCents   int64 `db:"platform_fee_cents"`

	ScheduledDurationInMin int `db:"scheduled_duration_min"`

	OTP          string     `db:"otp"`
	OTPExpiresAt *time.Time `db:"otp_expires_at"`

	CancelledAt *time.Time `db:"cancelled_at"`
	CancelBy    string     `db:"cancel_by"`
	CompletedAt *time.Time `db:"completed_at"`

	Review string `db:"review"`
	Rating int    `db:"rating"`

	// Version guards session/OTP writes with optimistic concurrency.
	Version int `db:"version"`
}

// IsActive reports whether the booking occupies the artist's calendar
// for cross-booking conflict checks.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusInProgress
}

// IsTerminal reports whether the booking reached a final state.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// FindSession returns the embedded session with the given id, or nil.
func (b *Booking) FindSession(sessionID uuid.UUID) *Session {
	for i := range b.Sessions {
		if b.Sessions[i].ID == sessionID {
			return &b.Sessions[i]
		}
	}
	return nil
}

// NextSessionNumber returns max(existing numbers)+1. Numbers are never
// reused after deletion so historical identity is preserved.
func (b *Booking) NextSessionNumber() int {
	next := 1
	for _, s := range b.Sessions {
		if s.SessionNumber >= next {
			next = s.SessionNumber + 1
		}
	}
	return next
}

// LastSession returns the chronologically last session, or nil.
func (b *Booking) LastSession() *Session {
	if len(b.Sessions) == 0 {
		return nil
	}

	last := &b.Sessions[0]
	for i := range b.Sessions {
		s := &b.Sessions[i]
		if s.Date > last.Date || (s.Date == last.Date && s.StartTimeInMin > last.StartTimeInMin) {
			last = s
		}
	}
	return last
}

// SumSessionMinutes recomputes the scheduled duration from the sessions.
func (b *Booking) SumSessionMinutes() int {
	total := 0
	for _, s := range b.Sessions {
		total += s.EndTimeInMin - s.StartTimeInMin
	}
	return total
}

// RollupStatus derives the booking status from the session multiset:
// all completed -> ready_for_completion, some completed -> in_progress,
// otherwise the current status stands.
func (b *Booking) RollupStatus() BookingStatus {
	if len(b.Sessions) == 0 {
		return b.Status
	}

	completed := 0
	for _, s := range b.Sessions {
		if s.Status == SessionStatusCompleted {
			completed++
		}
	}

	switch {
	case completed == len(b.Sessions):
		return BookingStatusReadyForCompletion
	case completed > 0:
		return BookingStatusInProgress
	default:
		return b.Status
	}
}

// SortSessions orders the embedded sessions by session number.
func (b *Booking) SortSessions() {
	sort.Slice(b.Sessions, func(i, j int) bool {
		return b.Sessions[i].SessionNumber < b.Sessions[j].SessionNumber
	})
}
