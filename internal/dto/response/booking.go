package response

import (
	"time"

	"artist-booking/internal/data/entity"
)

type SessionResponse struct {
	ID             string `json:"id"`
	SessionNumber  int    `json:"session_number"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	DurationInMin  int    `json:"duration_in_min"`
	Status         string `json:"status"`
}

type BookingResponse struct {
	ID                     string            `json:"id"`
	BookingRef             string            `json:"booking_ref"`
	ArtistID               string            `json:"artist_id"`
	ClientID               string            `json:"client_id"`
	ServiceID              string            `json:"service_id"`
	ClientName             string            `json:"client_name"`
	ArtistName             string            `json:"artist_name"`
	Status                 string            `json:"status"`
	PaymentStatus          string            `json:"payment_status"`
	PriceCents             int64             `json:"price_cents"`
	StripeFeeCents         int64             `json:"stripe_fee_cents,omitempty"`
	ArtistEarningCents     int64             `json:"artist_earning_cents,omitempty"`
	PlatformFeeCents       int64             `json:"platform_fee_cents,omitempty"`
	ScheduledDurationInMin int               `json:"scheduled_duration_in_min"`
	Sessions               []SessionResponse `json:"sessions"`
	Review                 string            `json:"review,omitempty"`
	Rating                 int               `json:"rating,omitempty"`
	CancelledAt            *time.Time        `json:"cancelled_at,omitempty"`
	CancelBy               string            `json:"cancel_by,omitempty"`
	CompletedAt            *time.Time        `json:"completed_at,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// CheckoutResponse is returned from booking creation so the caller can
// redirect the client to the hosted payment page.
type CheckoutResponse struct {
	Booking     BookingResponse `json:"booking"`
	CheckoutURL string          `json:"checkout_url"`
}

func SessionToResponse(s entity.Session) SessionResponse {
	return SessionResponse{
		ID:            s.ID.String(),
		SessionNumber: s.SessionNumber,
		Date:          s.Date,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		DurationInMin: s.EndTimeInMin - s.StartTimeInMin,
		Status:        string(s.Status),
	}
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	sessions := make([]SessionResponse, len(b.Sessions))
	for i, s := range b.Sessions {
		sessions[i] = SessionToResponse(s)
	}

	return BookingResponse{
		ID:                     b.ID.String(),
		BookingRef:             b.BookingRef,
		ArtistID:               b.ArtistID.String(),
		ClientID:               b.ClientID.String(),
		ServiceID:              b.ServiceID.String(),
		ClientName:             b.ClientInfo.Name,
		ArtistName:             b.ArtistInfo.Name,
		Status:                 string(b.Status),
		PaymentStatus:          string(b.PaymentStatus),
		PriceCents:             b.PriceCents,
		StripeFeeCents:         b.StripeFeeCents,
		ArtistEarningCents:     b.ArtistEarningCents,
		PlatformFeeCents:       b.PlatformFeeCents,
		ScheduledDurationInMin: b.ScheduledDurationInMin,
		Sessions:               sessions,
		Review:                 b.Review,
		Rating:                 b.Rating,
		CancelledAt:            b.CancelledAt,
		CancelBy:               b.CancelBy,
		CompletedAt:            b.CompletedAt,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}
