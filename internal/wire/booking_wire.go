package wire

import (
	"artist-booking/internal/adaptor"
	"artist-booking/internal/data/repository"
	"artist-booking/pkg/middleware"
	"artist-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	handler *adaptor.Handler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	booking := handler.Booking
	session := handler.Session

	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.AuthSession, log))

		// ==================== EITHER PARTY ====================
		// GET /api/bookings - List own bookings (role-scoped)
		r.Get("/", booking.ListBookings)

		// GET /api/bookings/{id} - Booking details (parties only)
		r.Get("/{id}", booking.GetBooking)

		// PUT /api/bookings/{id}/cancel - Cancel a booking
		r.Put("/{id}/cancel", booking.CancelBooking)

		// ==================== CLIENT ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(utils.RoleClient, log))

			// POST /api/bookings - Create booking and start checkout
			r.Post("/", booking.CreateBooking)

			// POST /api/bookings/{id}/complete - Redeem completion code
			r.Post("/{id}/complete", booking.CompleteBooking)

			// POST /api/bookings/{id}/review - Review a completed booking
			r.Post("/{id}/review", booking.AddReview)
		})

		// ==================== ARTIST ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(utils.RoleArtist, log))

			// PUT /api/bookings/{id}/confirm - Confirm and capture payment
			r.Put("/{id}/confirm", booking.ConfirmBooking)

			// POST /api/bookings/{id}/delivery - Issue the completion code
			r.Post("/{id}/delivery", booking.MarkReadyForDelivery)

			// Session scheduling inside a booking
			r.Post("/{id}/sessions", session.AddSession)
			r.Put("/{id}/sessions/{sessionID}", session.EditSession)
			r.Delete("/{id}/sessions/{sessionID}", session.DeleteSession)
			r.Put("/{id}/sessions/{sessionID}/complete", session.CompleteSession)
		})
	})
}
