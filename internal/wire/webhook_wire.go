package wire

import (
	"artist-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// Webhook delivery is authenticated by signature, not by session.
func wireWebhook(r chi.Router, handler *adaptor.Handler) {
	r.Post("/api/webhooks/stripe", handler.Webhook.HandleWebhook)
}
