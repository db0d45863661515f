package adaptor

import (
	"io"
	"net/http"

	"artist-booking/internal/usecase"
	"artist-booking/pkg/payment"
	"artist-booking/pkg/utils"

	"go.uber.org/zap"
)

// maxWebhookBody bounds the payload read from the processor.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	service usecase.WebhookService
	config  *utils.Config
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.WebhookService, config *utils.Config, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		config:  config,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// HandleWebhook handles POST /api/webhooks/stripe. A 400 is returned
// only when the signature fails; processing failures return 500 so the
// processor retries the delivery.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "failed to read payload", nil)
		return
	}

	event, err := payment.VerifyAndParseEvent(
		body,
		r.Header.Get("Stripe-Signature"),
		h.config.Stripe.WebhookSecret,
		payment.DefaultSignatureTolerance,
	)
	if err != nil {
		h.log.Warn("Webhook signature rejected", zap.Error(err))
		utils.ResponseBadRequest(w, "invalid signature", nil)
		return
	}

	if err := h.service.HandleEvent(r.Context(), event); err != nil {
		h.log.Error("Webhook processing failed",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		utils.ResponseInternalError(w, "event processing failed")
		return
	}

	utils.ResponseSuccess(w, "received", nil)
}
