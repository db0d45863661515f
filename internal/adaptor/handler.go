package adaptor

import (
	"net/http"

	"artist-booking/internal/usecase"
	"artist-booking/pkg/apperr"
	"artist-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	Session *SessionHandler
	Webhook *WebhookHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, log),
		Session: NewSessionHandler(service.Session, log),
		Webhook: NewWebhookHandler(service.Webhook, config, log),
	}
}

// writeServiceError maps the error taxonomy onto HTTP statuses. Business
// errors keep their message; anything unclassified is a 500 with a
// generic body so internals never leak to the client.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		utils.ResponseUnprocessable(w, err.Error())
	case apperr.KindNotFound:
		utils.ResponseNotFound(w, err.Error())
	case apperr.KindConflict:
		utils.ResponseConflict(w, err.Error())
	case apperr.KindUnauthorized:
		utils.ResponseUnauthorized(w, err.Error())
	case apperr.KindForbidden, apperr.KindPayoutRequired:
		utils.ResponseForbidden(w, err.Error())
	case apperr.KindExternal:
		log.Error("Payment processor call failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseBadGateway(w, "payment processor unavailable, please retry")
	default:
		log.Error("Unhandled service error", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
