package adaptor

import (
	"encoding/json"
	"net/http"

	"artist-booking/internal/dto/request"
	"artist-booking/internal/usecase"
	"artist-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SessionHandler struct {
	service usecase.SessionService
	log     *zap.Logger
}

func NewSessionHandler(service usecase.SessionService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log.With(zap.String("handler", "session")),
	}
}

// AddSession handles POST /api/bookings/{id}/sessions (artist)
func (h *SessionHandler) AddSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.AddSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.AddSession(r.Context(), userID.String(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "add session")
		return
	}

	utils.ResponseCreated(w, "session scheduled", booking)
}

// EditSession handles PUT /api/bookings/{id}/sessions/{sessionID} (artist)
func (h *SessionHandler) EditSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.EditSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.EditSession(r.Context(), userID.String(), chi.URLParam(r, "id"), chi.URLParam(r, "sessionID"), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "edit session")
		return
	}

	utils.ResponseSuccess(w, "session rescheduled", booking)
}

// DeleteSession handles DELETE /api/bookings/{id}/sessions/{sessionID} (artist)
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	booking, err := h.service.DeleteSession(r.Context(), userID.String(), chi.URLParam(r, "id"), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, h.log, err, "delete session")
		return
	}

	utils.ResponseSuccess(w, "session removed", booking)
}

// CompleteSession handles PUT /api/bookings/{id}/sessions/{sessionID}/complete (artist)
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	booking, err := h.service.CompleteSession(r.Context(), userID.String(), chi.URLParam(r, "id"), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, h.log, err, "complete session")
		return
	}

	utils.ResponseSuccess(w, "session completed", booking)
}
