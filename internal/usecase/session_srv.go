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
	"artist-booking/pkg/lock"
	"artist-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService interface {
	AddSession(ctx context.Context, artistID string, bookingID string, req *request.AddSessionRequest) (*response.BookingResponse, error)
	EditSession(ctx context.Context, artistID string, bookingID, sessionID string, req *request.EditSessionRequest) (*response.BookingResponse, error)
	DeleteSession(ctx context.Context, artistID string, bookingID, sessionID string) (*response.BookingResponse, error)
	CompleteSession(ctx context.Context, artistID string, bookingID, sessionID string) (*response.BookingResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	locker *lock.ArtistLocker
	log    *zap.Logger
}

func NewSessionService(repo *repository.Repository, locker *lock.ArtistLocker, log *zap.Logger) SessionService {
	return &sessionService{
		repo:   repo,
		locker: locker,
		log:    log.With(zap.String("service", "session")),
	}
}

// slot is a validated time range for one session.
type slot struct {
	date     string
	start    string
	end      string
	startMin int
	endMin   int
}

func parseSlot(date, start, end string) (*slot, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	startMin, err := utils.ParseClock(start)
	if err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	endMin, err := utils.ParseClock(end)
	if err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	if endMin <= startMin {
		return nil, apperr.Validationf("end time must be after start time")
	}

	return &slot{date: date, start: start, end: end, startMin: startMin, endMin: endMin}, nil
}

func (s *sessionService) AddSession(ctx context.Context, artistID string, bookingID string, req *request.AddSessionRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validationf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	newSlot, err := parseSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	artistUUID, booking, err := s.loadOwnedBooking(ctx, artistID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.IsTerminal() {
		return nil, apperr.Conflictf("booking is %s, sessions can no longer be scheduled", booking.Status)
	}

	// Serialize scheduling per artist so two concurrent adds cannot both
	// pass the overlap checks.
	release, err := s.locker.Acquire(ctx, artistUUID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock so the checks see the latest sessions.
	booking, err = s.reloadLocked(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	// The pre-lock check is only advisory: a cancel may land between the
	// ownership read and the locked reload.
	if booking.IsTerminal() {
		return nil, apperr.Conflictf("booking is %s, sessions can no longer be scheduled", booking.Status)
	}

	// Sessions are appended in chronological order: the new session may
	// not start before the end of the current last session.
	if last := booking.LastSession(); last != nil {
		if newSlot.date < last.Date || (newSlot.date == last.Date && newSlot.startMin < last.EndTimeInMin) {
			return nil, apperr.Conflictf("session must be scheduled after the booking's last session (%s %s)", last.Date, last.EndTime)
		}
	}

	if err := s.checkConflicts(ctx, booking, uuid.Nil, newSlot); err != nil {
		return nil, err
	}

	booking.Sessions = append(booking.Sessions, entity.Session{
		ID:             uuid.New(),
		SessionNumber:  booking.NextSessionNumber(),
		Date:           newSlot.date,
		StartTime:      newSlot.start,
		EndTime:        newSlot.end,
		StartTimeInMin: newSlot.startMin,
		EndTimeInMin:   newSlot.endMin,
		Status:         entity.SessionStatusScheduled,
	})

	return s.persistSessions(ctx, booking, "add session")
}

func (s *sessionService) EditSession(ctx context.Context, artistID string, bookingID, sessionID string, req *request.EditSessionRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validationf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	newSlot, err := parseSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	sessionUUID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validationf("invalid session ID format %s", sessionID)
	}

	artistUUID, booking, err := s.loadOwnedBooking(ctx, artistID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.IsTerminal() {
		return nil, apperr.Conflictf("booking is %s, sessions can no longer be changed", booking.Status)
	}

	release, err := s.locker.Acquire(ctx, artistUUID)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.reloadLocked(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	if booking.IsTerminal() {
		return nil, apperr.Conflictf("booking is %s, sessions can no longer be changed", booking.Status)
	}

	session := booking.FindSession(sessionUUID)
	if session == nil {
		return nil, apperr.NotFoundf("session %s not found in booking", sessionID)
	}

	if session.Status == entity.SessionStatusCompleted {
		return nil, apperr.Conflictf("a completed session cannot be rescheduled")
	}

	if err := s.checkConflicts(ctx, booking, session.ID, newSlot); err != nil {
		return nil, err
	}

	session.Date = newSlot.date
	session.StartTime = newSlot.start
	session.EndTime = newSlot.end
	session.StartTimeInMin = newSlot.startMin
	session.EndTimeInMin = newSlot.endMin
	session.Status = entity.SessionStatusRescheduled

	return s.persistSessions(ctx, booking, "edit session")
}

func (s *sessionService) DeleteSession(ctx context.Context, artistID string, bookingID, sessionID string) (*response.BookingResponse, error) {
	sessionUUID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validationf("invalid session ID format %s", sessionID)
	}

	artistUUID, booking, err := s.loadOwnedBooking(ctx, artistID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.BookingStatusCancelled {
		return nil, apperr.Conflictf("booking is cancelled, sessions can no longer be changed")
	}

	release, err := s.locker.Acquire(ctx, artistUUID)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.reloadLocked(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.BookingStatusCancelled {
		return nil, apperr.Conflictf("booking is cancelled, sessions can no longer be changed")
	}

	found := false
	kept := booking.Sessions[:0]
	for _, session := range booking.Sessions {
		if session.ID == sessionUUID {
			if session.Status == entity.SessionStatusCompleted {
				return nil, apperr.Conflictf("a completed session cannot be deleted")
			}
			found = true
			continue
		}
		kept = append(kept, session)
	}
	if !found {
		return nil, apperr.NotFoundf("session %s not found in booking", sessionID)
	}

	// Remaining numbers are kept as-is; numbering is historical identity
	// and is never reused.
	booking.Sessions = kept

	return s.persistSessions(ctx, booking, "delete session")
}

func (s *sessionService) CompleteSession(ctx context.Context, artistID string, bookingID, sessionID string) (*response.BookingResponse, error) {
	sessionUUID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperr.Validationf("invalid session ID format %s", sessionID)
	}

	artistUUID, booking, err := s.loadOwnedBooking(ctx, artistID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.BookingStatusPending || booking.Status == entity.BookingStatusCancelled {
		return nil, apperr.Conflictf("booking is %s, sessions cannot be completed", booking.Status)
	}

	release, err := s.locker.Acquire(ctx, artistUUID)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err = s.reloadLocked(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.BookingStatusPending || booking.Status == entity.BookingStatusCancelled {
		return nil, apperr.Conflictf("booking is %s, sessions cannot be completed", booking.Status)
	}

	session := booking.FindSession(sessionUUID)
	if session == nil {
		return nil, apperr.NotFoundf("session %s not found in booking", sessionID)
	}

	if session.Status != entity.SessionStatusScheduled && session.Status != entity.SessionStatusRescheduled {
		return nil, apperr.Conflictf("session is %s and cannot be completed", session.Status)
	}

	// Strict in-order completion against the surviving numbering.
	for _, other := range booking.Sessions {
		if other.SessionNumber < session.SessionNumber && other.Status != entity.SessionStatusCompleted {
			return nil, apperr.Conflictf("previous sessions must be completed first")
		}
	}

	session.Status = entity.SessionStatusCompleted

	return s.persistSessions(ctx, booking, "complete session")
}

// ==================== HELPER METHODS ====================

func (s *sessionService) loadOwnedBooking(ctx context.Context, artistID, bookingID string) (uuid.UUID, *entity.Booking, error) {
	artistUUID, err := uuid.Parse(artistID)
	if err != nil {
		return uuid.Nil, nil, apperr.Validationf("invalid artist ID format %s", artistID)
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return uuid.Nil, nil, apperr.Validationf("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return uuid.Nil, nil, apperr.NotFoundf("booking %s not found", bookingID)
	}

	if booking.ArtistID != artistUUID {
		return uuid.Nil, nil, apperr.Forbiddenf("only the booking's artist may manage its sessions")
	}

	return artistUUID, booking, nil
}

// reloadLocked fetches the booking again once the artist lock is held.
// All status and session checks run against this copy.
func (s *sessionService) reloadLocked(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("reload booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking %s not found", bookingID)
	}
	return booking, nil
}

// checkConflicts enforces the no-overlap rules: no overlap with other
// sessions of the same booking, and no overlap with any session of
// another non-terminal booking of the same artist. excludeID skips the
// session being edited.
func (s *sessionService) checkConflicts(ctx context.Context, booking *entity.Booking, excludeID uuid.UUID, candidate *slot) error {
	for _, session := range booking.Sessions {
		if session.ID == excludeID || session.Date != candidate.date {
			continue
		}
		if utils.Overlaps(candidate.startMin, candidate.endMin, session.StartTimeInMin, session.EndTimeInMin) {
			return apperr.Conflictf("session overlaps session #%d (%s-%s) of this booking",
				session.SessionNumber, session.StartTime, session.EndTime)
		}
	}

	others, err := s.repo.Booking.FindSchedulableByArtist(ctx, booking.ArtistID)
	if err != nil {
		return fmt.Errorf("load artist bookings for conflict check: %w", err)
	}

	for _, other := range others {
		if other.ID == booking.ID {
			continue
		}
		for _, session := range other.Sessions {
			if session.Date != candidate.date {
				continue
			}
			if utils.Overlaps(candidate.startMin, candidate.endMin, session.StartTimeInMin, session.EndTimeInMin) {
				return apperr.Conflictf("artist already has a session scheduled %s-%s on %s in another booking",
					session.StartTime, session.EndTime, session.Date)
			}
		}
	}

	return nil
}

// persistSessions recomputes the derived fields and writes the session
// list with the version guard. All validation happens before this point
// so a failed write leaves nothing half-applied.
func (s *sessionService) persistSessions(ctx context.Context, booking *entity.Booking, operation string) (*response.BookingResponse, error) {
	booking.SortSessions()
	booking.ScheduledDurationInMin = booking.SumSessionMinutes()
	booking.Status = booking.RollupStatus()

	applied, err := s.repo.Booking.UpdateSessions(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	if !applied {
		return nil, apperr.Conflictf("booking was modified concurrently, please retry")
	}
	booking.Version++
	booking.UpdatedAt = time.Now()

	s.log.Info("Sessions updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("operation", operation),
		zap.Int("session_count", len(booking.Sessions)),
		zap.Int("scheduled_duration_min", booking.ScheduledDurationInMin),
		zap.String("status", string(booking.Status)),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}
