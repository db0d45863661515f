package usecase

import (
	"context"
	"testing"
	"time"

	"artist-booking/internal/data/entity"
	"artist-booking/internal/data/repository"
	"artist-booking/internal/dto/request"
	"artist-booking/pkg/apperr"
	"artist-booking/pkg/lock"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// newTestLocker returns a locker whose single acquire attempt succeeds
// or fails. Arguments are matched loosely because the lock token is
// random.
func newTestLocker(acquired bool) *lock.ArtistLocker {
	db, redisMock := redismock.NewClientMock()
	redisMock.CustomMatch(func(expected, actual []interface{}) error {
		return nil
	}).ExpectSetNX("", "", time.Second).SetVal(acquired)

	return lock.NewArtistLocker(db, time.Second, zap.NewNop())
}

func newSessionTestService(bookingRepo *MockBookingRepository, locker *lock.ArtistLocker) SessionService {
	repo := &repository.Repository{Booking: bookingRepo}
	return NewSessionService(repo, locker, zap.NewNop())
}

func schedulingBooking(artistID uuid.UUID, status entity.BookingStatus) *entity.Booking {
	return &entity.Booking{
		BaseNoDelete:  entity.BaseNoDelete{ID: uuid.New()},
		BookingRef:    "BK-20260101-100000-0001",
		ArtistID:      artistID,
		ClientID:      uuid.New(),
		ServiceID:     uuid.New(),
		Sessions:      []entity.Session{},
		Status:        status,
		PaymentStatus: entity.PaymentStatusCaptured,
		PriceCents:    50000,
		Version:       1,
	}
}

func makeSession(number int, date, start, end string, startMin, endMin int, status entity.SessionStatus) entity.Session {
	return entity.Session{
		ID:             uuid.New(),
		SessionNumber:  number,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		StartTimeInMin: startMin,
		EndTimeInMin:   endMin,
		Status:         status,
	}
}

func TestAddSession_Success(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("FindSchedulableByArtist", mock.Anything, artistID).Return([]*entity.Booking{booking}, nil)
	bookingRepo.On("UpdateSessions", mock.Anything, mock.AnythingOfType("*entity.Booking")).Return(true, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	resp, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:30",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Len(t, resp.Sessions, 1)
		assert.Equal(t, 1, resp.Sessions[0].SessionNumber)
		assert.Equal(t, "scheduled", resp.Sessions[0].Status)
		assert.Equal(t, 90, resp.ScheduledDurationInMin)
		assert.Equal(t, "confirmed", resp.Status)
	}
	bookingRepo.AssertExpectations(t)
}

func TestAddSession_RejectsBeforeLastSession(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "10:00", "12:00", 600, 720, entity.SessionStatusScheduled),
	}

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	// Same day, starts before the last session ends.
	_, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "11:00",
		EndTime:   "13:00",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
	bookingRepo.AssertNotCalled(t, "UpdateSessions", mock.Anything, mock.Anything)
}

func TestAddSession_CrossBookingOverlap(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)

	other := schedulingBooking(artistID, entity.BookingStatusInProgress)
	other.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "10:00", "11:00", 600, 660, entity.SessionStatusScheduled),
	}

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("FindSchedulableByArtist", mock.Anything, artistID).Return([]*entity.Booking{booking, other}, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:30",
		EndTime:   "11:30",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
	bookingRepo.AssertNotCalled(t, "UpdateSessions", mock.Anything, mock.Anything)
}

func TestAddSession_AdjacentSlotsAllowed(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
	}

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("FindSchedulableByArtist", mock.Anything, artistID).Return([]*entity.Booking{booking}, nil)
	bookingRepo.On("UpdateSessions", mock.Anything, mock.AnythingOfType("*entity.Booking")).Return(true, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	// Back-to-back with the previous session. Half-open intervals, so
	// 10:00-11:00 does not overlap 09:00-10:00.
	resp, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Len(t, resp.Sessions, 2)
		assert.Equal(t, 120, resp.ScheduledDurationInMin)
	}
}

func TestAddSession_NotBookingArtist(t *testing.T) {
	booking := schedulingBooking(uuid.New(), entity.BookingStatusConfirmed)

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.AddSession(context.Background(), uuid.New().String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	})

	assert.ErrorIs(t, err, apperr.Forbidden)
}

func TestAddSession_TerminalBooking(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusCancelled)

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
}

func TestAddSession_CancelledBetweenReadAndLock(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusInProgress)
	cancelled := schedulingBooking(artistID, entity.BookingStatusCancelled)
	cancelled.ID = booking.ID

	// A cancel lands between the ownership read and the locked reload;
	// the fresh copy decides.
	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil).Once()
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(cancelled, nil).Once()

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
	bookingRepo.AssertNotCalled(t, "UpdateSessions", mock.Anything, mock.Anything)
}

func TestCompleteSession_CancelledBetweenReadAndLock(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusInProgress)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "10:00", "11:00", 600, 660, entity.SessionStatusScheduled),
	}
	cancelled := schedulingBooking(artistID, entity.BookingStatusCancelled)
	cancelled.ID = booking.ID
	cancelled.Sessions = booking.Sessions

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil).Once()
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(cancelled, nil).Once()

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.CompleteSession(context.Background(), artistID.String(), booking.ID.String(), booking.Sessions[0].ID.String())

	assert.ErrorIs(t, err, apperr.Conflict)
	bookingRepo.AssertNotCalled(t, "UpdateSessions", mock.Anything, mock.Anything)
}

func TestAddSession_LockHeld(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(false))

	_, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
	bookingRepo.AssertNotCalled(t, "UpdateSessions", mock.Anything, mock.Anything)
}

func TestAddSession_InvalidTimeRange(t *testing.T) {
	service := newSessionTestService(new(MockBookingRepository), newTestLocker(true))

	_, err := service.AddSession(context.Background(), uuid.New().String(), uuid.New().String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "11:00",
		EndTime:   "10:00",
	})

	assert.ErrorIs(t, err, apperr.Validation)
}

func TestEditSession_OverlapWithSibling(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
		makeSession(2, "2026-09-10", "11:00", "12:00", 660, 720, entity.SessionStatusScheduled),
	}
	target := booking.Sessions[1]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	// Move session 2 onto session 1.
	_, err := service.EditSession(context.Background(), artistID.String(), booking.ID.String(), target.ID.String(), &request.EditSessionRequest{
		Date:      "2026-09-10",
		StartTime: "09:30",
		EndTime:   "10:30",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
	bookingRepo.AssertNotCalled(t, "UpdateSessions", mock.Anything, mock.Anything)
}

func TestEditSession_MarksRescheduled(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
	}
	target := booking.Sessions[0]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("FindSchedulableByArtist", mock.Anything, artistID).Return([]*entity.Booking{booking}, nil)
	bookingRepo.On("UpdateSessions", mock.Anything, mock.AnythingOfType("*entity.Booking")).Return(true, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	resp, err := service.EditSession(context.Background(), artistID.String(), booking.ID.String(), target.ID.String(), &request.EditSessionRequest{
		Date:      "2026-09-11",
		StartTime: "14:00",
		EndTime:   "15:00",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, "rescheduled", resp.Sessions[0].Status)
		assert.Equal(t, "2026-09-11", resp.Sessions[0].Date)
		assert.Equal(t, 60, resp.ScheduledDurationInMin)
	}
}

func TestEditSession_CompletedSessionImmutable(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusInProgress)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusCompleted),
	}
	target := booking.Sessions[0]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.EditSession(context.Background(), artistID.String(), booking.ID.String(), target.ID.String(), &request.EditSessionRequest{
		Date:      "2026-09-11",
		StartTime: "14:00",
		EndTime:   "15:00",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
}

func TestDeleteSession_KeepsNumbering(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
		makeSession(2, "2026-09-11", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
	}
	doomed := booking.Sessions[0]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("UpdateSessions", mock.Anything, mock.AnythingOfType("*entity.Booking")).Return(true, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	resp, err := service.DeleteSession(context.Background(), artistID.String(), booking.ID.String(), doomed.ID.String())

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Len(t, resp.Sessions, 1)
		// The surviving session keeps its original number.
		assert.Equal(t, 2, resp.Sessions[0].SessionNumber)
		assert.Equal(t, 60, resp.ScheduledDurationInMin)
	}

	// A later add continues the numbering instead of filling the gap.
	assert.Equal(t, 3, booking.NextSessionNumber())
}

func TestDeleteSession_CompletedSessionImmutable(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusInProgress)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusCompleted),
	}
	target := booking.Sessions[0]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.DeleteSession(context.Background(), artistID.String(), booking.ID.String(), target.ID.String())

	assert.ErrorIs(t, err, apperr.Conflict)
}

func TestCompleteSession_InOrderOnly(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
		makeSession(2, "2026-09-11", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
	}
	second := booking.Sessions[1]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.CompleteSession(context.Background(), artistID.String(), booking.ID.String(), second.ID.String())

	assert.ErrorIs(t, err, apperr.Conflict)
	bookingRepo.AssertNotCalled(t, "UpdateSessions", mock.Anything, mock.Anything)
}

func TestCompleteSession_PartialCompletionMovesInProgress(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
		makeSession(2, "2026-09-11", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
	}
	first := booking.Sessions[0]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("UpdateSessions", mock.Anything, mock.AnythingOfType("*entity.Booking")).Return(true, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	resp, err := service.CompleteSession(context.Background(), artistID.String(), booking.ID.String(), first.ID.String())

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, "in_progress", resp.Status)
	}
}

func TestCompleteSession_LastCompletionRollsUp(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusInProgress)
	booking.Sessions = []entity.Session{
		makeSession(1, "2026-09-10", "09:00", "10:00", 540, 600, entity.SessionStatusCompleted),
		makeSession(2, "2026-09-11", "09:00", "10:00", 540, 600, entity.SessionStatusScheduled),
	}
	last := booking.Sessions[1]

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("UpdateSessions", mock.Anything, mock.AnythingOfType("*entity.Booking")).Return(true, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	resp, err := service.CompleteSession(context.Background(), artistID.String(), booking.ID.String(), last.ID.String())

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, "ready_for_completion", resp.Status)
	}
}

func TestPersistSessions_VersionConflict(t *testing.T) {
	artistID := uuid.New()
	booking := schedulingBooking(artistID, entity.BookingStatusConfirmed)

	bookingRepo := new(MockBookingRepository)
	bookingRepo.On("FindByID", mock.Anything, booking.ID).Return(booking, nil)
	bookingRepo.On("FindSchedulableByArtist", mock.Anything, artistID).Return([]*entity.Booking{booking}, nil)
	bookingRepo.On("UpdateSessions", mock.Anything, mock.AnythingOfType("*entity.Booking")).Return(false, nil)

	service := newSessionTestService(bookingRepo, newTestLocker(true))

	_, err := service.AddSession(context.Background(), artistID.String(), booking.ID.String(), &request.AddSessionRequest{
		Date:      "2026-09-10",
		StartTime: "10:00",
		EndTime:   "11:00",
	})

	assert.ErrorIs(t, err, apperr.Conflict)
}
