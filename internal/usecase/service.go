package usecase

import (
	"artist-booking/internal/data/repository"
	"artist-booking/pkg/lock"
	"artist-booking/pkg/notification"
	"artist-booking/pkg/payment"
	"artist-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking BookingService
	Session SessionService
	Webhook WebhookService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	gateway payment.Gateway,
	locker *lock.ArtistLocker,
	notifier notification.Notifier,
	log *zap.Logger,
) *Service {
	return &Service{
		Booking: NewBookingService(repo, gateway, notifier, config, log),
		Session: NewSessionService(repo, locker, log),
		Webhook: NewWebhookService(repo, gateway, log),
	}
}
