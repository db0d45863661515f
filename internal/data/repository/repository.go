package repository

import (
	"artist-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Booking      BookingRepository
	Artist       ArtistRepository
	Client       ClientRepository
	Service      ServiceRepository
	AuthSession  AuthSessionRepository
	WebhookEvent WebhookEventRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Booking:      NewBookingRepository(db, log),
		Artist:       NewArtistRepository(db, log),
		Client:       NewClientRepository(db, log),
		Service:      NewServiceRepository(db, log),
		AuthSession:  NewAuthSessionRepository(db, log),
		WebhookEvent: NewWebhookEventRepository(db, log),
	}
}
