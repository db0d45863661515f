package repository

import (
	"context"
	"fmt"

	"artist-booking/internal/data/entity"
	"artist-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Profile CRUD belongs to another service. These repositories are the
// read-side (plus completion counters) this module needs.

type ArtistRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Artist, error)
	IncrementCompleted(ctx context.Context, id uuid.UUID) error
}

type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
}

type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	IncrementCompleted(ctx context.Context, id uuid.UUID) error
}

type artistRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewArtistRepository(db database.PgxIface, log *zap.Logger) ArtistRepository {
	return &artistRepository{
		db:  db,
		log: log.With(zap.String("repository", "artist")),
	}
}

func (r *artistRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Artist, error) {
	query := `
		SELECT id, name, email, phone, stripe_account_id, completed_bookings, created_at, updated_at
		FROM artists
		WHERE id = $1
	`

	var artist entity.Artist
	err := r.db.QueryRow(ctx, query, id).Scan(
		&artist.ID,
		&artist.Name,
		&artist.Email,
		&artist.Phone,
		&artist.StripeAccountID,
		&artist.CompletedBookings,
		&artist.CreatedAt,
		&artist.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find artist by ID",
			zap.Error(err),
			zap.String("artist_id", id.String()),
		)
		return nil, fmt.Errorf("find artist by ID %s: %w", id.String(), err)
	}

	return &artist, nil
}

func (r *artistRepository) IncrementCompleted(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE artists SET completed_bookings = completed_bookings + 1, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment artist completed bookings",
			zap.Error(err),
			zap.String("artist_id", id.String()),
		)
		return fmt.Errorf("increment completed bookings for artist %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("artist %s not found", id.String())
	}

	return nil
}

type clientRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewClientRepository(db database.PgxIface, log *zap.Logger) ClientRepository {
	return &clientRepository{
		db:  db,
		log: log.With(zap.String("repository", "client")),
	}
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	query := `
		SELECT id, name, email, phone, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var client entity.Client
	err := r.db.QueryRow(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find client by ID",
			zap.Error(err),
			zap.String("client_id", id.String()),
		)
		return nil, fmt.Errorf("find client by ID %s: %w", id.String(), err)
	}

	return &client, nil
}

type serviceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewServiceRepository(db database.PgxIface, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		db:  db,
		log: log.With(zap.String("repository", "service")),
	}
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	query := `
		SELECT id, artist_id, name, price_cents, completed_count, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var service entity.Service
	err := r.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.ArtistID,
		&service.Name,
		&service.PriceCents,
		&service.CompletedCount,
		&service.CreatedAt,
		&service.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find service by ID",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return nil, fmt.Errorf("find service by ID %s: %w", id.String(), err)
	}

	return &service, nil
}

func (r *serviceRepository) IncrementCompleted(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE services SET completed_count = completed_count + 1, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment service completed count",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return fmt.Errorf("increment completed count for service %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", id.String())
	}

	return nil
}
