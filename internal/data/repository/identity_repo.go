package repository

import (
	"context"
	"fmt"

	"artist-booking/internal/data/entity"
	"artist-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AuthSessionRepository resolves bearer tokens issued by the identity
// collaborator into principals.
type AuthSessionRepository interface {
	FindValidSession(ctx context.Context, token string) (*entity.AuthSession, error)
}

type authSessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAuthSessionRepository(db database.PgxIface, log *zap.Logger) AuthSessionRepository {
	return &authSessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "auth_session")),
	}
}

func (r *authSessionRepository) FindValidSession(ctx context.Context, token string) (*entity.AuthSession, error) {
	query := `
		SELECT id, user_id, role, token, expires_at, revoked_at, created_at
		FROM auth_sessions
		WHERE token = $1
		  AND revoked_at IS NULL
		  AND expires_at > NOW()
	`

	var session entity.AuthSession
	err := r.db.QueryRow(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Role,
		&session.Token,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid auth session", zap.Error(err))
		return nil, fmt.Errorf("find valid auth session: %w", err)
	}

	return &session, nil
}
