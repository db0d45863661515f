package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthSession maps a bearer token to an authenticated principal. Issued
// by the identity collaborator; this module only reads it.
type AuthSession struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Role      string     `db:"role"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
