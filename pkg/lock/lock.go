package lock

import (
	"context"
	"fmt"
	"time"

	"artist-booking/pkg/apperr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL caps how long a scheduling lock can be held if the holder
// crashes before releasing it.
const DefaultTTL = 10 * time.Second

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// ArtistLocker serializes session scheduling per artist so two
// concurrent adds cannot both pass the overlap check.
type ArtistLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

func NewArtistLocker(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *ArtistLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &ArtistLocker{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("component", "artist_locker")),
	}
}

// Acquire takes the scheduling lock for an artist. Returns a release
// function on success, or a conflict error when another scheduling
// operation holds it.
func (l *ArtistLocker) Acquire(ctx context.Context, artistID uuid.UUID) (func(), error) {
	key := fmt.Sprintf("schedlock:artist:%s", artistID.String())
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.log.Error("Failed to acquire artist lock",
			zap.Error(err),
			zap.String("artist_id", artistID.String()),
		)
		return nil, apperr.Externalw(err, "acquire scheduling lock")
	}
	if !ok {
		return nil, apperr.Conflictf("another scheduling operation for this artist is in progress, try again")
	}

	release := func() {
		// Release outlives the request context.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("Failed to release artist lock, relying on TTL",
				zap.Error(err),
				zap.String("artist_id", artistID.String()),
			)
		}
	}

	return release, nil
}
