package session

import (
	"context"
	"time"

	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "refresh_session:"

// consumeScript compares and deletes in one round trip, so concurrent refresh
// requests presenting the same identifier cannot both win the rotation.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshSessionRepository implements repository.RefreshSessionRepository on
// Redis. Each user maps to a single key holding the currently-valid
// refresh-token identifier.
type refreshSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRefreshSessionRepository is the constructor for refreshSessionRepository.
// Entries carry the refresh token's TTL so a session abandoned mid-rotation
// expires together with its token.
func NewRefreshSessionRepository(client *redis.Client, tokenSvc service.TokenService) repository.RefreshSessionRepository {
	return &refreshSessionRepository{
		client: client,
		ttl:    tokenSvc.RefreshTokenTTL(),
	}
}

// Put unconditionally overwrites the stored identifier for the user.
func (repo *refreshSessionRepository) Put(ctx context.Context, userID uuid.UUID, tokenID string) error {
	if err := repo.client.Set(ctx, sessionKey(userID), tokenID, repo.ttl).Err(); err != nil {
		return wrapStoreError(err, "failed to store refresh session")
	}

	return nil
}

// Validate reports whether the stored identifier equals the given one exactly.
func (repo *refreshSessionRepository) Validate(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	stored, err := repo.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, wrapStoreError(err, "failed to load refresh session")
	}

	return stored == tokenID, nil
}

// Invalidate removes the stored entry for the user.
func (repo *refreshSessionRepository) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := repo.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return wrapStoreError(err, "failed to delete refresh session")
	}

	return nil
}

// Consume atomically validates and removes the stored identifier.
func (repo *refreshSessionRepository) Consume(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	deleted, err := consumeScript.Run(ctx, repo.client, []string{sessionKey(userID)}, tokenID).Int()
	if err != nil {
		return false, wrapStoreError(err, "failed to consume refresh session")
	}

	return deleted == 1, nil
}

func sessionKey(userID uuid.UUID) string {
	return sessionKeyPrefix + userID.String()
}

// wrapStoreError maps any Redis failure to the domain-level store error while
// preserving the underlying cause in the message.
func wrapStoreError(err error, message string) error {
	return errors.Wrapf(repository.ErrSessionStoreUnavailable, "%s: %v", message, err)
}
