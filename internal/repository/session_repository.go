package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepository persists issued session tokens by subject.
type SessionRepository interface {
	Save(ctx context.Context, subjectID, token string, ttl time.Duration) error
	Get(ctx context.Context, subjectID string) (string, error)
}

type sessionRepository struct {
	client redis.Cmdable
	prefix string
}

// NewSessionRepository returns a Redis-backed implementation storing tokens under prefix+subjectID.
func NewSessionRepository(client redis.Cmdable, prefix string) SessionRepository {
	return &sessionRepository{client: client, prefix: prefix}
}

func (r *sessionRepository) Save(ctx context.Context, subjectID, token string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(subjectID), token, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, subjectID string) (string, error) {
	token, err := r.client.Get(ctx, r.key(subjectID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *sessionRepository) key(subjectID string) string {
	return r.prefix + subjectID
}
