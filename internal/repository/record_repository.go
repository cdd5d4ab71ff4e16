package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecordRepository writes opaque fixture documents.
type RecordRepository interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type recordRepository struct {
	client redis.Cmdable
}

// NewRecordRepository returns a Redis-backed implementation. A zero ttl keeps the key forever.
func NewRecordRepository(client redis.Cmdable) RecordRepository {
	return &recordRepository{client: client}
}

func (r *recordRepository) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
