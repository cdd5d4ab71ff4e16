package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// AuditRepository keeps a capped, newest-first list of encoded events.
type AuditRepository interface {
	Append(ctx context.Context, key string, entry []byte, maxEntries int) error
	Recent(ctx context.Context, key string, limit int) ([][]byte, error)
}

type auditRepository struct {
	client redis.Cmdable
}

// NewAuditRepository returns a Redis list implementation.
func NewAuditRepository(client redis.Cmdable) AuditRepository {
	return &auditRepository{client: client}
}

func (r *auditRepository) Append(ctx context.Context, key string, entry []byte, maxEntries int) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, entry)
		if maxEntries > 0 {
			pipe.LTrim(ctx, key, 0, int64(maxEntries-1))
		}
		return nil
	})
	return err
}

func (r *auditRepository) Recent(ctx context.Context, key string, limit int) ([][]byte, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	values, err := r.client.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out, nil
}
