package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-devkit/internal/config"
)

// Redis wraps the go-redis client shared by the repositories.
type Redis struct {
	Client *redis.Client
	addr   string
	logger *zap.Logger
}

// NewRedis builds a client for cfg. No connection is made until first use or Connect.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{Client: client, addr: cfg.Addr, logger: logger}
}

// Connect pings the server once and logs the result.
func (r *Redis) Connect(ctx context.Context) error {
	if err := r.Ping(ctx); err != nil {
		r.logger.Warn("unable to reach redis", zap.String("addr", r.addr), zap.Error(err))
		return fmt.Errorf("connect redis %s: %w", r.addr, err)
	}
	r.logger.Info("connected to redis", zap.String("addr", r.addr))
	return nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
