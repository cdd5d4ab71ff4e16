package persistence

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-devkit/internal/config"
)

func TestRedis_PingNotConfigured(t *testing.T) {
	var r *Redis
	if err := r.Ping(context.Background()); err == nil {
		t.Error("Ping() on nil Redis error = nil, want: error")
	}
	r.Close()
}

func TestRedis_ConnectUnreachable(t *testing.T) {
	// Port 1 on loopback is reserved and refuses connections.
	r := NewRedis(config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.Connect(ctx); err == nil {
		t.Error("Connect() error = nil, want: error")
	}
}
