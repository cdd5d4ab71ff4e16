package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRepository(t *testing.T) {
	mr, client := newClient(t)
	repo := NewSessionRepository(client, "session:")
	ctx := context.Background()

	if _, err := repo.Get(ctx, "user123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(miss) error = %v, want: %v", err, ErrNotFound)
	}

	if err := repo.Save(ctx, "user123", "tok-1", time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !mr.Exists("session:user123") {
		t.Fatal("key session:user123 not written")
	}
	if got := mr.TTL("session:user123"); got != time.Minute {
		t.Errorf("TTL = %v, want: %v", got, time.Minute)
	}

	got, err := repo.Get(ctx, "user123")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "tok-1" {
		t.Errorf("Get() = %q, want: %q", got, "tok-1")
	}

	mr.FastForward(time.Minute)
	if _, err := repo.Get(ctx, "user123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(expired) error = %v, want: %v", err, ErrNotFound)
	}
}

func TestRecordRepository(t *testing.T) {
	mr, client := newClient(t)
	repo := NewRecordRepository(client)
	ctx := context.Background()

	if err := repo.Put(ctx, "cart:user123", []byte(`{"items":[]}`), 30*time.Second); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := repo.Put(ctx, "catalog", []byte(`["p1"]`), 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if got, _ := mr.Get("cart:user123"); got != `{"items":[]}` {
		t.Errorf("cart value = %q", got)
	}
	if got := mr.TTL("cart:user123"); got != 30*time.Second {
		t.Errorf("cart TTL = %v, want: %v", got, 30*time.Second)
	}
	if got := mr.TTL("catalog"); got != 0 {
		t.Errorf("catalog TTL = %v, want: 0 (no expiry)", got)
	}

	mr.FastForward(30 * time.Second)
	if mr.Exists("cart:user123") {
		t.Error("cart key survived its ttl")
	}
	if !mr.Exists("catalog") {
		t.Error("catalog key expired without a ttl")
	}
}

func TestAuditRepository(t *testing.T) {
	_, client := newClient(t)
	repo := NewAuditRepository(client)
	ctx := context.Background()

	for _, entry := range []string{"e1", "e2", "e3", "e4"} {
		if err := repo.Append(ctx, "audit:test", []byte(entry), 3); err != nil {
			t.Fatalf("Append(%s) error = %v", entry, err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all when limit is zero", 0, []string{"e4", "e3", "e2"}},
		{"all when limit is negative", -1, []string{"e4", "e3", "e2"}},
		{"limited", 2, []string{"e4", "e3"}},
		{"limit above length", 10, []string{"e4", "e3", "e2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Recent(ctx, "audit:test", tt.limit)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Recent() = %q, want: %q", got, tt.want)
			}
			for i := range got {
				if string(got[i]) != tt.want[i] {
					t.Errorf("Recent()[%d] = %q, want: %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAuditRepository_Uncapped(t *testing.T) {
	mr, client := newClient(t)
	repo := NewAuditRepository(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Append(ctx, "audit:all", []byte("e"), 0); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	list, err := mr.List("audit:all")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 5 {
		t.Errorf("len(list) = %d, want: 5", len(list))
	}

	empty, err := repo.Recent(ctx, "audit:none", 5)
	if err != nil || len(empty) != 0 {
		t.Errorf("Recent(missing key) = %q, %v, want empty", empty, err)
	}
}
