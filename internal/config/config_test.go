package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("Load() error = %v, want: %v", err, ErrMissingSecret)
	}
	if cfg != nil {
		t.Errorf("Load() cfg = %+v, want: nil", cfg)
	}
}

func TestLoad_LegacySecretName(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("AUTH_JWT_SECRET", "legacy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.Secret != "legacy" {
		t.Errorf("Session.Secret = %q, want: %q", cfg.Session.Secret, "legacy")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "")
	t.Setenv("SESSION_TTL_SECONDS", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("SEED_SUBJECT_ALIAS", "")
	t.Setenv("AUDIT_KEY", "")
	t.Setenv("AUDIT_MAX_ENTRIES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.TTLSeconds != 86400 {
		t.Errorf("Session.TTLSeconds = %d, want: %d", cfg.Session.TTLSeconds, 86400)
	}
	if cfg.Session.KeyPrefix != "session:" {
		t.Errorf("Session.KeyPrefix = %q, want: %q", cfg.Session.KeyPrefix, "session:")
	}
	if cfg.Seed.SubjectAlias != "userId" {
		t.Errorf("Seed.SubjectAlias = %q, want: %q", cfg.Seed.SubjectAlias, "userId")
	}
	if cfg.Audit.Key != "audit:sessions" || cfg.Audit.MaxEntries != 1000 {
		t.Errorf("Audit = %+v, want: {audit:sessions 1000}", cfg.Audit)
	}
	if got := cfg.App.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("App.Addr() = %q, want: %q", got, "0.0.0.0:8080")
	}
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "zero")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want: error")
	}
}

func TestGetEnvAsInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("PROBE_TIMEOUT_SECONDS", "soon")

	if got := getEnvAsInt("PROBE_TIMEOUT_SECONDS", 7); got != 7 {
		t.Errorf("getEnvAsInt() = %d, want: %d", got, 7)
	}
}

func TestDurations(t *testing.T) {
	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"request timeout", AppConfig{RequestTimeoutSeconds: 3}.RequestTimeout(), 3 * time.Second},
		{"request timeout disabled", AppConfig{}.RequestTimeout(), 0},
		{"probe timeout", ProbeConfig{TimeoutSeconds: 2}.Timeout(), 2 * time.Second},
		{"probe timeout default", ProbeConfig{}.Timeout(), 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want: %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_DevRoutes(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		want    bool
		wantErr error
	}{
		{"unset", "", "", false, nil},
		{"unset in staging", "staging", "", false, nil},
		{"explicit opt in", "development", "true", true, nil},
		{"unparseable stays off", "development", "yes please", false, nil},
		{"refused in production", "production", "true", false, ErrDevRoutesInProduction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "s3cret")
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("SESSION_DEV_ROUTES", tt.value)

			cfg, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want: %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cfg.Session.DevRoutes != tt.want {
				t.Errorf("Session.DevRoutes = %v, want: %v", cfg.Session.DevRoutes, tt.want)
			}
		})
	}
}
