package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-devkit/internal/config"
	"github.com/spec-kit/storefront-devkit/internal/events"
	"github.com/spec-kit/storefront-devkit/internal/repository"
	"github.com/spec-kit/storefront-devkit/internal/service"
	"github.com/spec-kit/storefront-devkit/internal/session"
)

// Seeder writes fixture records and issues the subject's session token.
type Seeder struct {
	records      repository.RecordRepository
	sessions     *service.SessionService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	bcryptCost   int
	subjectAlias string
}

// Report lists what a Seed call wrote. On failure it holds the keys written before the error.
type Report struct {
	Keys    []string
	Token   string
	Session *session.Session
}

// NewSeeder builds a seeder. dispatcher may be nil.
func NewSeeder(cfg config.SeedConfig, records repository.RecordRepository, sessions *service.SessionService, dispatcher events.Dispatcher, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		records:      records,
		sessions:     sessions,
		dispatcher:   dispatcher,
		logger:       logger,
		bcryptCost:   cfg.BcryptCost,
		subjectAlias: cfg.SubjectAlias,
	}
}

// Seed writes every record in order, then issues and persists a token for the subject.
// It stops at the first failure.
func (s *Seeder) Seed(ctx context.Context, f *Fixture) (*Report, error) {
	report := &Report{}

	for _, rec := range f.Records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		key := rec.ResolveKey(f.Subject)

		data, err := s.encode(rec)
		if err != nil {
			return report, fmt.Errorf("record %s: %w", key, err)
		}
		ttl := time.Duration(rec.TTLSeconds) * time.Second
		if err := s.records.Put(ctx, key, data, ttl); err != nil {
			s.logger.Error("seed record failed", zap.String("key", key), zap.Error(err))
			return report, fmt.Errorf("record %s: %w", key, err)
		}
		report.Keys = append(report.Keys, key)
		s.logger.Info("record seeded", zap.String("key", key), zap.Int("bytes", len(data)))
	}

	if f.Subject == "" {
		s.announce(ctx, f, report)
		return report, nil
	}

	issued, err := s.sessions.Issue(ctx, service.IssueRequest{
		SubjectID:  f.Subject,
		Claims:     s.claims(f),
		TTLSeconds: f.TTLSeconds,
		Persist:    true,
	})
	if err != nil {
		return report, fmt.Errorf("issue session for %s: %w", f.Subject, err)
	}
	report.Token = issued.Token
	report.Session = issued.Session
	s.announce(ctx, f, report)
	return report, nil
}

func (s *Seeder) announce(ctx context.Context, f *Fixture, report *Report) {
	if s.dispatcher == nil {
		return
	}
	payload := events.FixtureSeededPayload{Keys: report.Keys}
	at := time.Now()
	if report.Session != nil {
		payload.TokenID = report.Session.ID
		at = report.Session.IssuedAt
	}
	if err := s.dispatcher.Publish(ctx, events.New(events.EventFixtureSeeded, f.Subject, at, payload)); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(events.EventFixtureSeeded)), zap.Error(err))
	}
}

func (s *Seeder) encode(rec Record) ([]byte, error) {
	value := rec.Value
	if len(rec.HashFields) > 0 {
		doc, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("hash_fields needs a mapping value, got %T", value)
		}
		hashed, err := hashFields(doc, rec.HashFields, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		value = hashed
	}
	return json.Marshal(value)
}

// claims adds the subject alias (e.g. userId) unless the fixture sets it explicitly.
func (s *Seeder) claims(f *Fixture) session.Claims {
	claims := make(session.Claims, len(f.Claims)+1)
	for k, v := range f.Claims {
		claims[k] = v
	}
	if s.subjectAlias != "" {
		if _, ok := claims[s.subjectAlias]; !ok {
			claims[s.subjectAlias] = f.Subject
		}
	}
	return claims
}
