package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-devkit/internal/config"
	"github.com/spec-kit/storefront-devkit/internal/events"
	"github.com/spec-kit/storefront-devkit/internal/observability"
	"github.com/spec-kit/storefront-devkit/internal/repository"
	"github.com/spec-kit/storefront-devkit/internal/session"
)

// ErrPersistenceUnavailable is returned when persisting is requested without a session repository.
var ErrPersistenceUnavailable = errors.New("session persistence not configured")

// SessionService issues and verifies session tokens for application callers.
type SessionService struct {
	tokens     *session.TokenService
	sessions   repository.SessionRepository
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	defaultTTL int64
}

// SessionDependencies encapsulates collaborators for the session service.
// Everything but Tokens is optional.
type SessionDependencies struct {
	Tokens   *session.TokenService
	Sessions repository.SessionRepository
	Metrics  *observability.Metrics
	Events   events.Dispatcher
	Clock    clock.Clock
	Logger   *zap.Logger
}

// IssueRequest describes a token to issue. A zero TTLSeconds uses the configured default.
type IssueRequest struct {
	SubjectID  string
	Claims     session.Claims
	TTLSeconds int64
	Persist    bool
}

// IssuedToken is the result of Issue.
type IssuedToken struct {
	Token     string
	Session   *session.Session
	Persisted bool
}

// NewSessionService builds the service.
func NewSessionService(cfg config.SessionConfig, deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	return &SessionService{
		tokens:     deps.Tokens,
		sessions:   deps.Sessions,
		metrics:    deps.Metrics,
		dispatcher: deps.Events,
		clock:      clk,
		logger:     logger,
		defaultTTL: int64(cfg.TTLSeconds),
	}
}

// Issue signs a token and, when requested, stores it under the subject for the token's lifetime.
func (s *SessionService) Issue(ctx context.Context, req IssueRequest) (*IssuedToken, error) {
	ttl := req.TTLSeconds
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if req.Persist && s.sessions == nil {
		return nil, ErrPersistenceUnavailable
	}

	token, sess, err := s.tokens.Issue(req.SubjectID, req.Claims, ttl)
	if err != nil {
		s.logger.Debug("session issue rejected", zap.String("subject_id", req.SubjectID), zap.Error(err))
		return nil, err
	}
	issued := &IssuedToken{Token: token, Session: sess}
	if req.Persist {
		if err := s.sessions.Save(ctx, sess.SubjectID, token, time.Duration(ttl)*time.Second); err != nil {
			s.logger.Warn("session persist failed", zap.String("subject_id", sess.SubjectID), zap.Error(err))
			return nil, fmt.Errorf("persist session token: %w", err)
		}
		issued.Persisted = true
	}

	s.metrics.RecordIssued()
	s.logger.Info("session issued",
		zap.String("subject_id", sess.SubjectID),
		zap.String("token_id", sess.ID),
		zap.Time("expires_at", sess.ExpiresAt),
		zap.Bool("persisted", issued.Persisted))

	s.publish(ctx, events.New(events.EventSessionIssued, sess.SubjectID, sess.IssuedAt, events.SessionIssuedPayload{
		TokenID:   sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Persisted: issued.Persisted,
	}))
	return issued, nil
}

// Verify validates a bearer token. Errors are the session package's failure kinds.
func (s *SessionService) Verify(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.tokens.Verify(token)
	outcome := session.Outcome(err)
	s.metrics.RecordVerification(outcome)
	if err != nil {
		s.logger.Debug("session rejected", zap.String("outcome", outcome), zap.Error(err))
		s.publish(ctx, events.New(events.EventSessionRejected, "", s.clock.Now(), events.SessionRejectedPayload{
			Outcome: outcome,
		}))
		return nil, err
	}
	return sess, nil
}

// Stored returns the token last persisted for subjectID.
func (s *SessionService) Stored(ctx context.Context, subjectID string) (string, error) {
	if s.sessions == nil {
		return "", ErrPersistenceUnavailable
	}
	return s.sessions.Get(ctx, subjectID)
}

// publish hands the event to subscribers. Subscriber failures are logged, never returned.
func (s *SessionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
