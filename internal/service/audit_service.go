package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-devkit/internal/config"
	"github.com/spec-kit/storefront-devkit/internal/events"
	"github.com/spec-kit/storefront-devkit/internal/repository"
)

// ErrAuditDisabled is returned by Recent when no audit store or key is configured.
var ErrAuditDisabled = errors.New("audit trail not configured")

// AuditService records session events to the log and, when configured, to a capped Redis list.
type AuditService struct {
	dispatcher events.Dispatcher
	entries    repository.AuditRepository
	logger     *zap.Logger
	cfg        config.AuditConfig
}

// NewAuditService creates the service. entries may be nil.
func NewAuditService(dispatcher events.Dispatcher, entries repository.AuditRepository, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		entries:    entries,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionIssued, a.handleSessionIssued)
	a.dispatcher.Subscribe(events.EventSessionRejected, a.handleSessionRejected)
	a.dispatcher.Subscribe(events.EventFixtureSeeded, a.handleFixtureSeeded)
}

func (a *AuditService) handleSessionIssued(ctx context.Context, event events.Event) error {
	a.logger.Info("SessionIssued", zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
	return a.store(ctx, event)
}

func (a *AuditService) handleSessionRejected(ctx context.Context, event events.Event) error {
	a.logger.Info("SessionRejected", zap.Any("payload", event.Payload))
	return a.store(ctx, event)
}

func (a *AuditService) handleFixtureSeeded(ctx context.Context, event events.Event) error {
	a.logger.Info("FixtureSeeded", zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
	return a.store(ctx, event)
}

func (a *AuditService) store(ctx context.Context, event events.Event) error {
	if a.entries == nil || a.cfg.Key == "" {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if err := a.entries.Append(ctx, a.cfg.Key, data, a.cfg.MaxEntries); err != nil {
		return fmt.Errorf("append %s event: %w", event.Type, err)
	}
	return nil
}

// AuditEntry is a stored event as read back from the trail. Payload stays raw JSON.
type AuditEntry struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	SubjectID string          `json:"subject_id,omitempty"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Recent returns up to limit stored events, newest first. Entries that fail to decode are skipped.
func (a *AuditService) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if a.entries == nil || a.cfg.Key == "" {
		return nil, ErrAuditDisabled
	}
	raw, err := a.entries.Recent(ctx, a.cfg.Key, limit)
	if err != nil {
		return nil, fmt.Errorf("read audit trail: %w", err)
	}
	out := make([]AuditEntry, 0, len(raw))
	for _, data := range raw {
		var entry AuditEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			a.logger.Warn("skipping unreadable audit entry", zap.Error(err))
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
