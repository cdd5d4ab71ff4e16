package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionIssued   EventType = "session_issued"
	EventSessionRejected EventType = "session_rejected"
	EventFixtureSeeded   EventType = "fixture_seeded"
)

// Event represents a domain event emitted by services. Events never carry token strings.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the given time.
func New(eventType EventType, subjectID string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// SessionIssuedPayload payload.
type SessionIssuedPayload struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Persisted bool      `json:"persisted"`
}

// SessionRejectedPayload payload.
type SessionRejectedPayload struct {
	Outcome string `json:"outcome"`
}

// FixtureSeededPayload payload.
type FixtureSeededPayload struct {
	Keys    []string `json:"keys"`
	TokenID string   `json:"token_id,omitempty"`
}
