package dto

import (
	"time"

	"github.com/spec-kit/storefront-devkit/internal/session"
)

// IssueSessionRequest payload for POST /sessions.
type IssueSessionRequest struct {
	SubjectID  string         `json:"subject_id"`
	Claims     map[string]any `json:"claims"`
	TTLSeconds int64          `json:"ttl_seconds"`
	Persist    bool           `json:"persist"`
}

// VerifySessionRequest payload for POST /sessions/verify.
type VerifySessionRequest struct {
	Token string `json:"token"`
}

// SessionResponse is the public view of a verified or issued session.
type SessionResponse struct {
	ID        string         `json:"id,omitempty"`
	SubjectID string         `json:"subject_id"`
	Claims    map[string]any `json:"claims"`
	IssuedAt  time.Time      `json:"issued_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// IssueSessionResponse is returned by POST /sessions.
type IssueSessionResponse struct {
	Token     string          `json:"token"`
	Session   SessionResponse `json:"session"`
	Persisted bool            `json:"persisted"`
}

// NewSessionResponse converts a session for output.
func NewSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		SubjectID: s.SubjectID,
		Claims:    s.Claims,
		IssuedAt:  s.IssuedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	}
}
