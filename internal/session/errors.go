package session

import "errors"

// Failure kinds returned by TokenService. Callers distinguish them with errors.Is.
var (
	// ErrInvalidSignature means the token was tampered with or signed under another secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformedToken means the token or its payload is structurally invalid.
	ErrMalformedToken = errors.New("malformed token")
	// ErrExpired means the token is past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalidInput means Issue was called with arguments it cannot accept.
	ErrInvalidInput = errors.New("invalid input")
)

// Outcome labels, used for metrics and CLI diagnostics.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeMalformed        = "malformed"
	OutcomeExpired          = "expired"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeUnknown          = "unknown"
)

// Outcome classifies an error returned by TokenService.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInvalidSignature):
		return OutcomeInvalidSignature
	case errors.Is(err, ErrMalformedToken):
		return OutcomeMalformed
	case errors.Is(err, ErrExpired):
		return OutcomeExpired
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalidInput
	default:
		return OutcomeUnknown
	}
}
