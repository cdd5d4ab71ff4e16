// Package session issues and verifies signed, time-bounded session tokens.
//
// Tokens use the JWT compact serialization signed with HMAC-SHA256 under a
// single process-wide secret. The service holds no mutable state, so one
// TokenService may be shared by any number of goroutines.
package session

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/juju/clock"
)

// MaxTTLSeconds bounds token lifetimes so expiry stays representable.
const MaxTTLSeconds = int64(100 * 365 * 24 * 60 * 60)

var signingMethod = jwt.SigningMethodHS256

// TokenService handles issuing and validating session tokens.
type TokenService struct {
	secret []byte
	clock  clock.Clock
}

// NewTokenService builds a service bound to secret. A nil clock means wall clock time.
func NewTokenService(secret string, clk clock.Clock) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: signing secret is empty", ErrInvalidInput)
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &TokenService{secret: []byte(secret), clock: clk}, nil
}

// Issue signs a token for subjectID carrying claims, valid for ttlSeconds from now.
// The returned Session is what Verify yields for the token.
func (s *TokenService) Issue(subjectID string, claims Claims, ttlSeconds int64) (string, *Session, error) {
	if subjectID == "" {
		return "", nil, fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}
	if ttlSeconds <= 0 || ttlSeconds > MaxTTLSeconds {
		return "", nil, fmt.Errorf("%w: ttl must be between 1 and %d seconds, got %d", ErrInvalidInput, MaxTTLSeconds, ttlSeconds)
	}
	normalized, err := normalizeClaims(claims)
	if err != nil {
		return "", nil, err
	}

	issuedAt := time.Unix(s.clock.Now().Unix(), 0)
	expiresAt := issuedAt.Add(time.Duration(ttlSeconds) * time.Second)
	id := uuid.NewString()

	payload := jwt.MapClaims{
		claimSubject:   subjectID,
		claimIssuedAt:  issuedAt.Unix(),
		claimExpiresAt: expiresAt.Unix(),
		claimID:        id,
	}
	for key, value := range normalized {
		payload[key] = value
	}

	token, err := jwt.NewWithClaims(signingMethod, payload).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return token, &Session{
		ID:        id,
		SubjectID: subjectID,
		Claims:    normalized.clone(),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the token's signature and expiry and returns its session.
// Failures wrap ErrInvalidSignature, ErrMalformedToken or ErrExpired.
//
// The MAC is checked before any segment is decoded, so a token that does not
// carry a valid signature is always ErrInvalidSignature whatever its payload holds.
// Only a token without three segments is rejected as malformed up front.
func (s *TokenService) Verify(token string) (*Session, error) {
	if err := s.checkSignature(token); err != nil {
		return nil, err
	}

	payload := jwt.MapClaims{}
	_, err := s.parser().ParseWithClaims(token, payload, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return sessionFromClaims(payload)
}

func (s *TokenService) checkSignature(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: want 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("%w: signature encoding: %v", ErrInvalidSignature, err)
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// parser is built per call.
func (s *TokenService) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		// non-canonical base64 in the signature segment would otherwise decode to the same MAC
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.clock.Now),
	)
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
