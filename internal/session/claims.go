package session

import (
	"fmt"
	"math"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	claimSubject   = "sub"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
	claimID        = "jti"
)

// largest integer magnitude a JSON number (float64) holds exactly
const maxExactInt = 1 << 53

var reservedClaims = map[string]struct{}{
	claimSubject:   {},
	claimIssuedAt:  {},
	claimExpiresAt: {},
	claimID:        {},
	"nbf":          {},
	"iss":          {},
	"aud":          {},
	"issuedAt":     {},
	"expiresAt":    {},
}

// Claims holds application-chosen values carried opaquely by a token.
// Values are JSON primitives: string, bool, float64 or nil. Integer inputs are
// accepted by Issue and come back as float64.
type Claims map[string]any

// Session is the validated content of a token.
type Session struct {
	ID        string    `json:"id,omitempty"`
	SubjectID string    `json:"subject_id"`
	Claims    Claims    `json:"claims"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsReserved reports whether key is owned by the token format and cannot be used as a claim.
func IsReserved(key string) bool {
	_, ok := reservedClaims[key]
	return ok
}

func (c Claims) clone() Claims {
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// normalizeClaims validates claims and converts numbers to the form they take after a JSON round trip.
func normalizeClaims(claims Claims) (Claims, error) {
	out := make(Claims, len(claims))
	for key, value := range claims {
		if key == "" {
			return nil, fmt.Errorf("%w: empty claim key", ErrInvalidInput)
		}
		if IsReserved(key) {
			return nil, fmt.Errorf("%w: claim %q is reserved", ErrInvalidInput, key)
		}
		normalized, err := normalizeValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w: claim %q: %v", ErrInvalidInput, key, err)
		}
		out[key] = normalized
	}
	return out, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite number %v", v)
		}
		return v, nil
	case float32:
		return normalizeValue(float64(v))
	case int:
		return intValue(int64(v))
	case int8:
		return intValue(int64(v))
	case int16:
		return intValue(int64(v))
	case int32:
		return intValue(int64(v))
	case int64:
		return intValue(v)
	case uint:
		return uintValue(uint64(v))
	case uint8:
		return uintValue(uint64(v))
	case uint16:
		return uintValue(uint64(v))
	case uint32:
		return uintValue(uint64(v))
	case uint64:
		return uintValue(v)
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

func intValue(v int64) (any, error) {
	if v > maxExactInt || v < -maxExactInt {
		return nil, fmt.Errorf("integer %d out of exact range", v)
	}
	return float64(v), nil
}

func uintValue(v uint64) (any, error) {
	if v > maxExactInt {
		return nil, fmt.Errorf("integer %d out of exact range", v)
	}
	return float64(v), nil
}

// sessionFromClaims converts a verified payload into a Session.
func sessionFromClaims(payload jwt.MapClaims) (*Session, error) {
	subject, err := payload.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	issuedAt, err := payload.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, fmt.Errorf("%w: missing issue time", ErrMalformedToken)
	}
	expiresAt, err := payload.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrMalformedToken)
	}
	if !expiresAt.After(issuedAt.Time) {
		return nil, fmt.Errorf("%w: expiry not after issue time", ErrMalformedToken)
	}

	var id string
	if raw, ok := payload[claimID]; ok {
		if id, ok = raw.(string); !ok {
			return nil, fmt.Errorf("%w: token id is %T", ErrMalformedToken, raw)
		}
	}

	claims := make(Claims, len(payload))
	for key, value := range payload {
		if IsReserved(key) {
			continue
		}
		claims[key] = value
	}

	return &Session{
		ID:        id,
		SubjectID: subject,
		Claims:    claims,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}
