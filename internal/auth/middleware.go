package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-devkit/internal/session"
	apperrors "github.com/spec-kit/storefront-devkit/pkg/util"
)

const sessionKey = "auth_session"

// Verifier validates bearer tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (*session.Session, error)
}

// AuthMiddleware validates bearer tokens and stores the session on the request.
type AuthMiddleware struct {
	sessions Verifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions Verifier) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	sess, err := m.sessions.Verify(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		return TokenError(err)
	}

	c.Locals(sessionKey, sess)
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*session.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*session.Session)
	return sess, ok
}

// TokenError maps a verification failure to a 401 whose code says whether
// re-authenticating can help.
func TokenError(err error) error {
	switch {
	case errors.Is(err, session.ErrExpired):
		return apperrors.NewTokenRejected("TOKEN_EXPIRED", "token expired", err)
	case errors.Is(err, session.ErrInvalidSignature):
		return apperrors.NewTokenRejected("INVALID_SIGNATURE", "invalid token signature", err)
	case errors.Is(err, session.ErrMalformedToken):
		return apperrors.NewTokenRejected("MALFORMED_TOKEN", "malformed token", err)
	default:
		return apperrors.NewInternalError(err)
	}
}
