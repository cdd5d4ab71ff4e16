package auth_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/clock/testclock"

	"github.com/spec-kit/storefront-devkit/internal/auth"
	"github.com/spec-kit/storefront-devkit/internal/config"
	"github.com/spec-kit/storefront-devkit/internal/service"
	"github.com/spec-kit/storefront-devkit/internal/session"
	apperrors "github.com/spec-kit/storefront-devkit/pkg/util"
)

func newApp(t *testing.T, verifier auth.Verifier) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	app.Get("/me", auth.NewAuthMiddleware(verifier).Handle, func(c *fiber.Ctx) error {
		sess, ok := auth.SessionFromContext(c)
		if !ok {
			return errors.New("no session in context")
		}
		return c.JSON(fiber.Map{"subject_id": sess.SubjectID})
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestAuthMiddleware(t *testing.T) {
	clk := testclock.NewClock(time.Unix(1_700_000_000, 0))
	tokens, err := session.NewTokenService("mw-secret", clk)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	other, err := session.NewTokenService("other-secret", clk)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	valid, _, err := tokens.Issue("user123", nil, 60)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	foreign, _, err := other.Issue("user123", nil, 60)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	short, _, err := tokens.Issue("user123", nil, 1)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	clk.Advance(2 * time.Second)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no token", "Bearer ", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired", "Bearer " + short, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, "INVALID_SIGNATURE"},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized, "MALFORMED_TOKEN"},
	}

	app := newApp(t, service.NewSessionService(config.SessionConfig{}, service.SessionDependencies{Tokens: tokens}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want: %d", resp.StatusCode, tt.wantStatus)
			}
			body := decode(t, resp)
			if tt.wantCode != "" && body["code"] != tt.wantCode {
				t.Errorf("code = %v, want: %s", body["code"], tt.wantCode)
			}
			if tt.wantCode == "" && body["subject_id"] != "user123" {
				t.Errorf("subject_id = %v, want: user123", body["subject_id"])
			}
		})
	}
}

func TestTokenError_Unknown(t *testing.T) {
	de := apperrors.ToDomainError(auth.TokenError(errors.New("boom")))
	if de.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want: %d", de.HTTPStatus, http.StatusInternalServerError)
	}
}
