package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error", NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewUnauthorized("nope")), "UNAUTHORIZED", http.StatusUnauthorized},
		{"token rejected", NewTokenRejected("TOKEN_EXPIRED", "token expired", errors.New("exp")), "TOKEN_EXPIRED", http.StatusUnauthorized},
		{"fiber not found", fiber.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"fiber bad request", fiber.NewError(http.StatusBadRequest, "invalid payload"), "BAD_REQUEST", http.StatusBadRequest},
		{"fiber unavailable", fiber.ErrServiceUnavailable, "INTERNAL_ERROR", http.StatusServiceUnavailable},
		{"plain error", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want: %q", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want: %d", got.HTTPStatus, tt.wantStatus)
			}
		})
	}

	if ToDomainError(nil) != nil {
		t.Error("ToDomainError(nil) != nil")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewInternalError(cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false", err)
	}
	if got, want := err.Error(), "internal server error: cause"; got != want {
		t.Errorf("Error() = %q, want: %q", got, want)
	}
}
