package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-devkit/internal/api/dto"
	"github.com/spec-kit/storefront-devkit/internal/auth"
	"github.com/spec-kit/storefront-devkit/internal/repository"
	"github.com/spec-kit/storefront-devkit/internal/service"
	"github.com/spec-kit/storefront-devkit/internal/session"
	apperrors "github.com/spec-kit/storefront-devkit/pkg/util"
)

// SessionsHandler exposes session token endpoints.
type SessionsHandler struct {
	sessions *service.SessionService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessions *service.SessionService) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// Issue handles POST /sessions.
func (h *SessionsHandler) Issue(c *fiber.Ctx) error {
	var req dto.IssueSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.SubjectID == "" {
		return apperrors.NewValidationError("subject_id required", nil)
	}

	issued, err := h.sessions.Issue(c.UserContext(), service.IssueRequest{
		SubjectID:  req.SubjectID,
		Claims:     req.Claims,
		TTLSeconds: req.TTLSeconds,
		Persist:    req.Persist,
	})
	if err != nil {
		if errors.Is(err, session.ErrInvalidInput) || errors.Is(err, service.ErrPersistenceUnavailable) {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.IssueSessionResponse{
			Token:     issued.Token,
			Session:   dto.NewSessionResponse(issued.Session),
			Persisted: issued.Persisted,
		},
	})
}

// Verify handles POST /sessions/verify.
func (h *SessionsHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifySessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Token) == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	sess, err := h.sessions.Verify(c.UserContext(), strings.TrimSpace(req.Token))
	if err != nil {
		return auth.TokenError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(sess)})
}

// Me handles GET /sessions/me behind the auth middleware.
func (h *SessionsHandler) Me(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no session")
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(sess)})
}

// Stored handles GET /sessions/:subject_id/token.
func (h *SessionsHandler) Stored(c *fiber.Ctx) error {
	subjectID := c.Params("subject_id")
	token, err := h.sessions.Stored(c.UserContext(), subjectID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NewNotFound("session token", map[string]any{"subject_id": subjectID})
		case errors.Is(err, service.ErrPersistenceUnavailable):
			return apperrors.NewValidationError(err.Error(), nil)
		default:
			return apperrors.NewInternalError(err)
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"subject_id": subjectID, "token": token}})
}
