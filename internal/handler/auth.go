package handler

import (
	"log/slog"
	"net/http"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/httputil"
)

// AuthHandler handles login and session HTTP requests
type AuthHandler struct {
	authService services.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login exchanges email and password for a session token
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !parseBody(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Me returns the caller as resolved for this request
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r)
	if identity == nil {
		handleError(w, h.logger, &domain.UnauthorizedError{Message: "authentication required"})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, identity)
}
