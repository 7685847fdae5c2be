package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"tenantnotes/internal/auth"
	"tenantnotes/internal/config"
	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/metrics"
)

var errInvalidCredentials = &domain.UnauthorizedError{Message: "invalid email or password"}

// authService implements the AuthService interface
type authService struct {
	userRepo repositories.UserRepository
	issuer   auth.TokenIssuer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	issuer auth.TokenIssuer,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.AuthService {
	return &authService{
		userRepo: userRepo,
		issuer:   issuer,
		metrics:  m,
		logger:   logger,
	}
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords produce the same error after the same bcrypt work.
func (s *authService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResult, error) {
	if err := validateLoginRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			auth.BurnPasswordCheck(req.Password)
			s.metrics.LoginAttempt("invalid")
			return nil, errInvalidCredentials
		}
		s.metrics.LoginAttempt("error")
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.metrics.LoginAttempt("invalid")
			s.logger.Info("login failed", "user_id", user.ID)
			return nil, errInvalidCredentials
		}
		s.metrics.LoginAttempt("error")
		return nil, err
	}

	token, expiresAt, err := s.issuer.IssueToken(user)
	if err != nil {
		s.metrics.LoginAttempt("error")
		return nil, err
	}

	s.metrics.LoginAttempt("success")
	s.logger.Info("user logged in",
		"user_id", user.ID,
		"tenant_id", user.TenantID,
	)

	return &services.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      models.IdentityFromUser(user),
	}, nil
}

// validateLoginRequest validates a login request
func validateLoginRequest(req *services.LoginRequest) error {
	if req == nil {
		return errors.New("request body is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, validation.RuneLength(3, config.MaxEmailLength)),
		validation.Field(&req.Password, validation.Required, validation.Length(1, config.MaxPasswordLength)),
	)
}
