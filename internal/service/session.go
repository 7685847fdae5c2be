package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tenantnotes/internal/auth"
	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
	"tenantnotes/internal/domain/services"
)

// sessionResolver implements the SessionResolver interface
type sessionResolver struct {
	verifier auth.JWTVerifier
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

// NewSessionResolver creates a resolver that verifies tokens with verifier
// and loads the caller from userRepo
func NewSessionResolver(verifier auth.JWTVerifier, userRepo repositories.UserRepository, logger *slog.Logger) services.SessionResolver {
	return &sessionResolver{
		verifier: verifier,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Resolve verifies token and reads the user and tenant behind it. The token
// only proves who the caller is; role and plan always come from this read.
func (r *sessionResolver) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, &domain.UnauthorizedError{Message: "authentication required"}
	}

	claims, err := r.verifier.VerifyToken(token)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid or expired session"}
	}

	user, err := r.userRepo.GetWithTenant(ctx, claims.GetUserID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Info("session for unknown user", "user_id", claims.GetUserID())
			return nil, &domain.UnauthorizedError{Message: "invalid or expired session"}
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	return models.IdentityFromUser(user), nil
}
