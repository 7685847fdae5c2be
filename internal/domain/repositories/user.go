package repositories

import (
	"context"

	"tenantnotes/internal/domain/models"
)

// UserRepository defines data access operations for users.
// Both lookups join the user's tenant so callers get role and plan together.
type UserRepository interface {
	// GetWithTenant retrieves a user and its tenant by user ID
	GetWithTenant(ctx context.Context, id string) (*models.User, error)

	// GetByEmail retrieves a user (including password hash) and its tenant
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
