package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetWithTenant retrieves a user and its tenant by user ID
func (r *PostgresUserRepository) GetWithTenant(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

// GetByEmail retrieves a user and its tenant by email (case-insensitive)
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "lower(u.email) = $1", strings.ToLower(strings.TrimSpace(email)))
}

func (r *PostgresUserRepository) getOne(ctx context.Context, predicate, key string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT u.id, u.email, u.password_hash, u.role, u.tenant_id, u.created_at,
		       t.id, t.name, t.slug, t.plan, t.created_at, t.updated_at
		FROM %s u
		JOIN %s t ON t.id = u.tenant_id
		WHERE %s
	`, r.tables.Users, r.tables.Tenants, predicate)

	var (
		user   models.User
		tenant models.Tenant
	)
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, key).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.TenantID,
		&user.CreatedAt,
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.Plan,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("user %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Tenant = &tenant
	return &user, nil
}
