package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
)

const tenantColumns = `id, name, slug, plan, created_at, updated_at`

// PostgresTenantRepository implements the TenantRepository interface
type PostgresTenantRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(config *RepositoryConfig) repositories.TenantRepository {
	return &PostgresTenantRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, tenantColumns, r.tables.Tenants)
	return r.getOne(ctx, query, id)
}

// GetBySlug retrieves a tenant by slug
func (r *PostgresTenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, tenantColumns, r.tables.Tenants)
	return r.getOne(ctx, query, slug)
}

// LockByID reads a tenant with FOR UPDATE. Outside a transaction the lock
// would be released immediately, so that is rejected.
func (r *PostgresTenantRepository) LockByID(ctx context.Context, id string) (*models.Tenant, error) {
	if repositories.GetTx(ctx) == nil {
		return nil, fmt.Errorf("lock tenant %s: no transaction in context", id)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, tenantColumns, r.tables.Tenants)
	return r.getOne(ctx, query, id)
}

// SetPlan updates the tenant's plan
func (r *PostgresTenantRepository) SetPlan(ctx context.Context, id string, plan models.Plan) (*models.Tenant, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET plan = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, r.tables.Tenants, tenantColumns)

	executor := GetExecutor(ctx, r.pool)
	tenant, err := scanTenant(executor.QueryRow(ctx, query, plan, time.Now(), id))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("set tenant plan: %w", err)
	}
	return tenant, nil
}

func (r *PostgresTenantRepository) getOne(ctx context.Context, query string, key string) (*models.Tenant, error) {
	executor := GetExecutor(ctx, r.pool)
	tenant, err := scanTenant(executor.QueryRow(ctx, query, key))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("tenant %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return tenant, nil
}

// scanTenant reads the tenantColumns list
func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var tenant models.Tenant
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.Plan,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
