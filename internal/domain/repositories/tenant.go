package repositories

import (
	"context"

	"tenantnotes/internal/domain/models"
)

// TenantRepository defines data access operations for tenants
type TenantRepository interface {
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*models.Tenant, error)

	// GetBySlug retrieves a tenant by its unique slug
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)

	// LockByID reads a tenant and holds a row lock until the surrounding
	// transaction ends. Must be called inside TransactionManager.ExecTx.
	LockByID(ctx context.Context, id string) (*models.Tenant, error)

	// SetPlan changes the tenant's plan and returns the updated row
	SetPlan(ctx context.Context, id string, plan models.Plan) (*models.Tenant, error)
}
