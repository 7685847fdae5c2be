package services

import (
	"context"

	"tenantnotes/internal/domain/models"
)

// TenantService defines business logic operations for tenants
type TenantService interface {
	// CurrentTenant returns the caller's tenant with its note usage
	CurrentTenant(ctx context.Context, identity *models.Identity) (*models.TenantSummary, error)

	// UpgradeTenant moves the caller's own tenant to PRO. Admins only; idempotent.
	UpgradeTenant(ctx context.Context, identity *models.Identity, slug string) (*models.Tenant, error)
}
