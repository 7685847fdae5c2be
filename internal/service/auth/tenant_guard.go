package auth

import (
	"fmt"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/plans"
)

// TenantAccessGuard implements services.TenantGuard.
//
// Access is tenant-based: any authenticated user may read and write the notes
// of their own tenant, only admins may change the tenant's plan, and nobody
// can reach another tenant. Callers combine the returned scope into every
// repository call; the guard itself never touches the database.
type TenantAccessGuard struct {
	plans *plans.Registry
}

// NewTenantAccessGuard creates a guard that reads quotas from the plan registry
func NewTenantAccessGuard(registry *plans.Registry) *TenantAccessGuard {
	return &TenantAccessGuard{plans: registry}
}

// Authorize decides whether identity may perform op
func (g *TenantAccessGuard) Authorize(identity *models.Identity, op services.Operation) services.Decision {
	if identity == nil || identity.UserID == "" || identity.TenantID == "" {
		return services.Deny(&domain.UnauthorizedError{Message: "authentication required"})
	}

	switch op {
	case services.OpListNotes, services.OpCreateNote, services.OpReadNote,
		services.OpUpdateNote, services.OpDeleteNote, services.OpReadTenant:
		return services.Allow(identity.TenantID)
	case services.OpUpgradeTenant:
		if !identity.IsAdmin() {
			return services.Deny(&domain.ForbiddenError{Message: "Forbidden"})
		}
		return services.Allow(identity.TenantID)
	default:
		return services.Deny(fmt.Errorf("unknown operation %q", op))
	}
}

// AuthorizeUpgrade checks the admin is upgrading their own tenant. A missing
// target is refused the same way so slugs of other tenants cannot be probed.
func (g *TenantAccessGuard) AuthorizeUpgrade(identity *models.Identity, target *models.Tenant) services.Decision {
	decision := g.Authorize(identity, services.OpUpgradeTenant)
	if !decision.Allowed() {
		return decision
	}

	if target == nil || target.ID != identity.TenantID {
		return services.Deny(&domain.ForbiddenError{Message: "You cannot upgrade another tenant"})
	}
	return decision
}

// CheckQuota returns *domain.QuotaExceededError once used reaches the plan's limit
func (g *TenantAccessGuard) CheckQuota(plan models.Plan, used int) error {
	limit, err := g.plans.NoteLimit(plan)
	if err != nil {
		return fmt.Errorf("check quota: %w", err)
	}

	if limit > 0 && used >= limit {
		return &domain.QuotaExceededError{
			Plan:  string(plan),
			Limit: limit,
			Used:  used,
		}
	}
	return nil
}
