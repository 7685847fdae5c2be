package services

import "tenantnotes/internal/domain/models"

// Operation names a tenant-scoped action the guard decides on.
type Operation string

const (
	OpListNotes     Operation = "notes.list"
	OpCreateNote    Operation = "notes.create"
	OpReadNote      Operation = "notes.read"
	OpUpdateNote    Operation = "notes.update"
	OpDeleteNote    Operation = "notes.delete"
	OpReadTenant    Operation = "tenant.read"
	OpUpgradeTenant Operation = "tenant.upgrade"
)

// Decision is the guard's verdict: Allow carries the scope every data access
// must apply, Deny carries the error kind to return to the caller.
type Decision struct {
	Scope models.TenantScope
	Err   error
}

// Allowed reports whether the operation may proceed.
func (d Decision) Allowed() bool {
	return d.Err == nil
}

// Allow returns an allowing decision scoped to tenantID.
func Allow(tenantID string) Decision {
	return Decision{Scope: models.TenantScope{TenantID: tenantID}}
}

// Deny returns a refusing decision.
func Deny(err error) Decision {
	return Decision{Err: err}
}

// TenantGuard is the per-request authorization policy for tenant data.
// Implementations must be pure: no I/O, no state across calls.
type TenantGuard interface {
	// Authorize checks that identity may perform op and derives the scope
	Authorize(identity *models.Identity, op Operation) Decision

	// AuthorizeUpgrade additionally checks the target tenant is the caller's own
	AuthorizeUpgrade(identity *models.Identity, target *models.Tenant) Decision

	// CheckQuota returns a quota error when used notes have reached the plan limit
	CheckQuota(plan models.Plan, used int) error
}
