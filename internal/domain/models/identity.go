package models

// Identity is the authenticated caller, re-read from the database on every
// request. It is passed explicitly to every service call.
type Identity struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	TenantID   string `json:"tenantId"`
	TenantSlug string `json:"tenantSlug"`
	TenantPlan Plan   `json:"tenantPlan"`
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IdentityFromUser builds an Identity from a user loaded with its tenant.
func IdentityFromUser(u *User) *Identity {
	id := &Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	}
	if u.Tenant != nil {
		id.TenantSlug = u.Tenant.Slug
		id.TenantPlan = u.Tenant.Plan
	}
	return id
}

// TenantScope is the tenant predicate every note lookup and mutation carries.
type TenantScope struct {
	TenantID string
}
