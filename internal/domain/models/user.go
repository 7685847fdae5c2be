package models

import "time"

// Role is a user's privilege level inside their tenant.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// User belongs to exactly one tenant for its whole lifetime.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TenantID     string    `json:"tenantId"`
	CreatedAt    time.Time `json:"createdAt"`

	// Tenant is populated by joined lookups
	Tenant *Tenant `json:"tenant,omitempty"`
}
