package models

import "time"

// Plan is the billing tier attached to a tenant.
type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

// Tenant is an isolated organization. Slug is unique and never changes.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TenantSummary is the current tenant together with its note usage.
type TenantSummary struct {
	Tenant    *Tenant `json:"tenant"`
	NoteCount int     `json:"noteCount"`
	NoteLimit int     `json:"noteLimit"` // 0 = unlimited
}
