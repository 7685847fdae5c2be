package repositories

import (
	"context"

	"tenantnotes/internal/domain/models"
)

// NoteRepository is tenant-scoped data access for notes. Every lookup and
// mutation takes the tenant id and matches on (id, tenant_id) in one query.
type NoteRepository interface {
	// List returns the tenant's notes with author email, newest first
	List(ctx context.Context, tenantID string) ([]models.Note, error)

	// Count returns the number of notes owned by the tenant
	Count(ctx context.Context, tenantID string) (int, error)

	// Create inserts a note; ID, TenantID and AuthorID must be set
	Create(ctx context.Context, note *models.Note) error

	// GetByID returns the note only if it belongs to the tenant
	GetByID(ctx context.Context, id, tenantID string) (*models.Note, error)

	// Update replaces title and content of a tenant's note and refreshes the
	// rest of the struct from the stored row
	Update(ctx context.Context, note *models.Note) error

	// Delete removes a tenant's note
	Delete(ctx context.Context, id, tenantID string) error
}
