package services

import (
	"context"

	"tenantnotes/internal/domain/models"
)

// NoteInput is the body of create and update requests
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteService defines business logic operations for notes. Every method
// takes the caller's identity explicitly.
type NoteService interface {
	// ListNotes returns every note of the caller's tenant
	ListNotes(ctx context.Context, identity *models.Identity) (*models.NoteList, error)

	// CreateNote creates a note, enforcing the tenant's plan quota
	CreateNote(ctx context.Context, identity *models.Identity, req *NoteInput) (*models.Note, error)

	// GetNote returns a note of the caller's tenant
	GetNote(ctx context.Context, identity *models.Identity, id string) (*models.Note, error)

	// UpdateNote replaces title and content of a note of the caller's tenant
	UpdateNote(ctx context.Context, identity *models.Identity, id string, req *NoteInput) (*models.Note, error)

	// DeleteNote deletes a note of the caller's tenant
	DeleteNote(ctx context.Context, identity *models.Identity, id string) error
}
