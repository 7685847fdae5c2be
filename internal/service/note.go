package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"tenantnotes/internal/config"
	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/metrics"
)

// noteService implements the NoteService interface
type noteService struct {
	noteRepo   repositories.NoteRepository
	tenantRepo repositories.TenantRepository
	txManager  repositories.TransactionManager
	guard      services.TenantGuard
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(
	noteRepo repositories.NoteRepository,
	tenantRepo repositories.TenantRepository,
	txManager repositories.TransactionManager,
	guard services.TenantGuard,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.NoteService {
	return &noteService{
		noteRepo:   noteRepo,
		tenantRepo: tenantRepo,
		txManager:  txManager,
		guard:      guard,
		metrics:    m,
		logger:     logger,
	}
}

// ListNotes retrieves every note of the caller's tenant
func (s *noteService) ListNotes(ctx context.Context, identity *models.Identity) (*models.NoteList, error) {
	decision := s.guard.Authorize(identity, services.OpListNotes)
	if !decision.Allowed() {
		return nil, decision.Err
	}

	notes, err := s.noteRepo.List(ctx, decision.Scope.TenantID)
	if err != nil {
		return nil, err
	}

	return &models.NoteList{Notes: notes, NoteCount: len(notes)}, nil
}

// CreateNote creates a note in the caller's tenant.
//
// The tenant row is locked for the duration of the transaction, so the plan
// read, the count and the insert are atomic with respect to other creates
// and upgrades for the same tenant. A FREE tenant can never overshoot its
// quota under concurrent requests.
func (s *noteService) CreateNote(ctx context.Context, identity *models.Identity, req *services.NoteInput) (*models.Note, error) {
	decision := s.guard.Authorize(identity, services.OpCreateNote)
	if !decision.Allowed() {
		return nil, decision.Err
	}

	if err := validateNoteInput(req); err != nil {
		return nil, err
	}

	now := time.Now()
	note := &models.Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		TenantID:  decision.Scope.TenantID,
		AuthorID:  identity.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var plan models.Plan
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		tenant, err := s.tenantRepo.LockByID(txCtx, decision.Scope.TenantID)
		if err != nil {
			return err
		}
		plan = tenant.Plan

		used, err := s.noteRepo.Count(txCtx, decision.Scope.TenantID)
		if err != nil {
			return err
		}

		if err := s.guard.CheckQuota(tenant.Plan, used); err != nil {
			return err
		}

		return s.noteRepo.Create(txCtx, note)
	})

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuotaExceeded):
			s.metrics.QuotaRejected(string(plan))
			s.logger.Warn("note quota exceeded",
				"tenant_id", decision.Scope.TenantID,
				"user_id", identity.UserID,
				"plan", plan,
			)
		case errors.Is(err, domain.ErrNotFound):
			// Tenant vanished after the session was resolved
			return nil, &domain.UnauthorizedError{Message: "tenant no longer exists"}
		}
		return nil, err
	}

	note.Author = &models.NoteAuthor{Email: identity.Email}
	s.metrics.NoteCreated(string(plan))

	s.logger.Info("note created",
		"id", note.ID,
		"tenant_id", note.TenantID,
		"author_id", note.AuthorID,
	)

	return note, nil
}

// GetNote retrieves a note of the caller's tenant
func (s *noteService) GetNote(ctx context.Context, identity *models.Identity, id string) (*models.Note, error) {
	decision := s.guard.Authorize(identity, services.OpReadNote)
	if !decision.Allowed() {
		return nil, decision.Err
	}

	if !isNoteID(id) {
		return nil, errNoteNotFound
	}

	note, err := s.noteRepo.GetByID(ctx, id, decision.Scope.TenantID)
	if err != nil {
		return nil, noteLookupError(err)
	}

	return note, nil
}

// UpdateNote replaces title and content of a note of the caller's tenant
func (s *noteService) UpdateNote(ctx context.Context, identity *models.Identity, id string, req *services.NoteInput) (*models.Note, error) {
	decision := s.guard.Authorize(identity, services.OpUpdateNote)
	if !decision.Allowed() {
		return nil, decision.Err
	}

	if err := validateNoteInput(req); err != nil {
		return nil, err
	}

	if !isNoteID(id) {
		return nil, errNoteNotFound
	}

	note := &models.Note{
		ID:        id,
		Title:     req.Title,
		Content:   req.Content,
		TenantID:  decision.Scope.TenantID,
		UpdatedAt: time.Now(),
	}

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, noteLookupError(err)
	}

	s.logger.Info("note updated",
		"id", note.ID,
		"tenant_id", note.TenantID,
		"user_id", identity.UserID,
	)

	return note, nil
}

// DeleteNote deletes a note of the caller's tenant
func (s *noteService) DeleteNote(ctx context.Context, identity *models.Identity, id string) error {
	decision := s.guard.Authorize(identity, services.OpDeleteNote)
	if !decision.Allowed() {
		return decision.Err
	}

	if !isNoteID(id) {
		return errNoteNotFound
	}

	if err := s.noteRepo.Delete(ctx, id, decision.Scope.TenantID); err != nil {
		return noteLookupError(err)
	}

	s.metrics.NoteDeleted(string(identity.TenantPlan))

	s.logger.Info("note deleted",
		"id", id,
		"tenant_id", decision.Scope.TenantID,
		"user_id", identity.UserID,
	)

	return nil
}

// errNoteNotFound is returned for misses and for notes of other tenants alike
var errNoteNotFound = &domain.NotFoundError{Message: "Note not found"}

// noteLookupError collapses scoped misses into errNoteNotFound
func noteLookupError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return errNoteNotFound
	}
	return err
}

// isNoteID reports whether id can name a note at all
func isNoteID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validateNoteInput validates a create or update request. Whitespace is
// content: only absent or empty fields are rejected.
func validateNoteInput(req *services.NoteInput) error {
	if req == nil || req.Title == "" || req.Content == "" {
		return &domain.ValidationError{Message: "Title and content are required"}
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.RuneLength(1, config.MaxNoteTitleLength)),
		validation.Field(&req.Content, validation.RuneLength(1, config.MaxNoteContentLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
