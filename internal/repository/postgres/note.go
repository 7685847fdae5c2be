package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
)

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *RepositoryConfig) repositories.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// List retrieves the tenant's notes, newest first, with author emails
func (r *PostgresNoteRepository) List(ctx context.Context, tenantID string) ([]models.Note, error) {
	query := fmt.Sprintf(`
		SELECT n.id, n.title, n.content, n.tenant_id, n.author_id, n.created_at, n.updated_at,
		       COALESCE(u.email, '')
		FROM %s n
		LEFT JOIN %s u ON u.id = n.author_id
		WHERE n.tenant_id = $1
		ORDER BY n.created_at DESC
	`, r.tables.Notes, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var (
			note  models.Note
			email string
		)
		err := rows.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.TenantID,
			&note.AuthorID,
			&note.CreatedAt,
			&note.UpdatedAt,
			&email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		note.Author = &models.NoteAuthor{Email: email}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

// Count returns the number of notes owned by the tenant
func (r *PostgresNoteRepository) Count(ctx context.Context, tenantID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tenant_id = $1`, r.tables.Notes)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

// Create inserts a note
func (r *PostgresNoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, tenant_id, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.Notes)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		note.TenantID,
		note.AuthorID,
		note.CreatedAt,
		note.UpdatedAt,
	).Scan(&note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("note %s already exists", note.ID),
				ResourceType: "note",
				ResourceID:   note.ID,
			}
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID within a tenant
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id, tenantID string) (*models.Note, error) {
	query := fmt.Sprintf(`
		SELECT n.id, n.title, n.content, n.tenant_id, n.author_id, n.created_at, n.updated_at,
		       COALESCE(u.email, '')
		FROM %s n
		LEFT JOIN %s u ON u.id = n.author_id
		WHERE n.id = $1 AND n.tenant_id = $2
	`, r.tables.Notes, r.tables.Users)

	var (
		note  models.Note
		email string
	)
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, tenantID).Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.TenantID,
		&note.AuthorID,
		&note.CreatedAt,
		&note.UpdatedAt,
		&email,
	)

	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	note.Author = &models.NoteAuthor{Email: email}
	return &note, nil
}

// Update replaces a note's title and content within a tenant and fills in
// the unchanged fields, author included, from the stored row
func (r *PostgresNoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE %s
			SET title = $1, content = $2, updated_at = $3
			WHERE id = $4 AND tenant_id = $5
			RETURNING author_id, created_at, updated_at
		)
		SELECT n.author_id, n.created_at, n.updated_at, COALESCE(u.email, '')
		FROM updated n
		LEFT JOIN %s u ON u.id = n.author_id
	`, r.tables.Notes, r.tables.Users)

	var email string
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		note.Title,
		note.Content,
		note.UpdatedAt,
		note.ID,
		note.TenantID,
	).Scan(&note.AuthorID, &note.CreatedAt, &note.UpdatedAt, &email)

	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update note: %w", err)
	}

	note.Author = &models.NoteAuthor{Email: email}
	return nil
}

// Delete deletes a note within a tenant
func (r *PostgresNoteRepository) Delete(ctx context.Context, id, tenantID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.tables.Notes)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		if IsPgInvalidInputError(err) {
			return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
