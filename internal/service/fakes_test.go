package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
	"tenantnotes/internal/plans"
	svcauth "tenantnotes/internal/service/auth"
)

// memStore is an in-memory stand-in for the three tables. Its repositories
// honour the same tenant scoping as the postgres ones.
type memStore struct {
	mu      sync.Mutex
	tenants map[string]*models.Tenant
	users   map[string]*models.User
	notes   map[string]*models.Note

	failNotes error // returned by every note repository call when set
}

func newMemStore() *memStore {
	return &memStore{
		tenants: map[string]*models.Tenant{},
		users:   map[string]*models.User{},
		notes:   map[string]*models.Note{},
	}
}

func (s *memStore) addTenant(slug string, plan models.Plan) *models.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Tenant{ID: uuid.NewString(), Name: slug + " corp", Slug: slug, Plan: plan, CreatedAt: time.Now()}
	s.tenants[t.ID] = t
	return t
}

func (s *memStore) addUser(email string, role models.Role, tenant *models.Tenant, passwordHash string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Email: email, Role: role, TenantID: tenant.ID, PasswordHash: passwordHash}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addNotes(t *testing.T, tenant *models.Tenant, author *models.User, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		id := uuid.NewString()
		s.notes[id] = &models.Note{
			ID: id, Title: fmt.Sprintf("note %d", i), Content: "body",
			TenantID: tenant.ID, AuthorID: author.ID,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		ids = append(ids, id)
	}
	return ids
}

func (s *memStore) countNotes(tenantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, note := range s.notes {
		if note.TenantID == tenantID {
			n++
		}
	}
	return n
}

// identityFor mirrors what the session resolver builds
func (s *memStore) identityFor(u *models.User) *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	cp.Tenant = s.tenants[u.TenantID]
	return models.IdentityFromUser(&cp)
}

// ---- transactions ----

type txKey struct{}

// memTxManager serializes transactions, standing in for the tenant row lock
type memTxManager struct {
	mu sync.Mutex
}

func (m *memTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

// ---- notes ----

type memNoteRepo struct{ s *memStore }

func (r *memNoteRepo) List(ctx context.Context, tenantID string) ([]models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failNotes != nil {
		return nil, r.s.failNotes
	}
	notes := []models.Note{}
	for _, n := range r.s.notes {
		if n.TenantID == tenantID {
			cp := *n
			if u, ok := r.s.users[n.AuthorID]; ok {
				cp.Author = &models.NoteAuthor{Email: u.Email}
			}
			notes = append(notes, cp)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	return notes, nil
}

func (r *memNoteRepo) Count(ctx context.Context, tenantID string) (int, error) {
	if r.s.failNotes != nil {
		return 0, r.s.failNotes
	}
	return r.s.countNotes(tenantID), nil
}

func (r *memNoteRepo) Create(ctx context.Context, note *models.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failNotes != nil {
		return r.s.failNotes
	}
	cp := *note
	r.s.notes[note.ID] = &cp
	return nil
}

func (r *memNoteRepo) GetByID(ctx context.Context, id, tenantID string) (*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failNotes != nil {
		return nil, r.s.failNotes
	}
	n, ok := r.s.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (r *memNoteRepo) Update(ctx context.Context, note *models.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failNotes != nil {
		return r.s.failNotes
	}
	n, ok := r.s.notes[note.ID]
	if !ok || n.TenantID != note.TenantID {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}
	n.Title, n.Content, n.UpdatedAt = note.Title, note.Content, note.UpdatedAt
	note.AuthorID, note.CreatedAt = n.AuthorID, n.CreatedAt
	if u, ok := r.s.users[n.AuthorID]; ok {
		note.Author = &models.NoteAuthor{Email: u.Email}
	}
	return nil
}

func (r *memNoteRepo) Delete(ctx context.Context, id, tenantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failNotes != nil {
		return r.s.failNotes
	}
	n, ok := r.s.notes[id]
	if !ok || n.TenantID != tenantID {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.notes, id)
	return nil
}

// ---- tenants ----

type memTenantRepo struct{ s *memStore }

func (r *memTenantRepo) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *memTenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("tenant %s: %w", slug, domain.ErrNotFound)
}

func (r *memTenantRepo) LockByID(ctx context.Context, id string) (*models.Tenant, error) {
	if ctx.Value(txKey{}) == nil {
		return nil, fmt.Errorf("lock tenant %s: no transaction in context", id)
	}
	return r.GetByID(ctx, id)
}

func (r *memTenantRepo) SetPlan(ctx context.Context, id string, plan models.Plan) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant %s: %w", id, domain.ErrNotFound)
	}
	t.Plan = plan
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

// ---- users ----

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetWithTenant(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	cp := *u
	tenant := *r.s.tenants[u.TenantID]
	cp.Tenant = &tenant
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	var id string
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			id = u.ID
		}
	}
	r.s.mu.Unlock()
	if id == "" {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return r.GetWithTenant(ctx, id)
}

// ---- wiring ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGuard(t *testing.T) (*svcauth.TenantAccessGuard, *plans.Registry) {
	t.Helper()
	registry, err := plans.NewRegistry()
	require.NoError(t, err)
	return svcauth.NewTenantAccessGuard(registry), registry
}
