package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"tenantnotes/internal/config"
	"tenantnotes/internal/domain"
	"tenantnotes/internal/domain/models"
	"tenantnotes/internal/domain/repositories"
	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/metrics"
	"tenantnotes/internal/plans"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// tenantService implements the TenantService interface
type tenantService struct {
	tenantRepo repositories.TenantRepository
	noteRepo   repositories.NoteRepository
	guard      services.TenantGuard
	plans      *plans.Registry
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo repositories.TenantRepository,
	noteRepo repositories.NoteRepository,
	guard services.TenantGuard,
	registry *plans.Registry,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		noteRepo:   noteRepo,
		guard:      guard,
		plans:      registry,
		metrics:    m,
		logger:     logger,
	}
}

// CurrentTenant returns the caller's tenant and its note usage
func (s *tenantService) CurrentTenant(ctx context.Context, identity *models.Identity) (*models.TenantSummary, error) {
	decision := s.guard.Authorize(identity, services.OpReadTenant)
	if !decision.Allowed() {
		return nil, decision.Err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, decision.Scope.TenantID)
	if err != nil {
		return nil, err
	}

	count, err := s.noteRepo.Count(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	limit, err := s.plans.NoteLimit(tenant.Plan)
	if err != nil {
		return nil, err
	}

	return &models.TenantSummary{Tenant: tenant, NoteCount: count, NoteLimit: limit}, nil
}

// UpgradeTenant moves the caller's tenant to PRO.
// Unknown slugs are refused like foreign ones so slugs cannot be probed.
func (s *tenantService) UpgradeTenant(ctx context.Context, identity *models.Identity, slug string) (*models.Tenant, error) {
	decision := s.guard.Authorize(identity, services.OpUpgradeTenant)
	if !decision.Allowed() {
		return nil, decision.Err
	}

	err := validation.Validate(slug,
		validation.Required.Error("Tenant slug is required"),
		validation.RuneLength(1, config.MaxSlugLength).Error("Tenant slug is too long"),
		validation.Match(slugPattern).Error("Tenant slug may only contain lowercase letters, digits and hyphens"),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	target, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	decision = s.guard.AuthorizeUpgrade(identity, target)
	if !decision.Allowed() {
		s.logger.Warn("tenant upgrade refused",
			"slug", slug,
			"user_id", identity.UserID,
			"tenant_id", identity.TenantID,
		)
		return nil, decision.Err
	}

	if target.Plan == models.PlanPro {
		return target, nil
	}

	upgraded, err := s.tenantRepo.SetPlan(ctx, decision.Scope.TenantID, models.PlanPro)
	if err != nil {
		return nil, err
	}

	s.metrics.TenantUpgraded()
	s.logger.Info("tenant upgraded",
		"id", upgraded.ID,
		"slug", upgraded.Slug,
		"plan", upgraded.Plan,
		"user_id", identity.UserID,
	)

	return upgraded, nil
}
