package handler

import (
	"log/slog"
	"net/http"

	"tenantnotes/internal/domain/services"
	"tenantnotes/internal/httputil"
)

// TenantHandler handles tenant HTTP requests
type TenantHandler struct {
	tenantService services.TenantService
	logger        *slog.Logger
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService services.TenantService, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		logger:        logger,
	}
}

// GetCurrentTenant returns the caller's tenant with note usage
// GET /api/tenant
func (h *TenantHandler) GetCurrentTenant(w http.ResponseWriter, r *http.Request) {
	summary, err := h.tenantService.CurrentTenant(r.Context(), httputil.GetIdentity(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summary)
}

// UpgradeTenant moves the caller's tenant to PRO
// POST /api/tenants/{slug}/upgrade
func (h *TenantHandler) UpgradeTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenantService.UpgradeTenant(r.Context(), httputil.GetIdentity(r), r.PathValue("slug"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tenant)
}
