package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpilot/internal/service"
)

// TenantHandler handles the caller's own tenant and its branding.
type TenantHandler struct {
	tenantService   service.TenantService
	brandingService service.BrandingService
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenantService service.TenantService, brandingService service.BrandingService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService, brandingService: brandingService}
}

// Get handles GET /api/v1/tenant
// @Summary Get current tenant
// @Tags tenant
// @Produce json
// @Success 200 {object} Response{data=domain.Tenant} "Tenant"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /tenant [get]
func (h *TenantHandler) Get(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tenant)
}

// Update handles PUT /api/v1/tenant
// @Summary Rename the tenant
// @Description Update the current tenant (owner only)
// @Tags tenant
// @Accept json
// @Produce json
// @Param request body UpdateTenantRequest true "Tenant fields"
// @Success 200 {object} Response{data=domain.Tenant} "Tenant updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden - owner only"
// @Security BearerAuth
// @Router /tenant [put]
func (h *TenantHandler) Update(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.UpdateTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tenant)
}

// GetBranding handles GET /api/v1/tenant/branding
// @Summary Get tenant branding
// @Description Saved branding, or defaults named after the tenant
// @Tags tenant
// @Produce json
// @Success 200 {object} Response{data=domain.TenantBranding} "Branding"
// @Security BearerAuth
// @Router /tenant/branding [get]
func (h *TenantHandler) GetBranding(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	branding, err := h.brandingService.Get(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, branding)
}

// SaveBranding handles PUT /api/v1/tenant/branding
// @Summary Save tenant branding
// @Description Overwrite the tenant branding (owner/admin)
// @Tags tenant
// @Accept json
// @Produce json
// @Param request body SaveBrandingRequest true "Branding"
// @Success 200 {object} Response{data=domain.TenantBranding} "Branding saved"
// @Failure 400 {object} ErrorResponseBody "Invalid color or name"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /tenant/branding [put]
func (h *TenantHandler) SaveBranding(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.SaveBrandingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	branding, err := h.brandingService.Save(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, branding)
}
