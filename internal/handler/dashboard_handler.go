package handler

import (
	"github.com/gin-gonic/gin"

	"fieldpilot/internal/service"
)

// DashboardHandler serves the role-specific dashboard.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get handles GET /api/v1/dashboard
// @Summary Dashboard summary
// @Description Counts and pipeline figures for the caller's role
// @Tags dashboard
// @Produce json
// @Success 200 {object} Response{data=domain.Dashboard} "Dashboard"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	d, err := h.dashboardService.Get(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, d)
}
