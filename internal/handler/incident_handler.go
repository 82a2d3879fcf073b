package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// IncidentHandler handles incident report endpoints.
type IncidentHandler struct {
	incidentService service.IncidentService
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(incidentService service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidentService: incidentService}
}

// ReviewNotesRequest carries a manager's review notes.
type ReviewNotesRequest struct {
	ReviewNotes string `json:"review_notes" example:"Replace the damaged breaker at the next visit."`
}

// Create handles POST /api/v1/incidents
// @Summary Report an incident
// @Description File an incident on a job; critical incidents email the tenant owners
// @Tags incidents
// @Accept json
// @Produce json
// @Param request body service.CreateIncidentInput true "Incident details"
// @Success 201 {object} Response{data=domain.IncidentReport} "Incident created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Operator not assigned"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Router /incidents [post]
func (h *IncidentHandler) Create(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.CreateIncidentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	incident, err := h.incidentService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, incident)
}

// List handles GET /api/v1/incidents
// @Summary List incidents
// @Description Severity and status filters combine; both are optional
// @Tags incidents
// @Produce json
// @Param severity query string false "Severity filter" Enums(low, medium, high, critical)
// @Param status query string false "Resolution status filter" Enums(open, investigating, resolved, closed)
// @Param job_id query string false "Job ID filter"
// @Param operator_id query string false "Reporter filter"
// @Success 200 {object} Response{data=[]domain.IncidentReport,meta=PagMeta} "Incidents"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	filter := port.IncidentFilter{
		Severity: domain.IncidentSeverity(c.Query("severity")),
		Status:   domain.IncidentStatus(c.Query("status")),
	}
	if filter.Severity != "" && !domain.SeverityMeta.Contains(filter.Severity) {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid severity filter")
		return
	}
	if filter.Status != "" && !domain.IncidentFlow.Contains(filter.Status) {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid status filter")
		return
	}
	if filter.JobID, ok = optionalUUIDQuery(c, "job_id"); !ok {
		return
	}
	if filter.OperatorID, ok = optionalUUIDQuery(c, "operator_id"); !ok {
		return
	}

	incidents, err := h.incidentService.List(c.Request.Context(), actor, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, incidents)
}

// GetByID handles GET /api/v1/incidents/:id
// @Summary Get an incident
// @Tags incidents
// @Produce json
// @Param id path string true "Incident ID (UUID)"
// @Success 200 {object} Response{data=domain.IncidentReport} "Incident"
// @Failure 404 {object} ErrorResponseBody "Incident not found"
// @Security BearerAuth
// @Router /incidents/{id} [get]
func (h *IncidentHandler) GetByID(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "incident")
	if !ok {
		return
	}

	incident, err := h.incidentService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, incident)
}

// Edit handles PUT /api/v1/incidents/:id
// @Summary Edit an incident
// @Description Reporter or owner/admin may change severity, description, photos and the voice note flag
// @Tags incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID (UUID)"
// @Param request body service.EditIncidentInput true "Fields to change"
// @Success 200 {object} Response{data=domain.IncidentReport} "Incident updated"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /incidents/{id} [put]
func (h *IncidentHandler) Edit(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "incident")
	if !ok {
		return
	}

	var input service.EditIncidentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	incident, err := h.incidentService.Edit(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, incident)
}

// SetReviewNotes handles PUT /api/v1/incidents/:id/review
// @Summary Set review notes
// @Tags incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID (UUID)"
// @Param request body ReviewNotesRequest true "Review notes"
// @Success 200 {object} Response{data=domain.IncidentReport} "Notes saved"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /incidents/{id}/review [put]
func (h *IncidentHandler) SetReviewNotes(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "incident")
	if !ok {
		return
	}

	var req ReviewNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	incident, err := h.incidentService.SetReviewNotes(c.Request.Context(), actor, id, req.ReviewNotes)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, incident)
}

// GenerateNarrative handles POST /api/v1/incidents/:id/narrative
// @Summary Generate an incident narrative
// @Tags incidents
// @Produce json
// @Param id path string true "Incident ID (UUID)"
// @Success 200 {object} Response{data=domain.IncidentReport} "Narrative stored"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 503 {object} ErrorResponseBody "Drafting unavailable"
// @Security BearerAuth
// @Router /incidents/{id}/narrative [post]
func (h *IncidentHandler) GenerateNarrative(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "incident")
	if !ok {
		return
	}

	incident, err := h.incidentService.GenerateNarrative(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, incident)
}

// Advance handles POST /api/v1/incidents/:id/advance
// @Summary Advance incident resolution
// @Tags incidents
// @Produce json
// @Param id path string true "Incident ID (UUID)"
// @Success 200 {object} Response{data=domain.IncidentReport} "Incident advanced"
// @Failure 409 {object} ErrorResponseBody "Already closed"
// @Security BearerAuth
// @Router /incidents/{id}/advance [post]
func (h *IncidentHandler) Advance(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "incident")
	if !ok {
		return
	}

	incident, err := h.incidentService.Advance(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, incident)
}

// Delete handles DELETE /api/v1/incidents/:id
func (h *IncidentHandler) Delete(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "incident")
	if !ok {
		return
	}

	if err := h.incidentService.Delete(c.Request.Context(), actor, id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "incident deleted"})
}
