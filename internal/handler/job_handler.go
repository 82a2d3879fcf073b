package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// JobHandler handles job endpoints.
type JobHandler struct {
	jobService service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// ToggleOperatorRequest names the operator to add to or remove from a job.
type ToggleOperatorRequest struct {
	OperatorID uuid.UUID `json:"operator_id" binding:"required" example:"987fcdeb-51a2-3bc4-d567-890123456789"`
}

// Create handles POST /api/v1/jobs
// @Summary Create a job
// @Description Create a job in status lead (owner/admin)
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body service.CreateJobInput true "Job details"
// @Success 201 {object} Response{data=domain.Job} "Job created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// List handles GET /api/v1/jobs
// @Summary List jobs
// @Description Jobs visible to the caller: all for owner/admin, assigned for operators, own for clients
// @Tags jobs
// @Produce json
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter" Enums(low, medium, high, urgent)
// @Param client_id query string false "Client ID filter"
// @Param operator_id query string false "Assigned operator filter"
// @Success 200 {object} Response{data=[]domain.Job,meta=PagMeta} "Jobs"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	filter, ok := jobFilterFromQuery(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.List(c.Request.Context(), actor, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, jobs)
}

// jobFilterFromQuery reads job list filters, writing a 400 on bad input.
func jobFilterFromQuery(c *gin.Context) (port.JobFilter, bool) {
	filter := port.JobFilter{
		Status:   domain.JobStatus(c.Query("status")),
		Priority: domain.JobPriority(c.Query("priority")),
	}
	if filter.Status != "" && !domain.ValidJobStatuses[filter.Status] {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid status filter")
		return filter, false
	}
	if filter.Priority != "" && !domain.ValidJobPriorities[filter.Priority] {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid priority filter")
		return filter, false
	}
	var ok bool
	if filter.ClientID, ok = optionalUUIDQuery(c, "client_id"); !ok {
		return filter, false
	}
	if filter.OperatorID, ok = optionalUUIDQuery(c, "operator_id"); !ok {
		return filter, false
	}
	return filter, true
}

// GetByID handles GET /api/v1/jobs/:id
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID (UUID)"
// @Success 200 {object} Response{data=domain.Job} "Job"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "id", "job")
	if !ok {
		return
	}

	job, err := h.jobService.GetByID(c.Request.Context(), actor, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// Update handles PUT /api/v1/jobs/:id
// @Summary Edit a job
// @Description Direct edit of any field, including setting any valid status (owner/admin)
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID (UUID)"
// @Param request body service.UpdateJobInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Job} "Job updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "id", "job")
	if !ok {
		return
	}

	var input service.UpdateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.Update(c.Request.Context(), actor, jobID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// Delete handles DELETE /api/v1/jobs/:id
func (h *JobHandler) Delete(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "id", "job")
	if !ok {
		return
	}

	if err := h.jobService.Delete(c.Request.Context(), actor, jobID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "job deleted"})
}

// Advance handles POST /api/v1/jobs/:id/advance
// @Summary Advance a job one status
// @Description Move the job to the next status of its flow
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID (UUID)"
// @Success 200 {object} Response{data=domain.Job} "Job advanced"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 409 {object} ErrorResponseBody "Already at the last status, or status outside the flow"
// @Security BearerAuth
// @Router /jobs/{id}/advance [post]
func (h *JobHandler) Advance(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "id", "job")
	if !ok {
		return
	}

	job, err := h.jobService.Advance(c.Request.Context(), actor, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// ToggleOperator handles POST /api/v1/jobs/:id/operators
// @Summary Toggle an operator assignment
// @Description Add the operator if absent, remove it if present (owner/admin)
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID (UUID)"
// @Param request body ToggleOperatorRequest true "Operator"
// @Success 200 {object} Response{data=domain.Job} "Assignment changed"
// @Failure 400 {object} ErrorResponseBody "Not an active operator"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Router /jobs/{id}/operators [post]
func (h *JobHandler) ToggleOperator(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "id", "job")
	if !ok {
		return
	}

	var req ToggleOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.ToggleOperator(c.Request.Context(), actor, jobID, req.OperatorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// NeedingAssignment handles GET /api/v1/jobs/needs-assignment
// @Summary Jobs with no operator
// @Tags jobs
// @Produce json
// @Success 200 {object} Response{data=[]domain.Job,meta=PagMeta} "Jobs"
// @Security BearerAuth
// @Router /jobs/needs-assignment [get]
func (h *JobHandler) NeedingAssignment(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListNeedingAssignment(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, jobs)
}

// Overdue handles GET /api/v1/jobs/overdue
// @Summary Overdue jobs
// @Description Active jobs whose estimated end has passed
// @Tags jobs
// @Produce json
// @Success 200 {object} Response{data=[]domain.Job,meta=PagMeta} "Jobs"
// @Security BearerAuth
// @Router /jobs/overdue [get]
func (h *JobHandler) Overdue(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListOverdue(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, jobs)
}

// Flows handles GET /api/v1/flows
// @Summary Status tables
// @Description Ordered statuses with labels and colors for jobs, proposals, incidents and severities
// @Tags jobs
// @Produce json
// @Success 200 {object} Response{data=domain.FlowTables} "Status tables"
// @Security BearerAuth
// @Router /flows [get]
func (h *JobHandler) Flows(c *gin.Context) {
	RespondOK(c, domain.Tables())
}
