package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// ProposalHandler handles proposal endpoints.
type ProposalHandler struct {
	proposalService service.ProposalService
}

// NewProposalHandler creates a new ProposalHandler.
func NewProposalHandler(proposalService service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// ProposalView is a proposal with its display metadata.
type ProposalView struct {
	domain.Proposal
	Readiness  int               `json:"readiness" example:"90"`
	StatusMeta domain.StatusMeta `json:"status_meta"`
}

func newProposalView(p *domain.Proposal) ProposalView {
	return ProposalView{Proposal: *p, Readiness: p.Readiness(), StatusMeta: domain.ProposalFlow.Meta(p.Status)}
}

// Create handles POST /api/v1/proposals
// @Summary Create a proposal
// @Description Start a draft proposal for a job; a job has at most one open proposal (owner/admin)
// @Tags proposals
// @Accept json
// @Produce json
// @Param request body service.CreateProposalInput true "Proposal details"
// @Success 201 {object} Response{data=ProposalView} "Proposal created"
// @Failure 400 {object} ErrorResponseBody "Validation error or invalid specs"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 409 {object} ErrorResponseBody "Job already has an open proposal"
// @Security BearerAuth
// @Router /proposals [post]
func (h *ProposalHandler) Create(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.CreateProposalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.proposalService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, newProposalView(p))
}

// List handles GET /api/v1/proposals
// @Summary List proposals
// @Tags proposals
// @Produce json
// @Param status query string false "Status filter" Enums(draft, sent, viewed, approved, rejected)
// @Param job_id query string false "Job ID filter"
// @Success 200 {object} Response{data=[]ProposalView,meta=PagMeta} "Proposals"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /proposals [get]
func (h *ProposalHandler) List(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	filter := port.ProposalFilter{Status: domain.ProposalStatus(c.Query("status"))}
	if filter.Status != "" && !domain.ProposalFlow.Contains(filter.Status) {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid status filter")
		return
	}
	if filter.JobID, ok = optionalUUIDQuery(c, "job_id"); !ok {
		return
	}

	proposals, err := h.proposalService.List(c.Request.Context(), actor, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	views := make([]ProposalView, len(proposals))
	for i := range proposals {
		views[i] = newProposalView(&proposals[i])
	}
	RespondList(c, views)
}

// GetByID handles GET /api/v1/proposals/:id
// @Summary Get a proposal
// @Description A client opening a sent proposal marks it viewed
// @Tags proposals
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Success 200 {object} Response{data=ProposalView} "Proposal"
// @Failure 404 {object} ErrorResponseBody "Proposal not found"
// @Security BearerAuth
// @Router /proposals/{id} [get]
func (h *ProposalHandler) GetByID(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	p, err := h.proposalService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, newProposalView(p))
}

// Edit handles PUT /api/v1/proposals/:id
// @Summary Edit a proposal
// @Description Each edit snapshots the prior content and bumps the version (owner/admin)
// @Tags proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Param request body service.EditProposalInput true "Fields to change"
// @Success 200 {object} Response{data=ProposalView} "Proposal updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Proposal is locked"
// @Security BearerAuth
// @Router /proposals/{id} [put]
func (h *ProposalHandler) Edit(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	var input service.EditProposalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.proposalService.Edit(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, newProposalView(p))
}

// Versions handles GET /api/v1/proposals/:id/versions
// @Summary Proposal version history
// @Tags proposals
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Success 200 {object} Response{data=[]domain.ProposalVersion,meta=PagMeta} "Snapshots, oldest first"
// @Security BearerAuth
// @Router /proposals/{id}/versions [get]
func (h *ProposalHandler) Versions(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	versions, err := h.proposalService.ListVersions(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, versions)
}

// Send handles POST /api/v1/proposals/:id/send
// @Summary Send a proposal
// @Description Move a draft to sent and notify the client contact (owner/admin)
// @Tags proposals
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Success 200 {object} Response{data=ProposalView} "Proposal sent"
// @Failure 409 {object} ErrorResponseBody "Not a draft"
// @Security BearerAuth
// @Router /proposals/{id}/send [post]
func (h *ProposalHandler) Send(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	p, err := h.proposalService.MarkSent(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, newProposalView(p))
}

// Approve handles POST /api/v1/proposals/:id/approve
// @Summary Approve a proposal
// @Tags proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Param request body service.DecisionInput false "Optional note"
// @Success 200 {object} Response{data=ProposalView} "Proposal approved"
// @Failure 409 {object} ErrorResponseBody "Invalid transition"
// @Security BearerAuth
// @Router /proposals/{id}/approve [post]
func (h *ProposalHandler) Approve(c *gin.Context) {
	h.decide(c, h.proposalService.Approve)
}

// Reject handles POST /api/v1/proposals/:id/reject
// @Summary Reject a proposal
// @Tags proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Param request body service.DecisionInput false "Optional note"
// @Success 200 {object} Response{data=ProposalView} "Proposal rejected"
// @Failure 409 {object} ErrorResponseBody "Invalid transition"
// @Security BearerAuth
// @Router /proposals/{id}/reject [post]
func (h *ProposalHandler) Reject(c *gin.Context) {
	h.decide(c, h.proposalService.Reject)
}

type decisionFunc func(ctx context.Context, actor service.Actor, id uuid.UUID, input service.DecisionInput) (*domain.Proposal, error)

func (h *ProposalHandler) decide(c *gin.Context, fn decisionFunc) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	// The note is optional, so an empty body is fine.
	var input service.DecisionInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	p, err := fn(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, newProposalView(p))
}

// Convert handles POST /api/v1/proposals/:id/convert
// @Summary Convert to a job
// @Description Spawn a scheduled job from an approved proposal (owner/admin)
// @Tags proposals
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Success 201 {object} Response{data=domain.Job} "Job created"
// @Failure 409 {object} ErrorResponseBody "Not approved or already converted"
// @Security BearerAuth
// @Router /proposals/{id}/convert [post]
func (h *ProposalHandler) Convert(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	job, err := h.proposalService.ConvertToJob(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// GenerateDraft handles POST /api/v1/proposals/:id/draft
// @Summary Generate proposal text
// @Description Ask the AI drafter for proposal markdown and store it as a new version (owner/admin)
// @Tags proposals
// @Produce json
// @Param id path string true "Proposal ID (UUID)"
// @Success 200 {object} Response{data=ProposalView} "Draft stored"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 503 {object} ErrorResponseBody "Drafting unavailable"
// @Security BearerAuth
// @Router /proposals/{id}/draft [post]
func (h *ProposalHandler) GenerateDraft(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	p, err := h.proposalService.GenerateDraft(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, newProposalView(p))
}

// Delete handles DELETE /api/v1/proposals/:id
func (h *ProposalHandler) Delete(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "proposal")
	if !ok {
		return
	}

	if err := h.proposalService.Delete(c.Request.Context(), actor, id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "proposal deleted"})
}
