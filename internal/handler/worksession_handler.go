package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// WorkSessionHandler handles operator time tracking endpoints.
type WorkSessionHandler struct {
	sessionService service.WorkSessionService
}

// NewWorkSessionHandler creates a new WorkSessionHandler.
func NewWorkSessionHandler(sessionService service.WorkSessionService) *WorkSessionHandler {
	return &WorkSessionHandler{sessionService: sessionService}
}

// Start handles POST /api/v1/sessions
// @Summary Start a work session
// @Description Clock in on a job; an operator may have one active session at a time
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body service.StartSessionInput true "Job"
// @Success 201 {object} Response{data=domain.WorkSession} "Session started"
// @Failure 403 {object} ErrorResponseBody "Operator not assigned"
// @Failure 409 {object} ErrorResponseBody "Active session exists"
// @Security BearerAuth
// @Router /sessions [post]
func (h *WorkSessionHandler) Start(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.StartSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, session)
}

// End handles POST /api/v1/sessions/:id/end
// @Summary End a work session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID (UUID)"
// @Param request body service.EndSessionInput false "Closing notes"
// @Success 200 {object} Response{data=domain.WorkSession} "Session ended"
// @Failure 409 {object} ErrorResponseBody "Already ended"
// @Security BearerAuth
// @Router /sessions/{id}/end [post]
func (h *WorkSessionHandler) End(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "session")
	if !ok {
		return
	}

	var input service.EndSessionInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	session, err := h.sessionService.End(c.Request.Context(), actor, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, session)
}

// Active handles GET /api/v1/sessions/active
// @Summary Caller's active session
// @Description Returns null data when the caller is not clocked in
// @Tags sessions
// @Produce json
// @Success 200 {object} Response{data=domain.WorkSession} "Active session or null"
// @Security BearerAuth
// @Router /sessions/active [get]
func (h *WorkSessionHandler) Active(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetActive(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: session})
}

// GetByID handles GET /api/v1/sessions/:id
func (h *WorkSessionHandler) GetByID(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "session")
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, session)
}

// List handles GET /api/v1/sessions
// @Summary List work sessions
// @Tags sessions
// @Produce json
// @Param job_id query string false "Job ID filter"
// @Param operator_id query string false "Operator filter (owner/admin)"
// @Param active query bool false "Only sessions still running"
// @Param from query string false "Start date (YYYY-MM-DD), inclusive"
// @Param to query string false "End date (YYYY-MM-DD), exclusive"
// @Success 200 {object} Response{data=[]domain.WorkSession,meta=PagMeta} "Sessions"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /sessions [get]
func (h *WorkSessionHandler) List(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	filter := port.WorkSessionFilter{ActiveOnly: c.Query("active") == "true"}
	if filter.JobID, ok = optionalUUIDQuery(c, "job_id"); !ok {
		return
	}
	if filter.OperatorID, ok = optionalUUIDQuery(c, "operator_id"); !ok {
		return
	}
	if filter.From, ok = optionalDateQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = optionalDateQuery(c, "to"); !ok {
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), actor, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, sessions)
}

func optionalDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid "+name+" date; expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
