package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpilot/internal/service"
)

// ClientHandler handles client records and the client/user link.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// LinkUserRequest is the body of a link request.
type LinkUserRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required" example:"987fcdeb-51a2-3bc4-d567-890123456789"`
}

// Create handles POST /api/v1/clients
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Param request body service.ClientInput true "Client details"
// @Success 201 {object} Response{data=domain.Client} "Client created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, client)
}

// List handles GET /api/v1/clients
// @Summary List clients
// @Description Managers see all clients; a client user sees only its own record
// @Tags clients
// @Produce json
// @Success 200 {object} Response{data=[]domain.Client,meta=PagMeta} "Clients"
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	clients, err := h.clientService.List(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, clients)
}

// GetByID handles GET /api/v1/clients/:id
// @Summary Get a client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Success 200 {object} Response{data=domain.Client} "Client"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), actor, clientID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// Update handles PUT /api/v1/clients/:id
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Param request body service.ClientInput true "Client details"
// @Success 200 {object} Response{data=domain.Client} "Client updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	var input service.ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), actor, clientID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// Delete handles DELETE /api/v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), actor, clientID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "client deleted"})
}

// LinkUser handles POST /api/v1/clients/:id/link
// @Summary Link a portal user
// @Description Link a client-role user to this client record; both sides are written together
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Param request body LinkUserRequest true "User to link"
// @Success 200 {object} Response{data=domain.Client} "Linked"
// @Failure 400 {object} ErrorResponseBody "User is not a client"
// @Failure 409 {object} ErrorResponseBody "Already linked"
// @Security BearerAuth
// @Router /clients/{id}/link [post]
func (h *ClientHandler) LinkUser(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	var req LinkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	client, err := h.clientService.LinkUser(c.Request.Context(), actor, clientID, req.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// UnlinkUser handles DELETE /api/v1/clients/:id/link
// @Summary Unlink the portal user
// @Tags clients
// @Produce json
// @Param id path string true "Client ID (UUID)"
// @Success 200 {object} Response{data=domain.Client} "Unlinked"
// @Failure 409 {object} ErrorResponseBody "Client not linked"
// @Security BearerAuth
// @Router /clients/{id}/link [delete]
func (h *ClientHandler) UnlinkUser(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.UnlinkUser(c.Request.Context(), actor, clientID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, client)
}

// ReconcileLinks handles POST /api/v1/clients/reconcile
// @Summary Repair client/user links
// @Description Clear dangling or one-sided links and report what changed (owner/admin)
// @Tags clients
// @Produce json
// @Success 200 {object} Response{data=[]domain.LinkRepair,meta=PagMeta} "Repairs applied"
// @Security BearerAuth
// @Router /clients/reconcile [post]
func (h *ClientHandler) ReconcileLinks(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	repairs, err := h.clientService.ReconcileLinks(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, repairs)
}
