package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
	"fieldpilot/internal/service"
)

// UserHandler handles team management endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Invite handles POST /api/v1/users
// @Summary Invite a team member
// @Description Provision an identity and an invited user in the tenant (owner/admin)
// @Tags users
// @Accept json
// @Produce json
// @Param request body InviteUserRequest true "User details"
// @Success 201 {object} Response{data=domain.User} "User invited"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 409 {object} ErrorResponseBody "Email already exists"
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Invite(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.InviteUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.userService.Invite(c.Request.Context(), actor, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, user)
}

// List handles GET /api/v1/users
// @Summary List users
// @Description List tenant users, optionally by role and status (owner/admin)
// @Tags users
// @Produce json
// @Param role query string false "Role filter" Enums(owner, admin, operator, client)
// @Param status query string false "Status filter" Enums(active, invited, disabled)
// @Success 200 {object} Response{data=[]domain.User,meta=PagMeta} "List of users"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	filter := port.UserFilter{
		Role:   domain.UserRole(c.Query("role")),
		Status: domain.UserStatus(c.Query("status")),
	}
	if filter.Role != "" && !domain.ValidUserRoles[filter.Role] {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid role filter")
		return
	}
	if filter.Status != "" && !domain.ValidUserStatuses[filter.Status] {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid status filter")
		return
	}

	users, err := h.userService.List(c.Request.Context(), actor, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondList(c, users)
}

// GetByID handles GET /api/v1/users/:id
// @Summary Get user by ID
// @Description Get user details (self or owner/admin)
// @Tags users
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} Response{data=domain.User} "User details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor, userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}

// Update handles PUT /api/v1/users/:id
// @Summary Update a user
// @Description Change display name, role or status (owner/admin)
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.User} "User updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	var input service.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}

// Disable handles DELETE /api/v1/users/:id
// Users are never removed; this disables the account and revokes its sessions.
// @Summary Disable a user
// @Tags users
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} Response{data=domain.User} "User disabled"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Disable(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.Disable(c.Request.Context(), actor, userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}
