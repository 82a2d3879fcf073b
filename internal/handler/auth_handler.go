package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpilot/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup handles POST /api/v1/auth/signup
// @Summary Create a business
// @Description Verify an identity token and create a tenant with the caller as owner
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Identity token and business name"
// @Success 201 {object} Response{data=service.AuthResult} "Business created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Invalid identity token"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var input service.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// Session handles POST /api/v1/auth/session
// @Summary Exchange an identity token
// @Description Exchange an identity provider ID token for API tokens in a tenant
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Identity token and tenant"
// @Success 200 {object} Response{data=service.AuthResult} "Signed in"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Invalid token or unknown user"
// @Failure 403 {object} ErrorResponseBody "Tenant or user inactive"
// @Router /auth/session [post]
func (h *AuthHandler) Session(c *gin.Context) {
	var input service.SessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.authService.Session(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Rotate tokens
// @Description Exchange a refresh token for a new pair; the old refresh token is revoked
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Response{data=TokenResponse} "New token pair"
// @Failure 401 {object} ErrorResponseBody "Invalid or revoked refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input service.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// Signout handles POST /api/v1/auth/signout
// @Summary Sign out
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Response{data=MessageResponse} "Signed out"
// @Router /auth/signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	var input service.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.authService.Signout(c.Request.Context(), input.RefreshToken); err != nil {
		// Sign-out always succeeds from the client's point of view.
		log.Printf("authHandler.Signout: %v", err)
	}

	RespondOK(c, gin.H{"message": "signed out"})
}

// Me handles GET /api/v1/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=domain.User} "Current user"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}
