package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/middleware"
	"fieldpilot/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds list metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with list metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondList sends a complete, unpaginated list with its count in meta.
func RespondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	RespondPaginated(c, items, PagMeta{Total: len(items), Offset: 0, Limit: len(items)})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, "INSUFFICIENT_ROLE", "insufficient role for this action"
	case errors.Is(err, domain.ErrTenantInactive):
		return http.StatusForbidden, "TENANT_INACTIVE", "tenant is inactive"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrIdentityTokenInvalid):
		return http.StatusUnauthorized, "INVALID_IDENTITY_TOKEN", "identity token is invalid or expired"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists for this tenant"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpg, png, pdf, mp4, m4a"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, domain.ErrAlreadyTerminal):
		return http.StatusConflict, "ALREADY_TERMINAL", "status is already at the end of its flow"
	case errors.Is(err, domain.ErrStatusNotInFlow):
		return http.StatusConflict, "STATUS_NOT_IN_FLOW", "current status cannot be advanced"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "INVALID_STATUS", "invalid status value"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", "status transition not allowed"
	case errors.Is(err, domain.ErrProposalExists):
		return http.StatusConflict, "PROPOSAL_EXISTS", "job already has an open proposal"
	case errors.Is(err, domain.ErrProposalNotApproved):
		return http.StatusConflict, "PROPOSAL_NOT_APPROVED", "proposal must be approved before conversion"
	case errors.Is(err, domain.ErrProposalAlreadyConverted):
		return http.StatusConflict, "PROPOSAL_ALREADY_CONVERTED", "proposal has already been converted to a job"
	case errors.Is(err, domain.ErrProposalLocked):
		return http.StatusConflict, "PROPOSAL_LOCKED", "proposal can no longer be edited"
	case errors.Is(err, domain.ErrInvalidSpecs):
		return http.StatusBadRequest, "INVALID_SPECS", err.Error()
	case errors.Is(err, domain.ErrOperatorNotAssigned):
		return http.StatusForbidden, "OPERATOR_NOT_ASSIGNED", "operator is not assigned to this job"
	case errors.Is(err, domain.ErrNotAnOperator):
		return http.StatusBadRequest, "NOT_AN_OPERATOR", "user is not an active operator"
	case errors.Is(err, domain.ErrActiveSessionExists):
		return http.StatusConflict, "ACTIVE_SESSION_EXISTS", "operator already has an active work session"
	case errors.Is(err, domain.ErrSessionAlreadyEnded):
		return http.StatusConflict, "SESSION_ALREADY_ENDED", "work session has already ended"
	case errors.Is(err, domain.ErrAlreadyLinked):
		return http.StatusConflict, "ALREADY_LINKED", "client or user is already linked"
	case errors.Is(err, domain.ErrNotClientRole):
		return http.StatusBadRequest, "NOT_CLIENT_ROLE", "only client users can be linked to a client record"
	case errors.Is(err, domain.ErrClientNotLinked):
		return http.StatusConflict, "CLIENT_NOT_LINKED", "client has no linked user"
	case errors.Is(err, domain.ErrDraftRateLimited):
		return http.StatusTooManyRequests, "DRAFT_RATE_LIMITED", "draft generation is rate limited; try again later"
	case errors.Is(err, domain.ErrDraftUnavailable):
		return http.StatusServiceUnavailable, "DRAFT_UNAVAILABLE", "draft generation is unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// extractActor builds the caller from the auth context.
// Returns false if auth context is missing (error response already written).
func extractActor(c *gin.Context) (service.Actor, bool) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return service.Actor{}, false
	}
	return actor, true
}

// parseIDParam parses a UUID path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional UUID query parameter, writing a 400 on failure.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return nil, false
	}
	return &id, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
