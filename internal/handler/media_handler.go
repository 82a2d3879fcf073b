package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/service"
)

// MediaHandler handles photo, video and document uploads for jobs.
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

var mediaOwners = map[domain.MediaOwner]bool{
	domain.MediaOwnerWorkSession: true,
	domain.MediaOwnerIncident:    true,
	domain.MediaOwnerProposal:    true,
}

// Upload handles POST /api/v1/media/:owner/:id
// @Summary Upload media
// @Description Upload a file (jpg, png, pdf, mp4, m4a) and attach it to a work session, incident or proposal
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param owner path string true "Owning entity" Enums(work_session, incident, proposal)
// @Param id path string true "Entity ID (UUID)"
// @Param file formData file true "File to upload"
// @Success 201 {object} Response{data=service.MediaObject} "Uploaded"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 404 {object} ErrorResponseBody "Entity not found"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /media/{owner}/{id} [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	owner := domain.MediaOwner(c.Param("owner"))
	if !mediaOwners[owner] {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "owner must be work_session, incident or proposal")
		return
	}
	ownerID, ok := parseIDParam(c, "id", string(owner))
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	obj, err := h.mediaService.Upload(c.Request.Context(), actor, service.MediaUploadInput{
		Owner:   owner,
		OwnerID: ownerID,
		File:    file,
		Header:  header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, obj)
}

// DownloadURL handles GET /api/v1/media/url?key=...
// @Summary Presigned download URL
// @Tags media
// @Produce json
// @Param key query string true "Media key"
// @Success 200 {object} Response{data=MediaURLResponse} "Download URL"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /media/url [get]
func (h *MediaHandler) DownloadURL(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "key query parameter is required")
		return
	}

	url, err := h.mediaService.DownloadURL(c.Request.Context(), actor, key)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MediaURLResponse{Key: key, URL: url})
}
