package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"github.com/jatrackr/jatrackr-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AttachmentHandler handles job-application attachment HTTP requests
type AttachmentHandler struct {
	jobService        *service.JobDataService
	attachmentService *service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(jobService *service.JobDataService, attachmentService *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		jobService:        jobService,
		attachmentService: attachmentService,
	}
}

// AttachmentURLResponse represents a presigned download URL
type AttachmentURLResponse struct {
	URL string `json:"url"`
}

// UploadAttachment handles POST /api/jobdata/:id/attachments
func (h *AttachmentHandler) UploadAttachment(c echo.Context) error {
	if !h.attachmentService.IsEnabled() {
		return NewUnavailableError(c, "Attachment uploads are disabled (storage not configured)")
	}

	job, err := h.jobByParam(c)
	if err != nil {
		return h.mapError(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	att, err := h.attachmentService.Upload(c.Request().Context(), job, file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentTooLarge),
			errors.Is(err, service.ErrUnsupportedAttachment),
			errors.Is(err, service.ErrInvalidImageData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: err.Error()},
			})
		default:
			log.Error().Err(err).Str("job_id", job.ID.Hex()).Msg("Failed to upload attachment")
			return NewInternalError(c, "Failed to upload attachment")
		}
	}

	log.Info().Str("job_id", job.ID.Hex()).Str("attachment_id", att.ID).Str("file", att.FileName).Msg("Attachment uploaded")
	return c.JSON(http.StatusCreated, toAttachmentResponse(*att))
}

// ListAttachments handles GET /api/jobdata/:id/attachments
func (h *AttachmentHandler) ListAttachments(c echo.Context) error {
	job, err := h.jobByParam(c)
	if err != nil {
		return h.mapError(c, err)
	}

	response := make([]AttachmentResponse, len(job.Attachments))
	for i, att := range job.Attachments {
		response[i] = toAttachmentResponse(att)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAttachmentURL handles GET /api/jobdata/:id/attachments/:attachmentId/url
func (h *AttachmentHandler) GetAttachmentURL(c echo.Context) error {
	if !h.attachmentService.IsEnabled() {
		return NewUnavailableError(c, "Attachment downloads are disabled (storage not configured)")
	}

	job, err := h.jobByParam(c)
	if err != nil {
		return h.mapError(c, err)
	}

	url, err := h.attachmentService.PresignedURL(c.Request().Context(), job, c.Param("attachmentId"))
	if err != nil {
		if errors.Is(err, domain.ErrAttachmentNotFound) {
			return NewNotFoundError(c, "Attachment not found")
		}
		log.Error().Err(err).Str("job_id", job.ID.Hex()).Msg("Failed to presign attachment URL")
		return NewInternalError(c, "Failed to generate download URL")
	}

	return c.JSON(http.StatusOK, AttachmentURLResponse{URL: url})
}

// DeleteAttachment handles DELETE /api/jobdata/:id/attachments/:attachmentId
func (h *AttachmentHandler) DeleteAttachment(c echo.Context) error {
	if !h.attachmentService.IsEnabled() {
		return NewUnavailableError(c, "Attachment deletes are disabled (storage not configured)")
	}

	job, err := h.jobByParam(c)
	if err != nil {
		return h.mapError(c, err)
	}

	if err := h.attachmentService.Delete(c.Request().Context(), job, c.Param("attachmentId")); err != nil {
		if errors.Is(err, domain.ErrAttachmentNotFound) {
			return NewNotFoundError(c, "Attachment not found")
		}
		log.Error().Err(err).Str("job_id", job.ID.Hex()).Msg("Failed to delete attachment")
		return NewInternalError(c, "Failed to delete attachment")
	}

	log.Info().Str("job_id", job.ID.Hex()).Str("attachment_id", c.Param("attachmentId")).Msg("Attachment deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *AttachmentHandler) jobByParam(c echo.Context) (*domain.JobData, error) {
	id, err := parseJobID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	return h.jobService.GetJob(id)
}

func (h *AttachmentHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errInvalidJobID):
		return NewValidationError(c, "Invalid job application ID", nil)
	case errors.Is(err, domain.ErrJobNotFound):
		return NewNotFoundError(c, "Job application not found")
	default:
		log.Error().Err(err).Msg("Failed to get job application")
		return NewInternalError(c, "Failed to get job application")
	}
}
