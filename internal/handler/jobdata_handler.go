package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"github.com/jatrackr/jatrackr-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobDataHandler handles job-application HTTP requests
type JobDataHandler struct {
	jobService        *service.JobDataService
	attachmentService *service.AttachmentService
}

// NewJobDataHandler creates a new JobDataHandler
func NewJobDataHandler(jobService *service.JobDataService, attachmentService *service.AttachmentService) *JobDataHandler {
	return &JobDataHandler{
		jobService:        jobService,
		attachmentService: attachmentService,
	}
}

// CreateJobRequest represents the create job application request body
type CreateJobRequest struct {
	UserID       string `json:"userId"`
	JobTitle     string `json:"jobTitle"`
	Company      string `json:"company"`
	JobPostingID string `json:"jobPostingId"`
	Salary       string `json:"salary,omitempty"`
}

// UpdateJobRequest represents the partial job application update body
type UpdateJobRequest struct {
	JobTitle     *string `json:"jobTitle"`
	Company      *string `json:"company"`
	JobPostingID *string `json:"jobPostingId"`
	Salary       *string `json:"salary"`
}

// JobDataResponse represents a job application in API responses
type JobDataResponse struct {
	ID           string               `json:"id"`
	UserID       string               `json:"userId"`
	JobTitle     string               `json:"jobTitle"`
	Company      string               `json:"company"`
	JobPostingID string               `json:"jobPostingId"`
	Salary       *string              `json:"salary,omitempty"`
	Attachments  []AttachmentResponse `json:"attachments"`
	CreatedAt    string               `json:"createdAt"`
	UpdatedAt    string               `json:"updatedAt"`
}

// AttachmentResponse represents attachment metadata in API responses
type AttachmentResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	UploadedAt  string `json:"uploadedAt"`
}

// GetJobs handles GET /api/jobdata/jobs/all
func (h *JobDataHandler) GetJobs(c echo.Context) error {
	jobs, err := h.jobService.GetJobs()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list job applications")
		return NewInternalError(c, "Failed to list job applications")
	}

	response := make([]JobDataResponse, len(jobs))
	for i, job := range jobs {
		response[i] = toJobDataResponse(job)
	}
	return c.JSON(http.StatusOK, response)
}

// GetJob handles GET /api/jobdata/:id
func (h *JobDataHandler) GetJob(c echo.Context) error {
	job, err := h.jobByParam(c)
	if err != nil {
		return h.mapJobReadError(c, err)
	}
	return c.JSON(http.StatusOK, toJobDataResponse(job))
}

// GetJobsForUser handles GET /api/users/:username/jobapps. The result is
// assembled through the owner's reference list; an empty list reads as 404
// for parity with the rest of the not-found handling.
func (h *JobDataHandler) GetJobsForUser(c echo.Context) error {
	username := c.Param("username")

	jobs, err := h.jobService.GetJobsForUsername(username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("username", username).Msg("Failed to list user job applications")
		return NewInternalError(c, "Failed to list job applications")
	}
	if len(jobs) == 0 {
		return NewNotFoundError(c, "No job applications found for user")
	}

	response := make([]JobDataResponse, len(jobs))
	for i, job := range jobs {
		response[i] = toJobDataResponse(job)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateJob handles POST /api/jobdata
func (h *JobDataHandler) CreateJob(c echo.Context) error {
	var req CreateJobRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "userId", Message: "Must be a 24-character hex identifier"},
		})
	}

	input := service.CreateJobInput{
		UserID:       userID,
		JobTitle:     req.JobTitle,
		Company:      req.Company,
		JobPostingID: req.JobPostingID,
	}
	if req.Salary != "" {
		salary, err := decimal.NewFromString(req.Salary)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "salary", Message: "Must be a valid decimal number"},
			})
		}
		input.Salary = &salary
	}

	job, err := h.jobService.CreateJob(input)
	if err != nil {
		if errors.Is(err, domain.ErrOwnerNotFound) {
			return NewNotFoundError(c, "Owning user not found")
		}
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to create job application")
		return NewInternalError(c, "Failed to create job application")
	}

	log.Info().Str("job_id", job.ID.Hex()).Str("user_id", job.UserID.Hex()).Msg("Job application created")

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/jobdata/%s", job.ID.Hex()))
	return c.JSON(http.StatusCreated, toJobDataResponse(job))
}

// UpdateJob handles PUT /api/jobdata/:id
func (h *JobDataHandler) UpdateJob(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid job application ID", nil)
	}

	var req UpdateJobRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	patch := domain.JobDataPatch{
		JobTitle:     req.JobTitle,
		Company:      req.Company,
		JobPostingID: req.JobPostingID,
	}
	if req.Salary != nil {
		salary, err := decimal.NewFromString(*req.Salary)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "salary", Message: "Must be a valid decimal number"},
			})
		}
		patch.Salary = &salary
	}

	if err := h.jobService.UpdateJob(id, patch); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return NewNotFoundError(c, "Job application not found")
		}
		log.Error().Err(err).Str("job_id", id.Hex()).Msg("Failed to update job application")
		return NewInternalError(c, "Failed to update job application")
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteJob handles DELETE /api/jobdata/:id
func (h *JobDataHandler) DeleteJob(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid job application ID", nil)
	}

	job, err := h.jobService.DeleteJob(id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return NewNotFoundError(c, "Job application not found")
		}
		log.Error().Err(err).Str("job_id", id.Hex()).Msg("Failed to delete job application")
		return NewInternalError(c, "Failed to delete job application")
	}

	// Stored attachment objects are released best effort once the record is gone.
	if h.attachmentService.IsEnabled() && len(job.Attachments) > 0 {
		h.attachmentService.DeleteAll(c.Request().Context(), job)
	}

	log.Info().Str("job_id", id.Hex()).Msg("Job application deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *JobDataHandler) jobByParam(c echo.Context) (*domain.JobData, error) {
	id, err := parseJobID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	return h.jobService.GetJob(id)
}

var errInvalidJobID = errors.New("invalid job application id")

func parseJobID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errInvalidJobID
	}
	return id, nil
}

func (h *JobDataHandler) mapJobReadError(c echo.Context, err error) error {
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

func toJobDataResponse(job *domain.JobData) JobDataResponse {
	resp := JobDataResponse{
		ID:           job.ID.Hex(),
		UserID:       job.UserID.Hex(),
		JobTitle:     job.JobTitle,
		Company:      job.Company,
		JobPostingID: job.JobPostingID,
		Attachments:  make([]AttachmentResponse, len(job.Attachments)),
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    job.UpdatedAt.Format(time.RFC3339),
	}
	if job.Salary != nil {
		salary := job.Salary.StringFixed(2)
		resp.Salary = &salary
	}
	for i, att := range job.Attachments {
		resp.Attachments[i] = toAttachmentResponse(att)
	}
	return resp
}

func toAttachmentResponse(att domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          att.ID,
		FileName:    att.FileName,
		ContentType: att.ContentType,
		Size:        att.Size,
		UploadedAt:  att.UploadedAt.Format(time.RFC3339),
	}
}
