package service

import (
	"errors"
	"strings"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobDataService handles job application business logic, including the
// user→job association maintained through the reference list.
type JobDataService struct {
	jobRepo  domain.JobDataRepository
	userRepo domain.UserRepository
}

// NewJobDataService creates a new JobDataService
func NewJobDataService(jobRepo domain.JobDataRepository, userRepo domain.UserRepository) *JobDataService {
	return &JobDataService{jobRepo: jobRepo, userRepo: userRepo}
}

// CreateJobInput holds the input for creating a job application
type CreateJobInput struct {
	UserID       primitive.ObjectID
	JobTitle     string
	Company      string
	JobPostingID string
	Salary       *decimal.Decimal
}

// CreateJob verifies the owner exists, inserts the application with its
// backlink set and appends the new id to the owner's reference list. A
// missing owner fails with ErrOwnerNotFound and performs no insertion.
func (s *JobDataService) CreateJob(input CreateJobInput) (*domain.JobData, error) {
	if _, err := s.userRepo.GetByID(input.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, err
	}

	job, err := s.jobRepo.Create(&domain.JobData{
		UserID:       input.UserID,
		JobTitle:     strings.TrimSpace(input.JobTitle),
		Company:      strings.TrimSpace(input.Company),
		JobPostingID: strings.TrimSpace(input.JobPostingID),
		Salary:       input.Salary,
	})
	if err != nil {
		return nil, err
	}

	// A freshly assigned id can only collide if the owner vanished between the
	// check and the update; surface that as the owner error.
	if err := s.userRepo.AddJobReference(input.UserID, job.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, err
	}

	return job, nil
}

// GetJobs retrieves every job application in the system
func (s *JobDataService) GetJobs() ([]*domain.JobData, error) {
	return s.jobRepo.GetAll()
}

// GetJob retrieves a single job application by id
func (s *JobDataService) GetJob(id primitive.ObjectID) (*domain.JobData, error) {
	return s.jobRepo.GetByID(id)
}

// GetJobsForUsername resolves the username to an account and bulk-fetches the
// applications named by its reference list. An empty list yields an empty
// slice, not an error; an unknown username fails with ErrUserNotFound.
func (s *JobDataService) GetJobsForUsername(username string) ([]*domain.JobData, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.jobRepo.GetByIDs(user.JobDocumentIDs)
}

// UpdateJob merges the non-nil patch fields into the application. The owner
// backlink is never part of the patch.
func (s *JobDataService) UpdateJob(id primitive.ObjectID, patch domain.JobDataPatch) error {
	if patch.IsEmpty() {
		_, err := s.jobRepo.GetByID(id)
		return err
	}
	return s.jobRepo.UpdateFieldsByID(id, patch)
}

// DeleteJob removes the application and pulls its id from the owner's
// reference list. It returns the deleted record so callers can release any
// stored attachments.
func (s *JobDataService) DeleteJob(id primitive.ObjectID) (*domain.JobData, error) {
	job, err := s.jobRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.DeleteByID(id); err != nil {
		return nil, err
	}
	if err := s.userRepo.RemoveJobReference(job.UserID, id); err != nil {
		return nil, err
	}
	return job, nil
}
