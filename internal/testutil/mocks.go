package testutil

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[primitive.ObjectID]*domain.User
	Order []primitive.ObjectID
	// Calls counts every repository invocation, so tests can assert that a
	// rejected request never reached the store.
	Calls    int
	ExistsFn func(username, email string) (bool, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[primitive.ObjectID]*domain.User)}
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.JobDocumentIDs == nil {
		user.JobDocumentIDs = []primitive.ObjectID{}
	}
	m.Users[user.ID] = user
	m.Order = append(m.Order, user.ID)
}

// GetAll retrieves all users in insertion order
func (m *MockUserRepository) GetAll() ([]*domain.User, error) {
	m.Calls++
	result := make([]*domain.User, 0, len(m.Users))
	for _, id := range m.Order {
		if user, ok := m.Users[id]; ok {
			result = append(result, user)
		}
	}
	return result, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id primitive.ObjectID) (*domain.User, error) {
	m.Calls++
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByUsername retrieves the first user matching username
func (m *MockUserRepository) GetByUsername(username string) (*domain.User, error) {
	m.Calls++
	for _, id := range m.Order {
		if user, ok := m.Users[id]; ok && user.Username == username {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves the first user matching email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	m.Calls++
	for _, id := range m.Order {
		if user, ok := m.Users[id]; ok && user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByUsernameAndEmail retrieves the user matching both fields
func (m *MockUserRepository) GetByUsernameAndEmail(username, email string) (*domain.User, error) {
	m.Calls++
	for _, id := range m.Order {
		if user, ok := m.Users[id]; ok && user.Username == username && user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Exists reports whether any user matches username OR email
func (m *MockUserRepository) Exists(username, email string) (bool, error) {
	m.Calls++
	if m.ExistsFn != nil {
		return m.ExistsFn(username, email)
	}
	for _, user := range m.Users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Create inserts a new user with an assigned id
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	m.Calls++
	now := time.Now().UTC()
	created := *user
	created.ID = primitive.NewObjectID()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.JobDocumentIDs == nil {
		created.JobDocumentIDs = []primitive.ObjectID{}
	}
	m.Users[created.ID] = &created
	m.Order = append(m.Order, created.ID)
	return &created, nil
}

// ReplaceByID replaces the user matching id, forcing the replacement's id
func (m *MockUserRepository) ReplaceByID(id primitive.ObjectID, user *domain.User) error {
	m.Calls++
	existing, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	replaced := *user
	replaced.ID = existing.ID
	replaced.UpdatedAt = time.Now().UTC()
	m.Users[id] = &replaced
	return nil
}

// ReplaceByUsername replaces the user matching username
func (m *MockUserRepository) ReplaceByUsername(username string, user *domain.User) error {
	m.Calls++
	existing, err := m.GetByUsername(username)
	if err != nil {
		return err
	}
	replaced := *user
	replaced.ID = existing.ID
	replaced.UpdatedAt = time.Now().UTC()
	m.Users[existing.ID] = &replaced
	return nil
}

// UpdateFieldsByID merges the patch into the user matching id
func (m *MockUserRepository) UpdateFieldsByID(id primitive.ObjectID, patch domain.UserPatch) error {
	m.Calls++
	user, ok := m.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteByID removes the user matching id; no-op when absent
func (m *MockUserRepository) DeleteByID(id primitive.ObjectID) error {
	m.Calls++
	delete(m.Users, id)
	return nil
}

// DeleteByUsername removes the first user matching username; no-op when absent
func (m *MockUserRepository) DeleteByUsername(username string) error {
	m.Calls++
	for id, user := range m.Users {
		if user.Username == username {
			delete(m.Users, id)
			return nil
		}
	}
	return nil
}

// DeleteByIDAndUsername removes the user matching both keys; no-op when absent
func (m *MockUserRepository) DeleteByIDAndUsername(id primitive.ObjectID, username string) error {
	m.Calls++
	if user, ok := m.Users[id]; ok && user.Username == username {
		delete(m.Users, id)
	}
	return nil
}

// AddJobReference appends jobID to the user's reference list if absent
func (m *MockUserRepository) AddJobReference(userID, jobID primitive.ObjectID) error {
	m.Calls++
	user, ok := m.Users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, existing := range user.JobDocumentIDs {
		if existing == jobID {
			return domain.ErrJobAlreadyLinked
		}
	}
	user.JobDocumentIDs = append(user.JobDocumentIDs, jobID)
	return nil
}

// RemoveJobReference pulls jobID from the user's reference list
func (m *MockUserRepository) RemoveJobReference(userID, jobID primitive.ObjectID) error {
	m.Calls++
	user, ok := m.Users[userID]
	if !ok {
		return nil
	}
	kept := user.JobDocumentIDs[:0]
	for _, existing := range user.JobDocumentIDs {
		if existing != jobID {
			kept = append(kept, existing)
		}
	}
	user.JobDocumentIDs = kept
	return nil
}

// MockJobDataRepository is a mock implementation of domain.JobDataRepository
type MockJobDataRepository struct {
	Jobs  map[primitive.ObjectID]*domain.JobData
	Order []primitive.ObjectID
	Calls int
}

// NewMockJobDataRepository creates a new MockJobDataRepository
func NewMockJobDataRepository() *MockJobDataRepository {
	return &MockJobDataRepository{Jobs: make(map[primitive.ObjectID]*domain.JobData)}
}

// AddJob adds a job application to the mock repository (helper for tests)
func (m *MockJobDataRepository) AddJob(job *domain.JobData) {
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	m.Jobs[job.ID] = job
	m.Order = append(m.Order, job.ID)
}

// Create inserts a new job application with an assigned id
func (m *MockJobDataRepository) Create(job *domain.JobData) (*domain.JobData, error) {
	m.Calls++
	now := time.Now().UTC()
	created := *job
	created.ID = primitive.NewObjectID()
	created.CreatedAt = now
	created.UpdatedAt = now
	m.Jobs[created.ID] = &created
	m.Order = append(m.Order, created.ID)
	return &created, nil
}

// GetAll retrieves all job applications in insertion order
func (m *MockJobDataRepository) GetAll() ([]*domain.JobData, error) {
	m.Calls++
	result := make([]*domain.JobData, 0, len(m.Jobs))
	for _, id := range m.Order {
		if job, ok := m.Jobs[id]; ok {
			result = append(result, job)
		}
	}
	return result, nil
}

// GetByID retrieves a job application by id
func (m *MockJobDataRepository) GetByID(id primitive.ObjectID) (*domain.JobData, error) {
	m.Calls++
	if job, ok := m.Jobs[id]; ok {
		return job, nil
	}
	return nil, domain.ErrJobNotFound
}

// GetByIDs bulk-fetches the job applications matching the id list
func (m *MockJobDataRepository) GetByIDs(ids []primitive.ObjectID) ([]*domain.JobData, error) {
	m.Calls++
	result := []*domain.JobData{}
	for _, id := range ids {
		if job, ok := m.Jobs[id]; ok {
			result = append(result, job)
		}
	}
	return result, nil
}

// GetByUserID retrieves the job applications carrying the owner backlink
func (m *MockJobDataRepository) GetByUserID(userID primitive.ObjectID) ([]*domain.JobData, error) {
	m.Calls++
	result := []*domain.JobData{}
	for _, id := range m.Order {
		if job, ok := m.Jobs[id]; ok && job.UserID == userID {
			result = append(result, job)
		}
	}
	return result, nil
}

// UpdateFieldsByID merges the patch into the job application matching id
func (m *MockJobDataRepository) UpdateFieldsByID(id primitive.ObjectID, patch domain.JobDataPatch) error {
	m.Calls++
	job, ok := m.Jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if patch.JobTitle != nil {
		job.JobTitle = *patch.JobTitle
	}
	if patch.Company != nil {
		job.Company = *patch.Company
	}
	if patch.JobPostingID != nil {
		job.JobPostingID = *patch.JobPostingID
	}
	if patch.Salary != nil {
		job.Salary = patch.Salary
	}
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteByID removes the job application matching id; no-op when absent
func (m *MockJobDataRepository) DeleteByID(id primitive.ObjectID) error {
	m.Calls++
	delete(m.Jobs, id)
	return nil
}

// AddAttachment appends attachment metadata to the job application
func (m *MockJobDataRepository) AddAttachment(jobID primitive.ObjectID, att domain.Attachment) error {
	m.Calls++
	job, ok := m.Jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Attachments = append(job.Attachments, att)
	return nil
}

// RemoveAttachment pulls the attachment with the given id
func (m *MockJobDataRepository) RemoveAttachment(jobID primitive.ObjectID, attachmentID string) error {
	m.Calls++
	job, ok := m.Jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	kept := job.Attachments[:0]
	for _, att := range job.Attachments {
		if att.ID != attachmentID {
			kept = append(kept, att)
		}
	}
	job.Attachments = kept
	return nil
}

// MockAttachmentRepository is an in-memory implementation of
// storage.AttachmentRepository
type MockAttachmentRepository struct {
	Objects  map[string][]byte
	UploadFn func(objectKey string) error
}

// NewMockAttachmentRepository creates a new MockAttachmentRepository
func NewMockAttachmentRepository() *MockAttachmentRepository {
	return &MockAttachmentRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object bytes in memory
func (m *MockAttachmentRepository) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error {
	if m.UploadFn != nil {
		if err := m.UploadFn(objectKey); err != nil {
			return err
		}
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.Objects[objectKey] = buf
	return nil
}

// Delete removes the object from memory
func (m *MockAttachmentRepository) Delete(ctx context.Context, objectKey string) error {
	delete(m.Objects, objectKey)
	return nil
}

// GeneratePresignedURL returns a deterministic fake URL for the object
func (m *MockAttachmentRepository) GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if _, ok := m.Objects[objectKey]; !ok {
		return "", fmt.Errorf("object %s not found", objectKey)
	}
	return fmt.Sprintf("https://storage.example.com/%s?expires=%d", objectKey, int64(expiry.Seconds())), nil
}
