package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobData represents a single job application owned by one user. UserID is the
// backlink to the owner, set at creation and never reassigned.
type JobData struct {
	ID           primitive.ObjectID `json:"id"`
	UserID       primitive.ObjectID `json:"userId"`
	JobTitle     string             `json:"jobTitle"`
	Company      string             `json:"company"`
	JobPostingID string             `json:"jobPostingId"`
	Salary       *decimal.Decimal   `json:"salary,omitempty"`
	Attachments  []Attachment       `json:"attachments"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Attachment holds metadata for a file stored alongside a job application
// (resume, cover letter, posting screenshot). The bytes live in object
// storage under ObjectKey; ThumbnailKey is set for image uploads only.
type Attachment struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	ObjectKey    string    `json:"-"`
	ThumbnailKey string    `json:"-"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// JobDataPatch holds the optional fields of a partial job application update.
type JobDataPatch struct {
	JobTitle     *string
	Company      *string
	JobPostingID *string
	Salary       *decimal.Decimal
}

// IsEmpty reports whether the patch carries no fields.
func (p JobDataPatch) IsEmpty() bool {
	return p.JobTitle == nil && p.Company == nil && p.JobPostingID == nil && p.Salary == nil
}

// JobDataRepository defines the interface for job application persistence operations
type JobDataRepository interface {
	Create(job *JobData) (*JobData, error)
	GetAll() ([]*JobData, error)
	GetByID(id primitive.ObjectID) (*JobData, error)
	// GetByIDs is the bulk lookup for the reference-list association style.
	// An empty id list yields an empty result, never an error.
	GetByIDs(ids []primitive.ObjectID) ([]*JobData, error)
	GetByUserID(userID primitive.ObjectID) ([]*JobData, error)
	UpdateFieldsByID(id primitive.ObjectID, patch JobDataPatch) error
	DeleteByID(id primitive.ObjectID) error
	AddAttachment(jobID primitive.ObjectID, att Attachment) error
	RemoveAttachment(jobID primitive.ObjectID, attachmentID string) error
}
