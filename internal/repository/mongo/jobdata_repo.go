package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// jobDataDoc is the BSON shape of a job application document. Salary is kept
// as a string so the exact decimal survives the round trip.
type jobDataDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId"`
	JobTitle     string             `bson:"jobTitle,omitempty"`
	Company      string             `bson:"companyName,omitempty"`
	JobPostingID string             `bson:"jobPostingId,omitempty"`
	Salary       *string            `bson:"salary,omitempty"`
	Attachments  []attachmentDoc    `bson:"attachments,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type attachmentDoc struct {
	ID           string    `bson:"id"`
	FileName     string    `bson:"fileName"`
	ContentType  string    `bson:"contentType"`
	Size         int64     `bson:"size"`
	ObjectKey    string    `bson:"objectKey"`
	ThumbnailKey string    `bson:"thumbnailKey,omitempty"`
	UploadedAt   time.Time `bson:"uploadedAt"`
}

// JobDataRepository implements domain.JobDataRepository using MongoDB
type JobDataRepository struct {
	jobs *mongo.Collection
}

// NewJobDataRepository creates a new JobDataRepository
func NewJobDataRepository(db *mongo.Database, collection string) *JobDataRepository {
	return &JobDataRepository{jobs: db.Collection(collection)}
}

// Create inserts a new job application. Referential integrity against the
// owning user is the caller's responsibility.
func (r *JobDataRepository) Create(job *domain.JobData) (*domain.JobData, error) {
	ctx := context.Background()
	now := time.Now().UTC()
	doc, err := jobDocFromDomain(job)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NilObjectID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	res, err := r.jobs.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return jobDocToDomain(doc)
}

// GetAll retrieves every job application in the collection
func (r *JobDataRepository) GetAll() ([]*domain.JobData, error) {
	return r.findMany(bson.M{})
}

// GetByID retrieves a job application by its unique identifier
func (r *JobDataRepository) GetByID(id primitive.ObjectID) (*domain.JobData, error) {
	ctx := context.Background()
	var doc jobDataDoc
	if err := r.jobs.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return jobDocToDomain(doc)
}

// GetByIDs bulk-fetches the documents matching the given id list. An empty
// list yields an empty slice without touching the store.
func (r *JobDataRepository) GetByIDs(ids []primitive.ObjectID) ([]*domain.JobData, error) {
	if len(ids) == 0 {
		return []*domain.JobData{}, nil
	}
	return r.findMany(bson.M{"_id": bson.M{"$in": ids}})
}

// GetByUserID retrieves all job applications carrying the given owner backlink
func (r *JobDataRepository) GetByUserID(userID primitive.ObjectID) ([]*domain.JobData, error) {
	return r.findMany(bson.M{"userId": userID})
}

// UpdateFieldsByID merges the non-nil patch fields into the document. The
// owner backlink is not part of the patch and can never be reassigned here.
func (r *JobDataRepository) UpdateFieldsByID(id primitive.ObjectID, patch domain.JobDataPatch) error {
	ctx := context.Background()
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.JobTitle != nil {
		set["jobTitle"] = *patch.JobTitle
	}
	if patch.Company != nil {
		set["companyName"] = *patch.Company
	}
	if patch.JobPostingID != nil {
		set["jobPostingId"] = *patch.JobPostingID
	}
	if patch.Salary != nil {
		set["salary"] = patch.Salary.String()
	}
	res, err := r.jobs.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// DeleteByID removes the job application matching id; no-op when nothing matches
func (r *JobDataRepository) DeleteByID(id primitive.ObjectID) error {
	ctx := context.Background()
	_, err := r.jobs.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AddAttachment appends attachment metadata to the document
func (r *JobDataRepository) AddAttachment(jobID primitive.ObjectID, att domain.Attachment) error {
	ctx := context.Background()
	res, err := r.jobs.UpdateOne(ctx,
		bson.M{"_id": jobID},
		bson.M{
			"$push": bson.M{"attachments": attachmentDocFromDomain(att)},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// RemoveAttachment pulls the attachment with the given id from the document
func (r *JobDataRepository) RemoveAttachment(jobID primitive.ObjectID, attachmentID string) error {
	ctx := context.Background()
	res, err := r.jobs.UpdateOne(ctx,
		bson.M{"_id": jobID},
		bson.M{
			"$pull": bson.M{"attachments": bson.M{"id": attachmentID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *JobDataRepository) findMany(filter bson.M) ([]*domain.JobData, error) {
	ctx := context.Background()
	cur, err := r.jobs.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []jobDataDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]*domain.JobData, len(docs))
	for i, d := range docs {
		job, err := jobDocToDomain(d)
		if err != nil {
			return nil, err
		}
		result[i] = job
	}
	return result, nil
}

func jobDocToDomain(d jobDataDoc) (*domain.JobData, error) {
	job := &domain.JobData{
		ID:           d.ID,
		UserID:       d.UserID,
		JobTitle:     d.JobTitle,
		Company:      d.Company,
		JobPostingID: d.JobPostingID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Salary != nil {
		salary, err := decimal.NewFromString(*d.Salary)
		if err != nil {
			return nil, fmt.Errorf("invalid stored salary %q: %w", *d.Salary, err)
		}
		job.Salary = &salary
	}
	job.Attachments = make([]domain.Attachment, len(d.Attachments))
	for i, a := range d.Attachments {
		job.Attachments[i] = domain.Attachment{
			ID:           a.ID,
			FileName:     a.FileName,
			ContentType:  a.ContentType,
			Size:         a.Size,
			ObjectKey:    a.ObjectKey,
			ThumbnailKey: a.ThumbnailKey,
			UploadedAt:   a.UploadedAt,
		}
	}
	return job, nil
}

func jobDocFromDomain(job *domain.JobData) (jobDataDoc, error) {
	doc := jobDataDoc{
		ID:           job.ID,
		UserID:       job.UserID,
		JobTitle:     job.JobTitle,
		Company:      job.Company,
		JobPostingID: job.JobPostingID,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
	if job.Salary != nil {
		s := job.Salary.String()
		doc.Salary = &s
	}
	for _, a := range job.Attachments {
		doc.Attachments = append(doc.Attachments, attachmentDocFromDomain(a))
	}
	return doc, nil
}

func attachmentDocFromDomain(a domain.Attachment) attachmentDoc {
	return attachmentDoc{
		ID:           a.ID,
		FileName:     a.FileName,
		ContentType:  a.ContentType,
		Size:         a.Size,
		ObjectKey:    a.ObjectKey,
		ThumbnailKey: a.ThumbnailKey,
		UploadedAt:   a.UploadedAt,
	}
}
