package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"github.com/jatrackr/jatrackr-backend/internal/repository/storage"
)

const (
	MaxAttachmentSize = 10 * 1024 * 1024 // 10MB
	ThumbnailWidth    = 320
	JPEGQuality       = 85
	PresignExpiry     = 15 * time.Minute
)

var (
	ErrAttachmentTooLarge    = errors.New("file too large. Maximum size is 10MB")
	ErrUnsupportedAttachment = errors.New("unsupported format. Supported: PDF, DOC, DOCX, TXT, JPEG, PNG, WebP")
	ErrInvalidImageData      = errors.New("invalid image data")
	ErrStorageNotConfigured  = errors.New("attachment storage not configured")
)

// AllowedAttachmentExtensions maps extensions to content types
var AllowedAttachmentExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// thumbnailExtensions are the image formats a thumbnail variant is generated
// for. WebP uploads are stored as-is.
var thumbnailExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AttachmentService handles job-application attachment processing and storage
type AttachmentService struct {
	storage storage.AttachmentRepository
	jobRepo domain.JobDataRepository
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(storage storage.AttachmentRepository, jobRepo domain.JobDataRepository) *AttachmentService {
	return &AttachmentService{storage: storage, jobRepo: jobRepo}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *AttachmentService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Upload validates and stores an attachment for a job application, records
// its metadata on the document and returns it. Image uploads additionally get
// a JPEG thumbnail variant.
func (s *AttachmentService) Upload(ctx context.Context, job *domain.JobData, fileName string, data []byte) (*domain.Attachment, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageNotConfigured
	}
	if len(data) > MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := AllowedAttachmentExtensions[ext]
	if !ok {
		return nil, ErrUnsupportedAttachment
	}

	att := domain.Attachment{
		ID:          uuid.New().String(),
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}
	att.ObjectKey = fmt.Sprintf("jobdata/%s/%s/original%s", job.ID.Hex(), att.ID, ext)

	var thumb []byte
	if thumbnailExtensions[ext] {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, ErrInvalidImageData
		}
		if img.Bounds().Dx() > ThumbnailWidth {
			img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
		}
		thumb = buf.Bytes()
		att.ThumbnailKey = fmt.Sprintf("jobdata/%s/%s/thumb.jpg", job.ID.Hex(), att.ID)
	}

	if err := s.storage.Upload(ctx, att.ObjectKey, bytes.NewReader(data), contentType, att.Size); err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}
	if thumb != nil {
		if err := s.storage.Upload(ctx, att.ThumbnailKey, bytes.NewReader(thumb), "image/jpeg", int64(len(thumb))); err != nil {
			_ = s.storage.Delete(ctx, att.ObjectKey)
			return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
		}
	}

	if err := s.jobRepo.AddAttachment(job.ID, att); err != nil {
		// Metadata write failed; release the orphaned objects.
		_ = s.storage.Delete(ctx, att.ObjectKey)
		if att.ThumbnailKey != "" {
			_ = s.storage.Delete(ctx, att.ThumbnailKey)
		}
		return nil, err
	}

	return &att, nil
}

// PresignedURL returns a temporary download URL for an attachment
func (s *AttachmentService) PresignedURL(ctx context.Context, job *domain.JobData, attachmentID string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrStorageNotConfigured
	}
	att, ok := findAttachment(job, attachmentID)
	if !ok {
		return "", domain.ErrAttachmentNotFound
	}
	return s.storage.GeneratePresignedURL(ctx, att.ObjectKey, PresignExpiry)
}

// Delete removes an attachment's objects and its metadata entry
func (s *AttachmentService) Delete(ctx context.Context, job *domain.JobData, attachmentID string) error {
	if !s.IsEnabled() {
		return ErrStorageNotConfigured
	}
	att, ok := findAttachment(job, attachmentID)
	if !ok {
		return domain.ErrAttachmentNotFound
	}

	if err := s.storage.Delete(ctx, att.ObjectKey); err != nil {
		return err
	}
	if att.ThumbnailKey != "" {
		// Best effort; the original is already gone.
		_ = s.storage.Delete(ctx, att.ThumbnailKey)
	}

	return s.jobRepo.RemoveAttachment(job.ID, attachmentID)
}

// DeleteAll releases every stored object for a job application. Used after
// the application itself has been deleted, so failures are best effort.
func (s *AttachmentService) DeleteAll(ctx context.Context, job *domain.JobData) {
	if !s.IsEnabled() {
		return
	}
	for _, att := range job.Attachments {
		_ = s.storage.Delete(ctx, att.ObjectKey)
		if att.ThumbnailKey != "" {
			_ = s.storage.Delete(ctx, att.ThumbnailKey)
		}
	}
}

func findAttachment(job *domain.JobData, attachmentID string) (domain.Attachment, bool) {
	for _, att := range job.Attachments {
		if att.ID == attachmentID {
			return att, true
		}
	}
	return domain.Attachment{}, false
}
