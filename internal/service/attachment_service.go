package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"
	"socialnet/internal/storage"
)

// AttachmentUpload is a file submitted for one post.
type AttachmentUpload struct {
	PostID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// AttachmentService stores post attachments in the blob store.
type AttachmentService struct {
	attachments    repository.AttachmentRepository
	posts          repository.PostRepository
	blobs          storage.BlobStore
	maxUploadBytes int64
}

// NewAttachmentService returns a new AttachmentService.
func NewAttachmentService(attachments repository.AttachmentRepository, posts repository.PostRepository, blobs storage.BlobStore, maxUploadBytes int64) *AttachmentService {
	return &AttachmentService{
		attachments:    attachments,
		posts:          posts,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create uploads a file and binds it to a post owned by callerID. Posts of
// other accounts are reported as not found.
func (s *AttachmentService) Create(ctx context.Context, callerID uint, in AttachmentUpload) (*models.Attachment, error) {
	if in.PostID == 0 {
		return nil, models.NewValidationError("post: this field is required")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("file: the submitted file is empty")
	}
	if s.maxUploadBytes > 0 && int64(len(in.Content)) > s.maxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("file: file too large (max %d bytes)", s.maxUploadBytes))
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	key, err := s.blobs.Upload(ctx, storage.Object{
		Prefix:      fmt.Sprintf("attachments/%d", in.PostID),
		Filename:    in.Filename,
		ContentType: storage.ContentType(in.ContentType, in.Filename),
		Size:        int64(len(in.Content)),
		Body:        bytes.NewReader(in.Content),
		Metadata:    map[string]string{"original-filename": in.Filename},
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.UploadedBytes.WithLabelValues("attachment").Add(float64(len(in.Content)))

	attachment := &models.Attachment{PostID: in.PostID, File: key}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove orphaned attachment",
				slog.String("key", key), slog.String("error", delErr.Error()))
		}
		return nil, err
	}
	return attachment, nil
}

// List returns attachments matching filter.
func (s *AttachmentService) List(ctx context.Context, filter repository.AttachmentFilter) ([]models.Attachment, int64, error) {
	return s.attachments.List(ctx, filter)
}

// Get returns one attachment.
func (s *AttachmentService) Get(ctx context.Context, id uint) (*models.Attachment, error) {
	return s.attachments.GetByID(ctx, id)
}
