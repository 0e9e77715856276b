package server

import (
	"strconv"
	"strings"

	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListAttachments handles GET /api/attachments
// @Summary List attachments
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param post query int false "Post ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} Page
// @Router /attachments [get]
func (s *Server) ListAttachments(c *fiber.Ctx) error {
	q := parseListQuery(c)
	postID, err := queryID(c, "post")
	if err != nil {
		return nil
	}

	attachments, count, err := s.attachments.List(c.UserContext(), repository.AttachmentFilter{
		ListQuery: q,
		PostID:    postID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, q, count, s.attachmentResponses(attachments))
}

// CreateAttachment handles POST /api/attachments
// @Summary Attach a file to one of the caller's posts
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param post formData int true "Post ID"
// @Param file formData file true "File"
// @Success 201 {object} AttachmentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /attachments [post]
func (s *Server) CreateAttachment(c *fiber.Ctx) error {
	var postID uint
	if raw := strings.TrimSpace(c.FormValue("post")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("post: incorrect type, expected pk value"))
		}
		postID = uint(id)
	}
	upload, err := s.readFormFile(c, "file")
	if err != nil {
		return nil
	}

	attachment, err := s.attachments.Create(c.UserContext(), callerID(c), service.AttachmentUpload{
		PostID:      postID,
		Filename:    upload.filename,
		ContentType: upload.contentType,
		Content:     upload.content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.attachmentResponse(attachment))
}

// GetAttachment handles GET /api/attachments/:id
// @Summary Get an attachment
// @Tags attachments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attachment ID"
// @Success 200 {object} AttachmentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /attachments/{id} [get]
func (s *Server) GetAttachment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	attachment, err := s.attachments.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.attachmentResponse(attachment))
}
