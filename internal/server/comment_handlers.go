package server

import (
	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/comments
// @Summary List comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param user query int false "Author ID"
// @Param post query int false "Post ID"
// @Param search query string false "Search author username and text"
// @Param ordering query string false "created_at, text; prefix with - for descending"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} Page
// @Router /comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	q := parseListQuery(c)
	authorID, err := queryID(c, "user")
	if err != nil {
		return nil
	}
	postID, err := queryID(c, "post")
	if err != nil {
		return nil
	}

	comments, count, err := s.comments.List(c.UserContext(), repository.CommentFilter{
		ListQuery: q,
		UserID:    authorID,
		PostID:    postID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, q, count, s.commentResponses(comments))
}

// CreateComment handles POST /api/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCommentInput true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req service.CreateCommentInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	comment, err := s.comments.Create(c.UserContext(), callerID(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.commentResponse(comment))
}

// GetComment handles GET /api/comments/:id
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} CommentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.comments.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.commentResponse(comment))
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Update a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body service.UpdateCommentInput true "Comment text"
// @Success 200 {object} CommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	return s.updateComment(c, false)
}

// PartialUpdateComment handles PATCH /api/comments/:id
// @Summary Partially update a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body service.UpdateCommentInput true "Comment text"
// @Success 200 {object} CommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [patch]
func (s *Server) PartialUpdateComment(c *fiber.Ctx) error {
	return s.updateComment(c, true)
}

func (s *Server) updateComment(c *fiber.Ctx, partial bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateCommentInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	req.Partial = partial

	comment, err := s.comments.Update(c.UserContext(), id, callerID(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.commentResponse(comment))
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.comments.Delete(c.UserContext(), id, callerID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
