package server

import (
	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param user query int false "Author ID"
// @Param is_draft query bool false "Draft flag"
// @Param is_liked query bool false "Only posts liked by the caller"
// @Param search query string false "Search author username and text"
// @Param ordering query string false "created_at, text; prefix with - for descending"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} Page
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	q := parseListQuery(c)
	authorID, err := queryID(c, "user")
	if err != nil {
		return nil
	}
	isDraft, err := queryBool(c, "is_draft")
	if err != nil {
		return nil
	}
	isLiked, err := queryBool(c, "is_liked")
	if err != nil {
		return nil
	}

	posts, count, err := s.posts.List(c.UserContext(), repository.PostFilter{
		ListQuery: q,
		ViewerID:  callerID(c),
		UserID:    authorID,
		IsDraft:   isDraft,
		LikedOnly: isLiked != nil && *isLiked,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, q, count, s.postResponses(posts))
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	post, err := s.posts.Create(c.UserContext(), callerID(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.postResponse(post))
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.Get(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.postResponse(post))
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Post fields"
// @Success 200 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	return s.updatePost(c, false)
}

// PartialUpdatePost handles PATCH /api/posts/:id
// @Summary Partially update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Post fields"
// @Success 200 {object} PostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) PartialUpdatePost(c *fiber.Ctx) error {
	return s.updatePost(c, true)
}

func (s *Server) updatePost(c *fiber.Ctx, partial bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdatePostInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	req.Partial = partial

	post, err := s.posts.Update(c.UserContext(), id, callerID(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.postResponse(post))
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.posts.Delete(c.UserContext(), id, callerID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeDislikePost handles POST /api/posts/:id/like-dislike
// @Summary Toggle the caller's like on a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} DetailsResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like-dislike [post]
func (s *Server) LikeDislikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.reactions.Toggle(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if result == repository.LikeAdded {
		return c.JSON(DetailsResponse{Details: "post liked"})
	}
	return c.JSON(DetailsResponse{Details: "post disliked"})
}
