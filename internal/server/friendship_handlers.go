package server

import (
	"socialnet/internal/models"
	"socialnet/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// FriendshipRequest names the account a request is sent to.
type FriendshipRequest struct {
	Receiver uint `json:"receiver"`
}

// ListFriendships returns requests received by the caller
// @Summary List received friendship requests
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Param status query string false "waiting or accepted"
// @Param ordering query string false "created_at; prefix with - for descending"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} Page
// @Failure 400 {object} models.ErrorResponse
// @Router /friendships [get]
func (s *Server) ListFriendships(c *fiber.Ctx) error {
	q := parseListQuery(c)
	friendships, count, err := s.friendships.List(c.UserContext(), repository.FriendshipFilter{
		ListQuery:  q,
		ReceiverID: callerID(c),
		Status:     models.FriendshipStatus(c.Query("status")),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, q, count, s.friendshipResponses(friendships))
}

// CreateFriendship sends a friendship request from the caller
// @Summary Send a friendship request
// @Tags friendships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FriendshipRequest true "Receiver"
// @Success 201 {object} FriendshipResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /friendships [post]
func (s *Server) CreateFriendship(c *fiber.Ctx) error {
	var req FriendshipRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	friendship, err := s.friendships.Request(c.UserContext(), callerID(c), req.Receiver)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.friendshipResponse(friendship))
}

// GetFriendship returns a request received by the caller
// @Summary Get a received friendship request
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Friendship ID"
// @Success 200 {object} FriendshipResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /friendships/{id} [get]
func (s *Server) GetFriendship(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	friendship, err := s.friendships.Get(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.friendshipResponse(friendship))
}

// AcceptFriendship accepts a waiting request
// @Summary Accept a friendship request
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Friendship ID"
// @Success 200 {object} DetailsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /friendships/{id}/accept-friendship [post]
func (s *Server) AcceptFriendship(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.friendships.Accept(c.UserContext(), id, callerID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(DetailsResponse{Details: "friendship request has been accepted"})
}

// RejectFriendship removes a waiting request
// @Summary Reject a friendship request
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Friendship ID"
// @Success 200 {object} DetailsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /friendships/{id}/reject-friendship [post]
func (s *Server) RejectFriendship(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.friendships.Reject(c.UserContext(), id, callerID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(DetailsResponse{Details: "friendship request has been rejected"})
}

// DeleteFriendship removes a request received by the caller in any state
// @Summary Delete a received friendship
// @Tags friendships
// @Security BearerAuth
// @Param id path int true "Friendship ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /friendships/{id} [delete]
func (s *Server) DeleteFriendship(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.friendships.Delete(c.UserContext(), id, callerID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
