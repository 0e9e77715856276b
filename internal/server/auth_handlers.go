package server

import (
	"log/slog"

	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles user registration
// @Summary Register a new account
// @Description Create a new account and return an access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration data"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	data, err := s.accounts.Register(c.UserContext(), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "account registered",
		slog.Uint64("user_id", uint64(data.User.ID)))
	return c.Status(fiber.StatusCreated).JSON(loginResponse(data))
}

// Login handles user login
// @Summary Log in
// @Description Exchange username and password for an access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	data, err := s.accounts.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(loginResponse(data))
}

// Logout revokes the bearer token of the current request.
// @Summary Log out
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DetailsResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.CallerClaims(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication credentials were not provided"))
	}
	if err := s.tokens.Revoke(c.UserContext(), claims); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(DetailsResponse{Details: "logged out"})
}
