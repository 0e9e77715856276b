package server

import (
	"io"

	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateUserRequest carries editable profile fields.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// ListUsers returns active, non-staff accounts
// @Summary List accounts
// @Tags users
// @Produce json
// @Param friends query bool false "Only accounts with an accepted friendship to the caller"
// @Param search query string false "Search username and email"
// @Param ordering query string false "created_at, username; prefix with - for descending"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} Page
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	q := parseListQuery(c)
	friends, err := queryBool(c, "friends")
	if err != nil {
		return nil
	}

	viewerID, _ := middleware.CallerID(c)
	users, count, err := s.accounts.List(c.UserContext(), repository.UserFilter{
		ListQuery:   q,
		ViewerID:    viewerID,
		FriendsOnly: friends != nil && *friends,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, q, count, s.userResponses(users))
}

// GetUser returns one visible account
// @Summary Get account
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.accounts.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// UpdateUser replaces the caller's username and email
// @Summary Update own account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	return s.updateUser(c, false)
}

// PartialUpdateUser changes only the supplied profile fields
// @Summary Partially update own account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [patch]
func (s *Server) PartialUpdateUser(c *fiber.Ctx) error {
	return s.updateUser(c, true)
}

func (s *Server) updateUser(c *fiber.Ctx, partial bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if !partial && req.Username == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username: this field is required"))
	}

	user, err := s.accounts.Update(c.UserContext(), callerID(c), id, service.UpdateAccountInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// SetPersonalImage uploads the caller's avatar
// @Summary Upload own personal image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param personal_image formData file true "Image file"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/personal-image [put]
func (s *Server) SetPersonalImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	upload, err := s.readFormFile(c, "personal_image")
	if err != nil {
		return nil
	}

	user, err := s.accounts.SetPersonalImage(c.UserContext(), callerID(c), id, service.AvatarUpload{
		Filename: upload.filename,
		Content:  upload.content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// DeleteUser removes the caller's account
// @Summary Delete own account
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.accounts.Delete(c.UserContext(), callerID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type formFile struct {
	filename    string
	contentType string
	content     []byte
}

// readFormFile reads a multipart file field. At most one byte past the upload
// limit is read so the services can report oversized files.
func (s *Server) readFormFile(c *fiber.Ctx, field string) (*formFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(field+": no file was submitted"))
		return nil, errResponseWritten
	}
	f, err := header.Open()
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(field+": the submitted file could not be read"))
		return nil, errResponseWritten
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, s.config.UploadMaxBytes()+1))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(field+": the submitted file could not be read"))
		return nil, errResponseWritten
	}
	return &formFile{
		filename:    header.Filename,
		contentType: header.Header.Get(fiber.HeaderContentType),
		content:     content,
	}, nil
}
