package service

import (
	"errors"

	"socialnet/internal/models"
)

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
