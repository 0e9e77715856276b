package validation

import (
	"errors"
	"testing"

	"socialnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"optional_email"`
	Password string `json:"new_password1" validate:"required,password"`
	Status   string `json:"status" validate:"omitempty,oneof=waiting accepted"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      signup
		wantMsg string
	}{
		{"valid", signup{Username: "user_0001", Email: "u@example.com", Password: "SecurePass12"}, ""},
		{"missing username", signup{Password: "SecurePass12"}, "username: this field is required"},
		{"bad username", signup{Username: "a b c", Password: "SecurePass12"}, "username: username can only contain letters, numbers and @/./+/-/_ characters"},
		{"bad email", signup{Username: "user_0001", Email: "nope", Password: "SecurePass12"}, "email: invalid email format"},
		{"weak password", signup{Username: "user_0001", Password: "short"}, "new_password1: password must be at least 8 characters long"},
		{"bad enum", signup{Username: "user_0001", Password: "SecurePass12", Status: "rejected"}, "status: must be one of [waiting accepted]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}
