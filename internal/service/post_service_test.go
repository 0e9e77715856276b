package service

import (
	"context"
	"strings"
	"testing"

	"socialnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var created *models.Post
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 4
		created = p
		return nil
	}
	svc := NewPostService(posts, adminCheck())

	post, err := svc.Create(ctx, 2, CreatePostInput{Text: "  hello  ", IsDraft: true})
	require.NoError(t, err)
	assert.Equal(t, uint(4), post.ID)
	assert.Equal(t, "hello", created.Text)
	assert.Equal(t, uint(2), created.UserID)
	assert.True(t, created.IsDraft)

	_, err = svc.Create(ctx, 2, CreatePostInput{Text: "   "})
	requireCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, 2, CreatePostInput{Text: strings.Repeat("x", maxTextLen+1)})
	requireCode(t, err, models.CodeValidation)
}

func TestPostService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotFields map[string]interface{}
	posts := noopPostRepo()
	posts.updateOwnedFn = func(_ context.Context, _, _ uint, fields map[string]interface{}) error {
		gotFields = fields
		return nil
	}
	svc := NewPostService(posts, adminCheck())

	text := "edited"
	_, err := svc.Update(ctx, 1, 1, UpdatePostInput{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"text": "edited"}, gotFields)

	_, err = svc.Update(ctx, 1, 1, UpdatePostInput{})
	requireCode(t, err, models.CodeValidation)

	draft := true
	_, err = svc.Update(ctx, 1, 1, UpdatePostInput{IsDraft: &draft, Partial: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"is_draft": true}, gotFields)
}

func TestPostService_Update_OutOfScope(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo()
	posts.updateOwnedFn = func(_ context.Context, id, _ uint, _ map[string]interface{}) error {
		return models.NewNotFoundError("Post", id)
	}
	svc := NewPostService(posts, adminCheck())

	text := "edited"
	_, err := svc.Update(context.Background(), 1, 9, UpdatePostInput{Text: &text})
	requireCode(t, err, models.CodeNotFound)
}

func TestPostService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		callerID uint
		wantCode string
	}{
		{"author", 1, ""},
		{"admin", 50, ""},
		{"stranger", 2, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			posts := noopPostRepo()
			posts.deleteFn = func(_ context.Context, _ uint) error {
				deleted = true
				return nil
			}
			svc := NewPostService(posts, adminCheck(50))

			err := svc.Delete(ctx, 8, tt.callerID)
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				assert.False(t, deleted)
				return
			}
			require.NoError(t, err)
			assert.True(t, deleted)
		})
	}
}

func TestAdminCheckFromUsers(t *testing.T) {
	t.Parallel()
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		switch id {
		case 1:
			return &models.User{ID: 1, Role: models.RoleAdmin}, nil
		case 2:
			return &models.User{ID: 2, Role: models.RoleNormal}, nil
		default:
			return nil, models.NewNotFoundError("User", id)
		}
	}
	check := AdminCheckFromUsers(users)

	for id, want := range map[uint]bool{1: true, 2: false, 3: false} {
		got, err := check(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, got, id)
	}
}
