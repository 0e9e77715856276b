package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/service"
	"socialnet/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetDetails(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, filter repository.PostFilter) ([]models.Post, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) UpdateOwned(ctx context.Context, id, authorID uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, authorID, fields)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLikeRepository is a mock of the LikeRepository interface
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Toggle(ctx context.Context, userID, postID uint) (repository.ToggleResult, error) {
	args := m.Called(ctx, userID, postID)
	return args.Get(0).(repository.ToggleResult), args.Error(1)
}

// MockPublisher records realtime events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishUser(ctx context.Context, userID uint, payload string) error {
	args := m.Called(ctx, userID, payload)
	return args.Error(0)
}

func TestLikeDislikePost_Handler(t *testing.T) {
	posts := new(MockPostRepository)
	likes := new(MockLikeRepository)
	publisher := new(MockPublisher)
	s := &Server{reactions: service.NewReactionService(likes, posts, publisher)}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(2))
		return c.Next()
	})
	app.Post("/posts/:id/like-dislike", s.LikeDislikePost)

	posts.On("GetVisible", mock.Anything, uint(10), uint(2)).Return(&models.Post{ID: 10, UserID: 1}, nil)
	posts.On("GetVisible", mock.Anything, uint(11), uint(2)).Return(nil, models.NewNotFoundError("Post", 11))
	likes.On("Toggle", mock.Anything, uint(2), uint(10)).Return(repository.LikeAdded, nil).Once()
	likes.On("Toggle", mock.Anything, uint(2), uint(10)).Return(repository.LikeRemoved, nil).Once()
	publisher.On("PublishUser", mock.Anything, uint(1), mock.AnythingOfType("string")).Return(nil).Once()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedDetail string
	}{
		{"Like", "/posts/10/like-dislike", http.StatusOK, "post liked"},
		{"Dislike", "/posts/10/like-dislike", http.StatusOK, "post disliked"},
		{"Missing Post", "/posts/11/like-dislike", http.StatusNotFound, ""},
		{"Bad ID", "/posts/x/like-dislike", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedDetail != "" {
				assert.Equal(t, tt.expectedDetail, decode[DetailsResponse](t, resp).Details)
			}
		})
	}

	posts.AssertExpectations(t)
	likes.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPostLikeScenario(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/users", registerBody("alice"), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := decode[LoginResponse](t, resp).Token

	resp = env.do(http.MethodPost, "/api/posts", service.CreatePostInput{Text: "hello world"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decode[PostResponse](t, resp)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, "alice", post.User.Username)
	assert.Zero(t, post.LikesCount)
	assert.NotNil(t, post.PostAttachments)

	likePath := fmt.Sprintf("/api/posts/%d/like-dislike", post.ID)
	postPath := fmt.Sprintf("/api/posts/%d", post.ID)

	resp = env.do(http.MethodPost, likePath, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "post liked", decode[DetailsResponse](t, resp).Details)

	resp = env.do(http.MethodGet, postPath, nil, token)
	got := decode[PostResponse](t, resp)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.IsLiked)

	resp = env.do(http.MethodPost, likePath, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "post disliked", decode[DetailsResponse](t, resp).Details)

	resp = env.do(http.MethodGet, postPath, nil, token)
	got = decode[PostResponse](t, resp)
	assert.Zero(t, got.LikesCount)
	assert.False(t, got.IsLiked)
}

func TestCreatePost_Validation(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")

	resp := env.do(http.MethodPost, "/api/posts", service.CreatePostInput{Text: "   "}, env.token(alice))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, resp).Code)
}

func TestDraftPosts(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	draft := testutil.CreatePost(t, env.db, alice, "draft", true)
	testutil.CreatePost(t, env.db, alice, "published", false)
	aliceToken := env.token(alice)

	resp := env.do(http.MethodGet, "/api/posts", nil, env.token(bob))
	page := decode[pageOf[PostResponse]](t, resp)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "published", page.Results[0].Text)

	resp = env.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", draft.ID), nil, env.token(bob))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Drafts cannot be edited or liked.
	resp = env.do(http.MethodPatch, fmt.Sprintf("/api/posts/%d", draft.ID), map[string]string{"text": "edit"}, aliceToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/like-dislike", draft.ID), nil, env.token(bob))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The author can still delete a draft.
	resp = env.do(http.MethodDelete, fmt.Sprintf("/api/posts/%d", draft.ID), nil, aliceToken)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestUpdatePost(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	post := testutil.CreatePost(t, env.db, alice, "original", false)
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	resp := env.do(http.MethodPatch, path, map[string]string{"text": "hijack"}, env.token(bob))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodPut, path, map[string]bool{"is_draft": false}, env.token(alice))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodPut, path, map[string]string{"text": "edited"}, env.token(alice))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "edited", decode[PostResponse](t, resp).Text)

	resp = env.do(http.MethodPatch, path, map[string]bool{"is_draft": true}, env.token(alice))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[PostResponse](t, resp)
	assert.True(t, updated.IsDraft)
	assert.Equal(t, "edited", updated.Text)
}

func TestDeletePost_AuthorOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	admin := testutil.CreateUser(t, env.db, "admin", testutil.Staff)
	post := testutil.CreatePost(t, env.db, alice, "bye", false)
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	resp := env.do(http.MethodDelete, path, nil, env.token(bob))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(http.MethodDelete, path, nil, env.token(admin))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(http.MethodGet, path, nil, env.token(alice))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPosts_Filters(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	liked := testutil.CreatePost(t, env.db, alice, "first apple", false)
	testutil.CreatePost(t, env.db, alice, "second pear", false)
	testutil.CreatePost(t, env.db, bob, "bob's apple", false)
	token := env.token(bob)

	resp := env.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/like-dislike", liked.ID), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	count := func(query string) int64 {
		t.Helper()
		resp := env.do(http.MethodGet, "/api/posts"+query, nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode, query)
		return decode[pageOf[PostResponse]](t, resp).Count
	}

	assert.Equal(t, int64(3), count(""))
	assert.Equal(t, int64(2), count(fmt.Sprintf("?user=%d", alice.ID)))
	assert.Equal(t, int64(1), count("?is_liked=true"))
	assert.Equal(t, int64(3), count("?is_liked=false"))
	assert.Equal(t, int64(2), count("?search=apple"))
	assert.Equal(t, int64(1), count("?search=bob"))
	assert.Equal(t, int64(3), count("?is_draft=false"))

	resp = env.do(http.MethodGet, "/api/posts?user=abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/posts?ordering=text", nil, token)
	page := decode[pageOf[PostResponse]](t, resp)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "bob's apple", page.Results[0].Text)
}
