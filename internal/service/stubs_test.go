package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"socialnet/internal/models"
	"socialnet/internal/repository"

	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	getVisibleFn       func(context.Context, uint) (*models.User, error)
	listFn             func(context.Context, repository.UserFilter) ([]models.User, int64, error)
	updateProfileFn    func(context.Context, uint, map[string]interface{}) (*models.User, error)
	setPersonalImageFn func(context.Context, uint, string) error
	hasPostsFn         func(context.Context, uint) (bool, error)
	deleteFn           func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetVisible(ctx context.Context, id uint) (*models.User, error) {
	return s.getVisibleFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	return s.updateProfileFn(ctx, id, fields)
}
func (s *userRepoStub) SetPersonalImage(ctx context.Context, id uint, key string) error {
	return s.setPersonalImageFn(ctx, id, key)
}
func (s *userRepoStub) HasPosts(ctx context.Context, id uint) (bool, error) {
	return s.hasPostsFn(ctx, id)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleNormal, IsActive: true}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", username)
		},
		getVisibleFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		listFn: func(_ context.Context, _ repository.UserFilter) ([]models.User, int64, error) {
			return nil, 0, nil
		},
		updateProfileFn: func(_ context.Context, id uint, _ map[string]interface{}) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		setPersonalImageFn: func(_ context.Context, _ uint, _ string) error { return nil },
		hasPostsFn:         func(_ context.Context, _ uint) (bool, error) { return false, nil },
		deleteFn:           func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	getDetailsFn  func(context.Context, uint, uint) (*models.Post, error)
	getVisibleFn  func(context.Context, uint, uint) (*models.Post, error)
	listFn        func(context.Context, repository.PostFilter) ([]models.Post, int64, error)
	updateOwnedFn func(context.Context, uint, uint, map[string]interface{}) error
	deleteFn      func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetDetails(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getDetailsFn(ctx, id, viewerID)
}
func (s *postRepoStub) GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getVisibleFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter) ([]models.Post, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *postRepoStub) UpdateOwned(ctx context.Context, id, authorID uint, fields map[string]interface{}) error {
	return s.updateOwnedFn(ctx, id, authorID, fields)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		getDetailsFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		getVisibleFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		listFn: func(_ context.Context, _ repository.PostFilter) ([]models.Post, int64, error) {
			return nil, 0, nil
		},
		updateOwnedFn: func(_ context.Context, _, _ uint, _ map[string]interface{}) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// friendshipRepoStub is a stub for repository.FriendshipRepository.
type friendshipRepoStub struct {
	createFn       func(context.Context, *models.Friendship) error
	getReceivedFn  func(context.Context, uint, uint) (*models.Friendship, error)
	listReceivedFn func(context.Context, repository.FriendshipFilter) ([]models.Friendship, int64, error)
	acceptFn       func(context.Context, uint, uint) (*models.Friendship, error)
	rejectFn       func(context.Context, uint, uint) (*models.Friendship, error)
	deleteFn       func(context.Context, uint, uint) (*models.Friendship, error)
}

func (s *friendshipRepoStub) Create(ctx context.Context, f *models.Friendship) error {
	return s.createFn(ctx, f)
}
func (s *friendshipRepoStub) GetReceived(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	return s.getReceivedFn(ctx, id, receiverID)
}
func (s *friendshipRepoStub) ListReceived(ctx context.Context, filter repository.FriendshipFilter) ([]models.Friendship, int64, error) {
	return s.listReceivedFn(ctx, filter)
}
func (s *friendshipRepoStub) Accept(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	return s.acceptFn(ctx, id, receiverID)
}
func (s *friendshipRepoStub) Reject(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	return s.rejectFn(ctx, id, receiverID)
}
func (s *friendshipRepoStub) Delete(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	return s.deleteFn(ctx, id, receiverID)
}

func noopFriendshipRepo() *friendshipRepoStub {
	found := func(_ context.Context, id, receiverID uint) (*models.Friendship, error) {
		return &models.Friendship{ID: id, SenderID: 7, ReceiverID: receiverID, Status: models.FriendshipStatusWaiting}, nil
	}
	return &friendshipRepoStub{
		createFn: func(_ context.Context, f *models.Friendship) error {
			f.ID = 1
			return nil
		},
		getReceivedFn: found,
		listReceivedFn: func(_ context.Context, _ repository.FriendshipFilter) ([]models.Friendship, int64, error) {
			return nil, 0, nil
		},
		acceptFn: func(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
			f, _ := found(ctx, id, receiverID)
			f.Status = models.FriendshipStatusAccepted
			return f, nil
		},
		rejectFn: found,
		deleteFn: found,
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listFn        func(context.Context, repository.CommentFilter) ([]models.Comment, int64, error)
	updateOwnedFn func(context.Context, uint, uint, string) (*models.Comment, error)
	deleteFn      func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) List(ctx context.Context, filter repository.CommentFilter) ([]models.Comment, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *commentRepoStub) UpdateOwned(ctx context.Context, id, authorID uint, text string) (*models.Comment, error) {
	return s.updateOwnedFn(ctx, id, authorID, text)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1}, nil
		},
		listFn: func(_ context.Context, _ repository.CommentFilter) ([]models.Comment, int64, error) {
			return nil, 0, nil
		},
		updateOwnedFn: func(_ context.Context, id, authorID uint, text string) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: authorID, Text: text}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// attachmentRepoStub is a stub for repository.AttachmentRepository.
type attachmentRepoStub struct {
	createFn  func(context.Context, *models.Attachment) error
	getByIDFn func(context.Context, uint) (*models.Attachment, error)
	listFn    func(context.Context, repository.AttachmentFilter) ([]models.Attachment, int64, error)
}

func (s *attachmentRepoStub) Create(ctx context.Context, a *models.Attachment) error {
	return s.createFn(ctx, a)
}
func (s *attachmentRepoStub) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *attachmentRepoStub) List(ctx context.Context, filter repository.AttachmentFilter) ([]models.Attachment, int64, error) {
	return s.listFn(ctx, filter)
}

func noopAttachmentRepo() *attachmentRepoStub {
	return &attachmentRepoStub{
		createFn: func(_ context.Context, a *models.Attachment) error {
			a.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Attachment, error) {
			return &models.Attachment{ID: id}, nil
		},
		listFn: func(_ context.Context, _ repository.AttachmentFilter) ([]models.Attachment, int64, error) {
			return nil, 0, nil
		},
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn func(context.Context, uint, uint) (repository.ToggleResult, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, userID, postID uint) (repository.ToggleResult, error) {
	return s.toggleFn(ctx, userID, postID)
}

// recordingPublisher captures realtime events by target account.
type recordingPublisher struct {
	mu     sync.Mutex
	events map[uint][]string
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[uint][]string)
	}
	p.events[userID] = append(p.events[userID], payload)
	return nil
}

func (p *recordingPublisher) count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[userID])
}

type tokenIssuerStub struct{}

func (tokenIssuerStub) Issue(userID uint, username string) (string, error) {
	return "token-" + username, nil
}

func adminCheck(admins ...uint) AdminCheck {
	return func(_ context.Context, userID uint) (bool, error) {
		for _, id := range admins {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}
