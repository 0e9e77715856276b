package testutil

import (
	"testing"

	"socialnet/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated in-memory database with foreign keys
// enforced. A single connection is used so every query sees the same memory
// database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Post{},
		&models.Attachment{},
		&models.Comment{},
		&models.Like{},
	))
	return db
}

// TestPassword is the plain-text password of every fixture account.
const TestPassword = "Str0ngPass!"

var testPasswordHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// CreateUser inserts an active account with TestPassword. Options adjust the
// row before insert.
func CreateUser(t testing.TB, db *gorm.DB, username string, opts ...func(*models.User)) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: testPasswordHash,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, text string, draft bool) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author.ID, Text: text, IsDraft: draft}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateComment inserts a comment by author on post.
func CreateComment(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{UserID: author.ID, PostID: post.ID, Text: text}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateFriendship inserts a sender -> receiver edge with the given status.
func CreateFriendship(t testing.TB, db *gorm.DB, sender, receiver *models.User, status models.FriendshipStatus) *models.Friendship {
	t.Helper()
	f := &models.Friendship{SenderID: sender.ID, ReceiverID: receiver.ID, Status: status}
	require.NoError(t, db.Create(f).Error)
	return f
}

// Inactive marks a fixture account inactive.
func Inactive(u *models.User) { u.IsActive = false }

// Staff marks a fixture account as staff.
func Staff(u *models.User) { u.IsStaff = true }

// Superuser marks a fixture account as superuser.
func Superuser(u *models.User) { u.IsSuperuser = true }
