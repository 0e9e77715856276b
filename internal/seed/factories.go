// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"socialnet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of every seeded account.
const DefaultPassword = "password123"

// Options tunes what the seeder writes.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// MaxDays bounds how far back generated timestamps reach.
	MaxDays int
	// SkipBcrypt stores a cheap hash instead of a default-cost one.
	SkipBcrypt bool
	// DryRun builds entities with synthetic IDs and writes nothing.
	DryRun bool
	// Seed makes generated content reproducible when non-zero.
	Seed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	rnd    *rand.Rand
	faker  *gofakeit.Faker
	hash   string
	nextID uint
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}

	cost := bcrypt.DefaultCost
	if opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		panic(fmt.Sprintf("seed: hash default password: %v", err))
	}

	return &Factory{
		db:     db,
		opts:   opts,
		rnd:    rand.New(rand.NewSource(seed)), //nolint:gosec // seeding only
		faker:  gofakeit.New(seed),
		hash:   string(hash),
		nextID: 1000,
	}
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rnd.Intn(f.opts.MaxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(value any, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		return nil
	}
	return f.db.Create(value).Error
}

// CreateUser constructs and persists an active account. Overrides modify the
// generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	user := &models.User{
		Username: strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.rnd.Intn(9000)+1000)),
		Email:    strings.ToLower(fmt.Sprintf("%s.%s@%s", first, last, f.faker.DomainName())),
		Password: f.hash,
		IsActive: true,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.persist(user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs an unsaved post by user with a spread-out created_at.
// Roughly one in ten posts is a draft.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:    user.ID,
		Text:      f.faker.Paragraph(1, f.rnd.Intn(3)+1, 12, " "),
		IsDraft:   f.rnd.Intn(10) == 0,
		CreatedAt: f.pastTime(),
	}
	post.UpdatedAt = post.CreatedAt
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a post for user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.persist(post, func(id uint) { post.ID = id }); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists posts in a single statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}

// CreateComment persists a comment by user on post, dated after the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	created := post.CreatedAt.Add(time.Duration(f.rnd.Intn(72)+1) * time.Hour)
	if created.After(time.Now()) {
		created = time.Now()
	}
	comment := &models.Comment{
		UserID:    user.ID,
		PostID:    post.ID,
		Text:      f.faker.Sentence(f.rnd.Intn(12) + 3),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, override := range overrides {
		override(comment)
	}

	if err := f.persist(comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike records that user likes post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.persist(like, func(id uint) { like.ID = id })
}

// CreateFriendship persists a sender -> receiver edge with the given status.
func (f *Factory) CreateFriendship(sender, receiver *models.User, status models.FriendshipStatus) error {
	edge := &models.Friendship{SenderID: sender.ID, ReceiverID: receiver.ID, Status: status}
	return f.persist(edge, func(id uint) { edge.ID = id })
}
