package seed

import (
	"fmt"
	"log"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with a connected social graph and activity.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder returns a Seeder writing through db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// Seed runs a full seeding pass with opts.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	s := NewSeeder(db, opts)
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	posts, err := s.SeedEngagement(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	log.Printf("Database seeding completed: %d users, %d posts", len(users), len(posts))
	return nil
}

// ClearAll removes every seeded row, children before parents.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		return nil
	}
	log.Println("Clearing existing data...")
	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{
			&models.Like{},
			&models.Comment{},
			&models.Attachment{},
			&models.Post{},
			&models.Friendship{},
			&models.User{},
		} {
			if err := all.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedSocialMesh creates n accounts and links each to a few others. Most
// links are accepted friendships, the rest stay waiting. Each ordered pair is
// written at most once and never in both directions.
func (s *Seeder) SeedSocialMesh(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	if len(users) < 2 {
		return users, nil
	}

	linked := make(map[[2]uint]bool)
	for _, u := range users {
		links := s.factory.rnd.Intn(4) + 1
		for j := 0; j < links; j++ {
			other := users[s.factory.rnd.Intn(len(users))]
			if other.ID == u.ID || linked[[2]uint{u.ID, other.ID}] || linked[[2]uint{other.ID, u.ID}] {
				continue
			}
			linked[[2]uint{u.ID, other.ID}] = true

			status := models.FriendshipStatusAccepted
			if s.factory.rnd.Intn(4) == 0 {
				status = models.FriendshipStatusWaiting
			}
			if err := s.factory.CreateFriendship(u, other, status); err != nil {
				return nil, fmt.Errorf("create friendship: %w", err)
			}
		}
	}
	log.Printf("%d users and %d friendships created", len(users), len(linked))
	return users, nil
}

// SeedEngagement writes numPosts posts spread over users, then comments and
// likes on the published ones. A user likes a post at most once.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 || numPosts <= 0 {
		return nil, nil
	}
	rnd := s.factory.rnd

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		posts = append(posts, s.factory.BuildPost(users[rnd.Intn(len(users))]))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}

	comments, likes := 0, 0
	for _, post := range posts {
		if post.IsDraft {
			continue
		}
		for i := rnd.Intn(4); i > 0; i-- {
			if _, err := s.factory.CreateComment(users[rnd.Intn(len(users))], post); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			comments++
		}
		for _, idx := range rnd.Perm(len(users))[:rnd.Intn(len(users)+1)] {
			if err := s.factory.CreateLike(users[idx], post); err != nil {
				return nil, fmt.Errorf("create like: %w", err)
			}
			likes++
		}
	}
	log.Printf("%d posts, %d comments and %d likes created", len(posts), comments, likes)
	return posts, nil
}
