package seed

import (
	"fmt"
	"log"

	"shadospace/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with a realistic blogging mesh: users,
// posts across statuses, comment threads and like graphs.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, Options{})}
}

// NewSeederWithOptions creates a Seeder with explicit options.
func NewSeederWithOptions(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded data. Hard deletes, including soft-deleted
// rows, so repeated seed runs start clean.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, table := range []string{"likes", "comments", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates numUsers fake users.
func (s *Seeder) SeedUsers(numUsers int) ([]*models.User, error) {
	log.Printf("Creating %d users...", numUsers)
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts spreads numPosts across the given users.
func (s *Seeder) SeedPosts(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to attach posts to")
	}
	log.Printf("Creating %d posts...", numPosts)
	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("creating post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// SeedEngagement scatters comments and likes over published posts.
// Likes go through the factory, so the unique (user, post) constraint
// naturally deduplicates repeat picks.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	log.Println("Creating comments and likes...")
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}

		numComments := s.factory.rng.Intn(6)
		for i := 0; i < numComments; i++ {
			commenter := users[s.factory.rng.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("commenting on post %d: %w", post.ID, err)
			}
		}

		numLikes := s.factory.rng.Intn(len(users) + 1)
		for i := 0; i < numLikes; i++ {
			fan := users[s.factory.rng.Intn(len(users))]
			if err := s.factory.CreateLike(fan, post); err != nil {
				// Duplicate picks hit the unique index; skip them.
				continue
			}
		}
	}
	return nil
}
