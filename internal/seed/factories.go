// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"shadospace/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// Options control seeding behavior.
type Options struct {
	// SkipBcrypt stores plaintext passwords, speeding up large seeds in dev.
	SkipBcrypt bool
	// MaxDays bounds the created_at spread for generated posts.
	MaxDays int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		// #nosec G404: acceptable for seeding
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Name:     gofakeit.Name(),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

var seedStatuses = []models.PostStatus{
	models.PostStatusPublished,
	models.PostStatusPublished,
	models.PostStatusPublished,
	models.PostStatusDraft,
	models.PostStatusArchived,
	models.PostStatusScheduled,
	models.PostStatusInReview,
}

var seedCategories = []models.PostCategory{
	models.PostCategoryTutorial,
	models.PostCategoryProject,
	models.PostCategoryPractice,
}

// CreatePost constructs and persists a sample post for the given user,
// with a weighted status spread (mostly published) and a realistic
// created_at scatter.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:    gofakeit.Sentence(5),
		Content:  gofakeit.Paragraph(2, 4, 8, "\n\n"),
		ImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		Status:   seedStatuses[f.rng.Intn(len(seedStatuses))],
		Category: seedCategories[f.rng.Intn(len(seedCategories))],
		UserID:   user.ID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	post.ViewCount = int64(f.rng.Intn(2500))

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample comment on the provided
// post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Create(like).Error
}
