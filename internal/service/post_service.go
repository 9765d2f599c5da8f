// Package service implements the business rules on top of the
// repositories: ownership gates, input validation and engagement
// semantics.
package service

import (
	"context"
	"strings"

	"shadospace/internal/models"
	"shadospace/internal/repository"
)

const (
	maxTitleLength   = 200
	maxContentLength = 50_000
)

// PostService owns post lifecycle rules.
type PostService struct {
	posts *repository.PostRepository
}

// NewPostService returns a PostService backed by the given repository.
func NewPostService(posts *repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// CreatePostInput carries the fields a client may set on creation.
type CreatePostInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

// UpdatePostInput is a partial patch. Nil fields are left untouched.
type UpdatePostInput struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
	Status   *string `json:"status"`
	Category *string `json:"category"`
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("title must not be empty")
	}
	if len(title) > maxTitleLength {
		return models.NewValidationError("title must be at most 200 characters")
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content must not be empty")
	}
	if len(content) > maxContentLength {
		return models.NewValidationError("content must be at most 50000 characters")
	}
	return nil
}

// Create validates the input and persists a new post owned by userID.
func (s *PostService) Create(ctx context.Context, userID uint, input CreatePostInput) (*models.Post, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateContent(input.Content); err != nil {
		return nil, err
	}

	status := models.PostStatus(input.Status)
	if input.Status == "" {
		status = models.PostStatusDraft
	}
	if !status.Valid() {
		return nil, models.NewValidationError("invalid post status")
	}

	category := models.PostCategory(input.Category)
	if input.Category == "" {
		category = models.PostCategoryTutorial
	}
	if !category.Valid() {
		return nil, models.NewValidationError("invalid post category")
	}

	post := &models.Post{
		Title:    input.Title,
		Content:  input.Content,
		ImageURL: input.ImageURL,
		Status:   status,
		Category: category,
		UserID:   userID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.posts.GetByID(ctx, post.ID, userID)
}

// Get returns a single post with engagement counts for the viewer.
func (s *PostService) Get(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id, currentUserID)
}

// List returns posts matching the filter for the viewer.
func (s *PostService) List(ctx context.Context, filter repository.ListFilter, currentUserID uint) ([]models.Post, error) {
	if filter.Status != "" && !models.PostStatus(filter.Status).Valid() {
		return nil, models.NewValidationError("invalid post status")
	}
	if filter.Category != "" && !models.PostCategory(filter.Category).Valid() {
		return nil, models.NewValidationError("invalid post category")
	}
	return s.posts.List(ctx, filter, currentUserID)
}

// ListByUser returns a user's posts for the viewer. Only the author sees
// their own non-published posts; everyone else gets published only.
func (s *PostService) ListByUser(ctx context.Context, userID, currentUserID uint) ([]models.Post, error) {
	publishedOnly := currentUserID != userID
	return s.posts.GetByUserID(ctx, userID, currentUserID, publishedOnly)
}

// Update applies a partial patch after re-reading the persisted owner.
// The ownership check always runs against the stored row, never a
// client-supplied owner field.
func (s *PostService) Update(ctx context.Context, id, actingUserID uint, input UpdatePostInput) (*models.Post, error) {
	if actingUserID == 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}

	post, err := s.posts.GetByID(ctx, id, actingUserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actingUserID {
		return nil, models.NewForbiddenError("you do not own this post")
	}

	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
		post.Title = *input.Title
	}
	if input.Content != nil {
		if err := validateContent(*input.Content); err != nil {
			return nil, err
		}
		post.Content = *input.Content
	}
	if input.ImageURL != nil {
		post.ImageURL = *input.ImageURL
	}
	if input.Status != nil {
		status := models.PostStatus(*input.Status)
		if !status.Valid() {
			return nil, models.NewValidationError("invalid post status")
		}
		post.Status = status
	}
	if input.Category != nil {
		category := models.PostCategory(*input.Category)
		if !category.Valid() {
			return nil, models.NewValidationError("invalid post category")
		}
		post.Category = category
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id, actingUserID)
}

// Delete soft-deletes a post after the ownership gate.
func (s *PostService) Delete(ctx context.Context, id, actingUserID uint) error {
	if actingUserID == 0 {
		return models.NewUnauthorizedError("authentication required")
	}

	post, err := s.posts.GetByID(ctx, id, actingUserID)
	if err != nil {
		return err
	}
	if post.UserID != actingUserID {
		return models.NewForbiddenError("you do not own this post")
	}

	return s.posts.Delete(ctx, id)
}
