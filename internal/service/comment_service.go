package service

import (
	"context"
	"strings"

	"shadospace/internal/featureflags"
	"shadospace/internal/models"
	"shadospace/internal/repository"
)

const maxCommentLength = 10_000

// CommentService owns comment rules. Comments are append-only.
type CommentService struct {
	comments *repository.CommentRepository
	posts    *repository.PostRepository
	flags    *featureflags.Manager
}

// NewCommentService returns a CommentService.
func NewCommentService(comments *repository.CommentRepository, posts *repository.PostRepository, flags *featureflags.Manager) *CommentService {
	return &CommentService{comments: comments, posts: posts, flags: flags}
}

// AddComment validates and persists a comment on a post. With the
// strict comment policy active, only published posts accept comments.
func (s *CommentService) AddComment(ctx context.Context, postID, userID uint, content string) (*models.Comment, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, models.NewValidationError("comment must not be empty")
	}
	if len(trimmed) > maxCommentLength {
		return nil, models.NewValidationError("comment must be at most 10000 characters")
	}

	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if s.strictPolicy() && post.Status != models.PostStatusPublished {
		return nil, models.NewInvalidStateError("comments are only allowed on published posts")
	}

	comment := &models.Comment{
		Content: trimmed,
		PostID:  postID,
		UserID:  userID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) strictPolicy() bool {
	if s.flags == nil {
		return true
	}
	return s.flags.Enabled(featureflags.StrictCommentPolicy)
}

// ListComments returns a post's comments oldest first. The post must
// exist.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}
