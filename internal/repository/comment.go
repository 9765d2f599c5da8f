package repository

import (
	"context"
	"errors"
	"fmt"

	"shadospace/internal/models"
	"shadospace/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository handles comment persistence. Comments are
// append-only; there is no update path.
type CommentRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewCommentRepository returns a repository bound to the given database.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

// Create inserts a comment and loads its author for the response.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}
	if err := r.db.WithContext(ctx).Preload("User").First(comment, comment.ID).Error; err != nil {
		return fmt.Errorf("loading created comment %d: %w", comment.ID, err)
	}
	return nil
}

// GetByID fetches a comment with its author.
func (r *CommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("comment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching comment %d: %w", id, err)
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first, so a thread reads
// top to bottom.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	defer r.metrics.TrackQuery("select", "comments")()
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// CountByPost returns the number of comments on a post.
func (r *CommentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting comments for post %d: %w", postID, err)
	}
	return count, nil
}
