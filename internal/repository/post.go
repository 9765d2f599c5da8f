package repository

import (
	"context"
	"errors"
	"fmt"

	"shadospace/internal/cache"
	"shadospace/internal/models"
	"shadospace/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ListFilter narrows the post listing. Zero values mean "no filter";
// Status defaults to published for the public feed.
type ListFilter struct {
	Search   string
	Category string
	Status   string
	Limit    int
	Offset   int
}

// PostRepository handles post persistence plus the likes table, which
// only exists to serve post engagement.
type PostRepository struct {
	db      *gorm.DB
	rdb     *redis.Client
	metrics *observability.DatabaseMetrics
}

// NewPostRepository returns a repository bound to the given database and
// cache. The cache client may be nil.
func NewPostRepository(db *gorm.DB, rdb *redis.Client) *PostRepository {
	return &PostRepository{db: db, rdb: rdb, metrics: observability.NewDatabaseMetrics(db)}
}

// withEngagement attaches the computed likes_count, comments_count and
// liked columns to a post query. currentUserID 0 means anonymous and
// always yields liked=false.
func (r *PostRepository) withEngagement(ctx context.Context, currentUserID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Select(`posts.*,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND likes.deleted_at IS NULL) AS likes_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count,
			(SELECT COUNT(*) > 0 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ? AND likes.deleted_at IS NULL) AS liked`,
			currentUserID)
}

// Create inserts a new post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

// GetByID fetches a post with author and engagement counts. Anonymous
// reads go through the cache; authenticated reads skip it because the
// liked column is viewer-specific.
func (r *PostRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	load := func() (*models.Post, error) {
		defer r.metrics.TrackQuery("select", "posts")()
		var post models.Post
		err := r.withEngagement(ctx, currentUserID).
			Preload("User").
			Where("posts.id = ?", id).
			First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		if err != nil {
			return nil, fmt.Errorf("fetching post %d: %w", id, err)
		}
		return &post, nil
	}

	if currentUserID != 0 {
		return load()
	}
	return cache.Aside(ctx, r.rdb, cache.PostKey(id), cache.PostTTL, load)
}

// List returns posts matching the filter, newest first, with author and
// engagement counts.
func (r *PostRepository) List(ctx context.Context, filter ListFilter, currentUserID uint) ([]models.Post, error) {
	defer r.metrics.TrackQuery("select", "posts")()
	q := r.withEngagement(ctx, currentUserID).Preload("User")

	status := filter.Status
	if status == "" {
		status = string(models.PostStatusPublished)
	}
	q = q.Where("posts.status = ?", status)

	if filter.Category != "" {
		q = q.Where("posts.category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("posts.title ILIKE ? OR posts.content ILIKE ?", pattern, pattern)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var posts []models.Post
	err := q.Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetByUserID returns an author's posts, newest first. With publishedOnly
// set, non-published statuses are filtered out; the author's own dashboard
// view passes false to see every status.
func (r *PostRepository) GetByUserID(ctx context.Context, userID, currentUserID uint, publishedOnly bool) ([]models.Post, error) {
	q := r.withEngagement(ctx, currentUserID).
		Preload("User").
		Where("posts.user_id = ?", userID)
	if publishedOnly {
		q = q.Where("posts.status = ?", models.PostStatusPublished)
	}

	var posts []models.Post
	err := q.Order("posts.created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts for user %d: %w", userID, err)
	}
	return posts, nil
}

// Update writes the editable columns and invalidates the cache entry.
// view_count is excluded so an edit carrying a stale read never rewinds
// views recorded concurrently.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":     post.Title,
			"content":   post.Content,
			"image_url": post.ImageURL,
			"status":    post.Status,
			"category":  post.Category,
		})
	if res.Error != nil {
		return fmt.Errorf("updating post %d: %w", post.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", post.ID)
	}
	cache.InvalidatePost(ctx, r.rdb, post.ID)
	return nil
}

// Delete soft-deletes a post and invalidates its cache entry.
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting post %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", id)
	}
	cache.InvalidatePost(ctx, r.rdb, id)
	return nil
}

// IncrementViewCount atomically bumps the view counter and returns the
// new value.
func (r *PostRepository) IncrementViewCount(ctx context.Context, id uint) (int64, error) {
	defer r.metrics.TrackQuery("update", "posts")()
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("incrementing view count for post %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, models.NewNotFoundError("post", id)
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Pluck("view_count", &count).Error
	if err != nil {
		return 0, fmt.Errorf("reading view count for post %d: %w", id, err)
	}

	cache.InvalidatePost(ctx, r.rdb, id)
	return count, nil
}

// IsLiked reports whether the user has liked the post.
func (r *PostRepository) IsLiked(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking like for post %d: %w", postID, err)
	}
	return count > 0, nil
}

// Like records a like. The insert is idempotent so double submits and
// races collapse into a single row.
func (r *PostRepository) Like(ctx context.Context, postID, userID uint) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	).Error
	if err != nil {
		return fmt.Errorf("liking post %d: %w", postID, err)
	}
	cache.InvalidatePost(ctx, r.rdb, postID)
	return nil
}

// Unlike removes a like if present. The delete is hard so a later
// re-like does not collide with a tombstone on the unique index.
func (r *PostRepository) Unlike(ctx context.Context, postID, userID uint) error {
	err := r.db.WithContext(ctx).Unscoped().
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		return fmt.Errorf("unliking post %d: %w", postID, err)
	}
	cache.InvalidatePost(ctx, r.rdb, postID)
	return nil
}

// CountLikes returns the number of likes on a post.
func (r *PostRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting likes for post %d: %w", postID, err)
	}
	return count, nil
}

// GetLikedPostIDs returns the IDs of posts the user has liked.
func (r *PostRepository) GetLikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing liked posts for user %d: %w", userID, err)
	}
	return ids, nil
}
