package service

import (
	"context"
	"time"

	"shadospace/internal/cache"
	"shadospace/internal/featureflags"
	"shadospace/internal/models"
	"shadospace/internal/observability"
	"shadospace/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// EngagementService owns views and likes.
type EngagementService struct {
	posts       *repository.PostRepository
	rdb         *redis.Client
	flags       *featureflags.Manager
	dedupWindow time.Duration
}

// NewEngagementService returns an EngagementService. rdb may be nil,
// which disables view dedup regardless of configuration.
func NewEngagementService(posts *repository.PostRepository, rdb *redis.Client, flags *featureflags.Manager, dedupWindow time.Duration) *EngagementService {
	return &EngagementService{posts: posts, rdb: rdb, flags: flags, dedupWindow: dedupWindow}
}

// ToggleResult is the authoritative like state after a toggle. Clients
// reconcile against this rather than their local flip.
type ToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// RecordView increments a post's view counter and returns the new
// value. Every page load counts unless the dedup window is active for
// this visitor, in which case repeat views inside the window return the
// current counter unchanged.
func (s *EngagementService) RecordView(ctx context.Context, postID uint, visitorKey string) (int64, error) {
	span, ctx := observability.NewSpan(ctx, "engagement.record_view")
	defer span.End()
	span.AddAttributes(attribute.Int64("post.id", int64(postID)))

	if s.dedupActive(visitorKey) {
		if !cache.MarkViewed(ctx, s.rdb, postID, visitorKey, s.dedupWindow) {
			observability.ViewsRecorded.WithLabelValues("deduped").Inc()
			span.AddAttributes(attribute.String("view.outcome", "deduped"))
			post, err := s.posts.GetByID(ctx, postID, 0)
			if err != nil {
				span.SetError(err)
				return 0, err
			}
			return post.ViewCount, nil
		}
	}

	count, err := s.posts.IncrementViewCount(ctx, postID)
	if err != nil {
		span.SetError(err)
		return 0, err
	}
	observability.ViewsRecorded.WithLabelValues("counted").Inc()
	span.AddAttributes(attribute.String("view.outcome", "counted"))
	return count, nil
}

func (s *EngagementService) dedupActive(visitorKey string) bool {
	return s.rdb != nil && s.dedupWindow > 0 && s.flags != nil &&
		s.flags.EnabledFor(featureflags.ViewDedup, visitorKey)
}

// LikeStatus reports whether userID has liked the post. Anonymous
// callers always get false; that is a normal answer, not an error.
func (s *EngagementService) LikeStatus(ctx context.Context, postID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.posts.IsLiked(ctx, postID, userID)
}

// LikesCount returns the number of likes on a post.
func (s *EngagementService) LikesCount(ctx context.Context, postID uint) (int64, error) {
	return s.posts.CountLikes(ctx, postID)
}

// ToggleLike flips the caller's like on a post and returns the
// resulting server-side state.
func (s *EngagementService) ToggleLike(ctx context.Context, postID, userID uint) (*ToggleResult, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}

	span, ctx := observability.NewSpan(ctx, "engagement.toggle_like")
	defer span.End()
	span.AddAttributes(
		attribute.Int64("post.id", int64(postID)),
		attribute.Int64("user.id", int64(userID)),
	)

	// The existence check doubles as a NotFound gate.
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	liked, err := s.posts.IsLiked(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		err = s.posts.Unlike(ctx, postID, userID)
		observability.LikesToggled.WithLabelValues("unliked").Inc()
	} else {
		err = s.posts.Like(ctx, postID, userID)
		observability.LikesToggled.WithLabelValues("liked").Inc()
	}
	if err != nil {
		return nil, err
	}

	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Liked: !liked, LikesCount: count}, nil
}
