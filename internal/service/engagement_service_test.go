package service

import (
	"testing"
	"time"

	"shadospace/internal/featureflags"
	"shadospace/internal/models"
	"shadospace/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementService_RecordView_CountsEveryLoad(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewPostRepository(db, nil)
	svc := NewEngagementService(repo, nil, nil, 0)
	owner := createTestUser(t, db, "owner")
	post := createTestPost(t, db, owner.ID, models.PostStatusPublished)

	for i := int64(1); i <= 5; i++ {
		count, err := svc.RecordView(testCtx(), post.ID, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	got, err := repo.GetByID(testCtx(), post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ViewCount)
}

func TestEngagementService_RecordView_MissingPost(t *testing.T) {
	db := newTestDB(t)
	svc := NewEngagementService(repository.NewPostRepository(db, nil), nil, nil, 0)

	_, err := svc.RecordView(testCtx(), 9999, "ip:10.0.0.1")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestEngagementService_RecordView_DedupWindow(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	flags := featureflags.NewManager()
	flags.Set(featureflags.ViewDedup, true)

	repo := repository.NewPostRepository(db, nil)
	svc := NewEngagementService(repo, rdb, flags, time.Minute)
	owner := createTestUser(t, db, "owner")
	post := createTestPost(t, db, owner.ID, models.PostStatusPublished)

	count, err := svc.RecordView(testCtx(), post.ID, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Same visitor inside the window: counter unchanged.
	count, err = svc.RecordView(testCtx(), post.ID, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Different visitor still counts.
	count, err = svc.RecordView(testCtx(), post.ID, "ip:10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Window expiry re-arms the visitor.
	mr.FastForward(2 * time.Minute)
	count, err = svc.RecordView(testCtx(), post.ID, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestEngagementService_ToggleLike_TwiceIsIdentity(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewPostRepository(db, nil)
	svc := NewEngagementService(repo, nil, nil, 0)
	owner := createTestUser(t, db, "owner")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, owner.ID, models.PostStatusPublished)

	res, err := svc.ToggleLike(testCtx(), post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikesCount)

	res, err = svc.ToggleLike(testCtx(), post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), res.LikesCount)

	// A third toggle relikes cleanly.
	res, err = svc.ToggleLike(testCtx(), post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikesCount)
}

func TestEngagementService_ToggleLike_AnonymousUnauthorized(t *testing.T) {
	db := newTestDB(t)
	svc := NewEngagementService(repository.NewPostRepository(db, nil), nil, nil, 0)

	_, err := svc.ToggleLike(testCtx(), 1, 0)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
}

func TestEngagementService_ToggleLike_MissingPost(t *testing.T) {
	db := newTestDB(t)
	svc := NewEngagementService(repository.NewPostRepository(db, nil), nil, nil, 0)
	fan := createTestUser(t, db, "fan")

	_, err := svc.ToggleLike(testCtx(), 9999, fan.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestEngagementService_LikeStatus_AnonymousIsFalse(t *testing.T) {
	db := newTestDB(t)
	svc := NewEngagementService(repository.NewPostRepository(db, nil), nil, nil, 0)

	liked, err := svc.LikeStatus(testCtx(), 1, 0)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestEngagementService_LikesVisibleOnPostReads(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewPostRepository(db, nil)
	svc := NewEngagementService(repo, nil, nil, 0)
	owner := createTestUser(t, db, "owner")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, owner.ID, models.PostStatusPublished)

	_, err := svc.ToggleLike(testCtx(), post.ID, fan.ID)
	require.NoError(t, err)

	// The fan sees liked=true, the owner liked=false, both see the count.
	asFan, err := repo.GetByID(testCtx(), post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, asFan.Liked)
	assert.Equal(t, 1, asFan.LikesCount)

	asOwner, err := repo.GetByID(testCtx(), post.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, asOwner.Liked)
	assert.Equal(t, 1, asOwner.LikesCount)
}
