package service

import (
	"strings"
	"testing"
	"time"

	"shadospace/internal/models"
	"shadospace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_Create_DefaultsToDraft(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	user := createTestUser(t, db, "alice")

	post, err := svc.Create(testCtx(), user.ID, CreatePostInput{
		Title:   "Hello",
		Content: "World",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Equal(t, models.PostCategoryTutorial, post.Category)
	assert.Equal(t, user.ID, post.UserID)
	assert.Equal(t, int64(0), post.ViewCount)
	assert.Zero(t, post.LikesCount)
}

func TestPostService_Create_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	user := createTestUser(t, db, "alice")

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{"empty title", CreatePostInput{Title: "  ", Content: "x"}},
		{"empty content", CreatePostInput{Title: "t", Content: ""}},
		{"title too long", CreatePostInput{Title: strings.Repeat("a", 201), Content: "x"}},
		{"content too long", CreatePostInput{Title: "t", Content: strings.Repeat("a", 50_001)}},
		{"bad status", CreatePostInput{Title: "t", Content: "x", Status: "launched"}},
		{"bad category", CreatePostInput{Title: "t", Content: "x", Category: "gardening"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(testCtx(), user.ID, tt.input)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestPostService_Update_NonOwnerForbiddenAndUnmodified(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	owner := createTestUser(t, db, "owner")
	intruder := createTestUser(t, db, "intruder")
	post := createTestPost(t, db, owner.ID, models.PostStatusPublished)

	newTitle := "Hijacked"
	_, err := svc.Update(testCtx(), post.ID, intruder.ID, UpdatePostInput{Title: &newTitle})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	// The stored row is untouched.
	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "A Post", stored.Title)
}

func TestPostService_Update_OwnerPatchRefreshesTimestamp(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	owner := createTestUser(t, db, "owner")
	post := createTestPost(t, db, owner.ID, models.PostStatusDraft)

	before := post.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	newTitle := "Better Title"
	newStatus := "published"
	updated, err := svc.Update(testCtx(), post.ID, owner.ID, UpdatePostInput{
		Title:  &newTitle,
		Status: &newStatus,
	})
	require.NoError(t, err)
	assert.Equal(t, "Better Title", updated.Title)
	assert.Equal(t, models.PostStatusPublished, updated.Status)
	// Unpatched fields survive.
	assert.Equal(t, "Some content", updated.Content)
	assert.True(t, updated.UpdatedAt.After(before))
}

func TestPostService_Update_MissingPostIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	user := createTestUser(t, db, "alice")

	newTitle := "x"
	_, err := svc.Update(testCtx(), 9999, user.ID, UpdatePostInput{Title: &newTitle})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostService_Delete_ThenGetIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	owner := createTestUser(t, db, "owner")
	post := createTestPost(t, db, owner.ID, models.PostStatusPublished)

	require.NoError(t, svc.Delete(testCtx(), post.ID, owner.ID))

	_, err := svc.Get(testCtx(), post.ID, owner.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostService_Delete_NonOwnerForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	owner := createTestUser(t, db, "owner")
	intruder := createTestUser(t, db, "intruder")
	post := createTestPost(t, db, owner.ID, models.PostStatusPublished)

	err := svc.Delete(testCtx(), post.ID, intruder.ID)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	// Still there.
	_, err = svc.Get(testCtx(), post.ID, owner.ID)
	assert.NoError(t, err)
}

func TestPostService_List_DefaultsToPublished(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	owner := createTestUser(t, db, "owner")
	createTestPost(t, db, owner.ID, models.PostStatusPublished)
	createTestPost(t, db, owner.ID, models.PostStatusDraft)

	posts, err := svc.List(testCtx(), repository.ListFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostStatusPublished, posts[0].Status)
}

func TestPostService_List_RejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))

	_, err := svc.List(testCtx(), repository.ListFilter{Status: "bogus"}, 0)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestPostService_ListByUser_OwnerSeesAllStatuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	owner := createTestUser(t, db, "owner")
	createTestPost(t, db, owner.ID, models.PostStatusPublished)
	createTestPost(t, db, owner.ID, models.PostStatusDraft)

	posts, err := svc.ListByUser(testCtx(), owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestPostService_ListByUser_OthersSeePublishedOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewPostService(repository.NewPostRepository(db, nil))
	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	createTestPost(t, db, owner.ID, models.PostStatusPublished)
	createTestPost(t, db, owner.ID, models.PostStatusDraft)
	createTestPost(t, db, owner.ID, models.PostStatusInReview)

	// Another signed-in user gets published posts only.
	posts, err := svc.ListByUser(testCtx(), owner.ID, stranger.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostStatusPublished, posts[0].Status)

	// So does an anonymous viewer.
	posts, err = svc.ListByUser(testCtx(), owner.ID, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostStatusPublished, posts[0].Status)
}
