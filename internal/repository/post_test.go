package repository

import (
	"context"
	"regexp"
	"testing"

	"shadospace/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)
	ctx := context.Background()

	post := &models.Post{Title: "Test Post", Content: "Content", UserID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)
	ctx := context.Background()

	tests := []struct {
		name          string
		postID        uint
		currentUserID uint
		mockBehavior  func()
		expectedTitle string
		expectedError bool
	}{
		{
			name:          "Success with engagement columns",
			postID:        1,
			currentUserID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*,`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id", "likes_count", "comments_count", "liked"}).
						AddRow(1, "Post 1", 10, 3, 5, true))

				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL`)).
					WithArgs(10).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "user10"))
			},
			expectedTitle: "Post 1",
		},
		{
			name:          "Not Found",
			postID:        42,
			currentUserID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*,`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			post, err := repo.GetByID(ctx, tt.postID, tt.currentUserID)

			if tt.expectedError {
				require.Error(t, err)
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, models.CodeNotFound, appErr.Code)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedTitle, post.Title)
				assert.Equal(t, 3, post.LikesCount)
				assert.Equal(t, 5, post.CommentsCount)
				assert.True(t, post.Liked)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_List_DefaultsToPublished(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectQuery(`(?s)SELECT posts\..+posts\.status = \$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id", "status"}).
			AddRow(1, "First", 10, "published").
			AddRow(2, "Second", 10, "published"))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "user10"))

	posts, err := repo.List(context.Background(), ListFilter{}, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Update_SkipsViewCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	// Only the editable columns appear in the SET list; an edit carrying
	// a stale read must never write view_count.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "category"=$1,"content"=$2,"image_url"=$3,"status"=$4,"title"=$5,"updated_at"=$6 WHERE id = $7`)).
		WithArgs("tutorial", "Body", "", "published", "Edited", sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &models.Post{
		ID:        1,
		Title:     "Edited",
		Content:   "Body",
		Status:    models.PostStatusPublished,
		Category:  models.PostCategoryTutorial,
		ViewCount: 99,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Update_MissingRowIsNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &models.Post{ID: 404, Title: "t", Content: "c"})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_IncrementViewCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"=view_count + 1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "view_count" FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}).AddRow(8))

	count, err := repo.IncrementViewCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_IncrementViewCount_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"=view_count + 1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := repo.IncrementViewCount(context.Background(), 404)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Like_IsIdempotentInsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (user_id, post_id, created_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`)).
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Like(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Unlike(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1 AND user_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Unlike(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CountLikes(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "likes" WHERE post_id = $1 AND "likes"."deleted_at" IS NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountLikes(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestPostRepository_Delete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "deleted_at"=`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 404)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
