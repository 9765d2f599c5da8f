package service

import (
	"context"
	"testing"

	"shadospace/internal/database"
	"shadospace/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.RegisteredModels()...))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, status models.PostStatus) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    "A Post",
		Content:  "Some content",
		Status:   status,
		Category: models.PostCategoryTutorial,
		UserID:   userID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func testCtx() context.Context {
	return context.Background()
}
