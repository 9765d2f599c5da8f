// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the publication state of a post. No transition rules are
// enforced between states; any status may be set from any other.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
	PostStatusDeleted   PostStatus = "deleted"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusInReview  PostStatus = "in-review"
)

// Valid reports whether s is one of the known publication states.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived, PostStatusDeleted, PostStatusScheduled, PostStatusInReview:
		return true
	}
	return false
}

// PostCategory is the editorial category of a post.
type PostCategory string

const (
	PostCategoryTutorial PostCategory = "tutorial"
	PostCategoryProject  PostCategory = "project"
	PostCategoryPractice PostCategory = "practice"
)

// Valid reports whether c is one of the known categories.
func (c PostCategory) Valid() bool {
	switch c {
	case PostCategoryTutorial, PostCategoryProject, PostCategoryPractice:
		return true
	}
	return false
}

// Post represents a blog post in Shadospace. ViewCount is persisted and
// incremented atomically on every recorded view; likes and comments counts
// are computed at query time from their own tables.
type Post struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Title    string       `gorm:"not null" json:"title"`
	Content  string       `gorm:"type:text;not null" json:"content"`
	ImageURL string       `json:"image_url,omitempty"`
	Status   PostStatus   `gorm:"type:varchar(16);not null;default:draft;index" json:"status"`
	Category PostCategory `gorm:"type:varchar(16);not null;default:tutorial;index" json:"category"`
	UserID   uint         `gorm:"not null;index" json:"user_id"`
	User     User         `gorm:"foreignKey:UserID" json:"user"`
	// ViewCount is the persisted page-view counter
	ViewCount int64 `gorm:"not null;default:0" json:"view_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
