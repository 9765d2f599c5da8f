package database

import "shadospace/internal/models"

// RegisteredModels lists every model included in schema migration.
// Add new models here so migration stays a single source of truth.
func RegisteredModels() []any {
	return []any{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	}
}
