package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"issuetracker/internal/model"
)

// setupTestDB opens an in-memory SQLite database with foreign keys on,
// limited to one connection so every query sees the same memory store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{})
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	assert.NoError(t, model.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           "Test User",
		HashedPassword: "hashed_password",
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}

func createTestTag(t *testing.T, db *gorm.DB, name, color string) *model.Tag {
	t.Helper()

	tag := &model.Tag{Name: name, Color: color}
	assert.NoError(t, db.Create(tag).Error)
	return tag
}
