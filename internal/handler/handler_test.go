package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"issuetracker/internal/auth"
	"issuetracker/internal/config"
	"issuetracker/internal/model"
	"issuetracker/internal/server"
)

const testSecret = "test-secret-key"

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{})
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	assert.NoError(t, model.AutoMigrate(db))

	cfg := &config.Config{
		DBPath:         ":memory:",
		ServerPort:     "8080",
		JWTSecret:      testSecret,
		JWTExpiryHours: 1,
	}
	return server.NewRouter(db, cfg), db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           "Test User",
		HashedPassword: string(hash),
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

func authHeader(t *testing.T, user *model.User) string {
	t.Helper()

	token, err := auth.GenerateToken(testSecret, user.ID, time.Hour)
	assert.NoError(t, err)
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path, body, authz string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}
