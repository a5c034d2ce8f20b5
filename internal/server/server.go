package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"issuetracker/internal/config"
	"issuetracker/internal/handler"
	"issuetracker/internal/middleware"
	"issuetracker/internal/model"
	"issuetracker/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Foreign keys must be on for cascades and for tag-reference
	// violations to surface as constraint errors.
	dsn := fmt.Sprintf("%s?_foreign_keys=on", cfg.DBPath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}

	if err := model.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate schema: %w", err)
	}
	if err := seedTags(db); err != nil {
		return nil, fmt.Errorf("❌ failed to seed tags: %w", err)
	}
	log.Println("✅ Connected to database")

	return &Server{
		Engine: NewRouter(db, cfg),
		DB:     db,
		Config: cfg,
	}, nil
}

// NewRouter wires repositories, handlers and routes over the shared
// store handle.
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	tagRepo := repository.NewTagRepository(db)

	// Initialize handlers
	jwtExpiry := time.Duration(cfg.JWTExpiryHours) * time.Hour
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret, jwtExpiry)
	issueHandler := handler.NewIssueHandler(issueRepo)
	tagHandler := handler.NewTagHandler(tagRepo)

	// Public routes
	r.POST("/api/auth/register", userHandler.Register)
	r.POST("/api/auth/login", userHandler.Login)
	r.GET("/api/issues", issueHandler.List)
	r.GET("/api/issues/:id", issueHandler.GetByID)
	r.GET("/api/tags", tagHandler.List)

	// Protected routes - require authentication
	authorized := r.Group("/api")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Issue routes
		authorized.POST("/issues", issueHandler.Create)
		authorized.PUT("/issues/:id", issueHandler.Update)
		authorized.DELETE("/issues/:id", issueHandler.Delete)

		// Tag routes
		authorized.POST("/tags", tagHandler.Create)
		authorized.DELETE("/tags/:id", tagHandler.Delete)

		// User routes
		authorized.GET("/users", userHandler.List)
	}

	return r
}

// seedTags inserts the starter tag set on an empty database.
func seedTags(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tags := []model.Tag{
		{Name: "bug", Color: "#ef4444"},
		{Name: "feature", Color: "#8b5cf6"},
		{Name: "enhancement", Color: "#f59e0b"},
		{Name: "documentation", Color: "#6b7280"},
		{Name: "frontend", Color: "#3b82f6"},
		{Name: "backend", Color: "#10b981"},
	}
	return db.Create(&tags).Error
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
