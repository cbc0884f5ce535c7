package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/musicbuddy/backend/internal/database"
	"github.com/musicbuddy/backend/internal/feed"
	"github.com/musicbuddy/backend/internal/handlers"
	"github.com/musicbuddy/backend/internal/mailer"
	"github.com/musicbuddy/backend/internal/middleware"
	"github.com/musicbuddy/backend/internal/storage"
)

type Server struct {
	db      database.Service
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer(logger *slog.Logger) *http.Server {
	// Initialize database
	db := database.New()

	// Attachment object store
	store, err := storage.New(storage.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to prepare attachment bucket: %v", err)
	}

	// Live timeline hub over the posts table
	hub := feed.NewHub(feed.NewStore(db.GetDB()), logger)

	// Create unified handler
	handler := handlers.NewHandler(db, store, hub, mailer.NewTwilioVerify(), logger)

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("server starting", "port", port)

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)
		api.POST("/password-reset", s.handler.Auth.PasswordReset)

		// Timeline routes (public reads)
		api.GET("/timeline", s.handler.Feed.GetTimeline)
		api.GET("/timeline/ws", s.handler.Feed.Subscribe)
		api.GET("/posts/:id", s.handler.Post.GetPost)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// Post protected routes
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
		}
	}

	return r
}
