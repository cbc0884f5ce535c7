package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/musicbuddy/backend/internal/database"
	"github.com/musicbuddy/backend/internal/feed"
	"github.com/musicbuddy/backend/internal/mailer"
	"github.com/musicbuddy/backend/internal/storage"
)

// Handler combines all handler types
type Handler struct {
	Auth *AuthHandler
	Post *PostHandler
	Feed *FeedHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db database.Service, store storage.ObjectStorage, hub *feed.Hub, resetMailer mailer.ResetMailer, logger *slog.Logger) *Handler {
	gormDB := db.GetDB()

	return &Handler{
		Auth: NewAuthHandler(gormDB, resetMailer, logger),
		Post: NewPostHandler(gormDB, store, hub, logger),
		Feed: NewFeedHandler(hub, logger),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
