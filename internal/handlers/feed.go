package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/musicbuddy/backend/internal/feed"
)

type FeedHandler struct {
	hub    *feed.Hub
	logger *slog.Logger
}

func NewFeedHandler(hub *feed.Hub, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{hub: hub, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the router; the browser client may live anywhere.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GetTimeline returns the current timeline window without subscribing.
func (h *FeedHandler) GetTimeline(c *gin.Context) {
	posts, err := h.hub.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("loading timeline", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// Subscribe upgrades to a websocket and streams full timeline snapshots:
// one on connect, then one after every post change, until the client
// disconnects. Each message replaces the client's entire held list.
func (h *FeedHandler) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrading feed connection", "error", err)
		return
	}
	defer conn.Close()

	sub, err := h.hub.Subscribe(c.Request.Context())
	if err != nil {
		h.logger.Error("subscribing to feed", "error", err)
		return
	}
	defer sub.Unsubscribe()

	// Drain the read side so we notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
