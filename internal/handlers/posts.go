package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/musicbuddy/backend/internal/attachment"
	"github.com/musicbuddy/backend/internal/feed"
	"github.com/musicbuddy/backend/internal/metrics"
	"github.com/musicbuddy/backend/internal/models"
	"github.com/musicbuddy/backend/internal/storage"
)

// maxPostLength is the body limit in runes, not bytes, so multi-byte
// scripts get the same 180 characters.
const maxPostLength = 180

var (
	errEmptyBody   = errors.New("post body must not be empty")
	errBodyTooLong = errors.New("post body must be at most 180 characters")
)

func validatePostBody(body string) error {
	if body == "" {
		return errEmptyBody
	}
	if utf8.RuneCountInString(body) > maxPostLength {
		return errBodyTooLong
	}
	return nil
}

type PostHandler struct {
	db     *gorm.DB
	store  storage.ObjectStorage
	hub    *feed.Hub
	logger *slog.Logger
}

func NewPostHandler(db *gorm.DB, store storage.ObjectStorage, hub *feed.Hub, logger *slog.Logger) *PostHandler {
	return &PostHandler{db: db, store: store, hub: hub, logger: logger}
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")
	var post models.Post

	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post, optionally with one image attachment
// (PROTECTED - requires authentication). Multipart form: "body" text plus
// an optional "file" part. The record and its attachment URL commit in a
// single transaction, so readers never observe a post whose attachment is
// still on the way.
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	username := c.GetString("username")
	if username == "" {
		username = "anonymous"
	}

	body := c.PostForm("body")
	if err := validatePostBody(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		fileData    []byte
		contentType string
	)
	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		contentType = fileHeader.Header.Get("Content-Type")
		if err := attachment.Check(fileHeader.Size, contentType); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read attachment"})
			return
		}
		defer f.Close()

		// The declared size already passed the guard; the limit re-checks
		// the actual bytes in case the multipart header lied.
		fileData, err = io.ReadAll(io.LimitReader(f, attachment.MaxBytes+1))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read attachment"})
			return
		}
		if int64(len(fileData)) > attachment.MaxBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": attachment.ErrTooLarge.Error()})
			return
		}
	case errors.Is(err, http.ErrMissingFile):
		// no attachment staged
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attachment"})
		return
	}

	var post models.Post
	var uploadedKey string
	err = h.db.Transaction(func(tx *gorm.DB) error {
		post = models.Post{
			Body:       body,
			AuthorID:   userID,
			AuthorName: username,
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if fileData == nil {
			return nil
		}

		key := attachment.ObjectKey(userID, username, post.ID)
		url, err := h.store.Put(c.Request.Context(), key, contentType, fileData)
		if err != nil {
			return err
		}
		uploadedKey = key

		post.AttachmentURL = url
		post.AttachmentKey = key
		return tx.Model(&post).Updates(map[string]interface{}{
			"attachment_url": url,
			"attachment_key": key,
		}).Error
	})
	if err != nil {
		// The row rolled back; drop the object it pointed at.
		if uploadedKey != "" {
			if rmErr := h.store.Remove(c.Request.Context(), uploadedKey); rmErr != nil {
				h.logger.Error("removing orphaned attachment", "key", uploadedKey, "error", rmErr)
			}
		}
		h.logger.Error("creating post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	metrics.PostsCreated.Inc()
	h.hub.Notify(c.Request.Context())

	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post's body (PROTECTED - requires ownership)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Check ownership
	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
		return
	}

	// The guard runs against the edited body, not the one it replaces.
	if err := validatePostBody(input.Body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Model(&post).Update("body", input.Body).Error; err != nil {
		h.logger.Error("updating post", "post_id", post.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	metrics.PostsEdited.Inc()
	h.hub.Notify(c.Request.Context())

	c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post and its attachment (PROTECTED - requires ownership)
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Check ownership
	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	if err := h.db.Delete(&post).Error; err != nil {
		h.logger.Error("deleting post", "post_id", post.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	// Only after the record is gone; best effort, the request already
	// succeeded from the caller's point of view.
	if post.AttachmentKey != "" {
		if err := h.store.Remove(c.Request.Context(), post.AttachmentKey); err != nil {
			h.logger.Error("removing attachment", "key", post.AttachmentKey, "error", err)
		}
	}

	metrics.PostsDeleted.Inc()
	h.hub.Notify(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
