package models

import "time"

// Post is a single feed entry. AuthorName is a snapshot of the author's
// display name at creation time and is never updated afterwards.
type Post struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	Body          string    `gorm:"not null" json:"body"`
	AuthorID      int       `gorm:"index;not null" json:"author_id"`
	AuthorName    string    `json:"author_name"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	AttachmentKey string    `json:"-"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UpdatePostRequest struct {
	Body string `json:"body"`
}
