package feed

import (
	"context"

	"gorm.io/gorm"

	"github.com/musicbuddy/backend/internal/models"
)

// Store loads timeline snapshots from the posts table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Snapshot returns the WindowSize most recent posts, newest first. ID
// breaks ties between posts created in the same instant.
func (s *Store) Snapshot(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(WindowSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}
