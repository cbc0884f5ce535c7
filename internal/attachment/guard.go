// Package attachment validates image files before they are attached to a
// post and derives the object-store key an attachment lives under.
package attachment

import (
	"errors"
	"fmt"
	"strings"
)

// MaxBytes is the hard size limit for a post attachment (1 MiB).
const MaxBytes = 1024 * 1024

var (
	ErrTooLarge = errors.New("attachments are limited to 1MB")
	ErrNotImage = errors.New("only image attachments are supported")
	ErrEmpty    = errors.New("attachment is empty")
)

// Check rejects any candidate file over MaxBytes or without an image
// content type. The size check is the hard guard; the content-type check
// backs up the client-side image/* picker filter.
func Check(size int64, contentType string) error {
	if size <= 0 {
		return ErrEmpty
	}
	if size > MaxBytes {
		return ErrTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	return nil
}

// ObjectKey returns the storage key for a post's attachment. The layout
// matches posts/{authorID}-{authorName}/{postID} so deleting a post can
// address its object without extra lookups.
func ObjectKey(authorID int, authorName string, postID int) string {
	return fmt.Sprintf("posts/%d-%s/%d", authorID, authorName, postID)
}
