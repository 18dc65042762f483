package media

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded post images and knows their public URLs.
type Store interface {
	// Save writes the content under a fresh key derived from fileName and
	// returns that key.
	Save(ctx context.Context, fileName string, content io.Reader) (string, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// ImagePrefix is the key prefix of post images.
const ImagePrefix = "posts/"

// NewKey builds a collision free key that keeps the extension of fileName.
func NewKey(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return ImagePrefix + uuid.NewString() + ext
}
