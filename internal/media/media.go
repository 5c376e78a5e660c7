// Package media stores product images in an object store.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storefront-backend/internal/apperr"
)

// MaxImageSize caps a single upload.
const MaxImageSize = 10 << 20

// ObjectStorage is the subset of bucket operations the image library needs.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
}

type Image struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Images validates uploads and files them under products/.
type Images struct {
	storage ObjectStorage
	logger  zerolog.Logger
}

func NewImages(storage ObjectStorage, logger zerolog.Logger) *Images {
	return &Images{storage: storage, logger: logger}
}

func (m *Images) EnsureBucket(ctx context.Context) error {
	return m.storage.EnsureBucket(ctx)
}

// Upload stores an image and returns where it can be fetched.
func (m *Images) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (Image, error) {
	if size <= 0 {
		return Image{}, apperr.Validation("Image file is empty")
	}
	if size > MaxImageSize {
		return Image{}, apperr.Validation(fmt.Sprintf("Image must be at most %d MB", MaxImageSize>>20))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, apperr.Validation("Only image uploads are allowed")
	}

	key := "products/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := m.storage.Put(ctx, key, r, size, contentType); err != nil {
		m.logger.Error().Err(err).Str("key", key).Msg("image upload failed")
		return Image{}, apperr.Internal("Failed to upload image", err)
	}

	m.logger.Info().Str("key", key).Int64("size", size).Msg("image uploaded")
	return Image{Key: key, URL: m.storage.URL(key)}, nil
}
