package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/config"
)

type fakeStorage struct {
	objects map[string]string
	putErr  error
}

func (f *fakeStorage) EnsureBucket(context.Context) error { return nil }

func (f *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = string(b)
	return nil
}

func (f *fakeStorage) URL(key string) string { return "http://cdn.test/b/" + key }

func TestUpload_StoresUnderProductsPrefix(t *testing.T) {
	fs := &fakeStorage{objects: map[string]string{}}
	images := NewImages(fs, zerolog.Nop())

	img, err := images.Upload(context.Background(), "Chair.JPG", "image/jpeg", 4, strings.NewReader("data"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(img.Key, "products/"))
	assert.True(t, strings.HasSuffix(img.Key, ".jpg"))
	assert.Equal(t, "http://cdn.test/b/"+img.Key, img.URL)
	assert.Equal(t, "data", fs.objects[img.Key])
}

func TestUpload_Rejects(t *testing.T) {
	images := NewImages(&fakeStorage{objects: map[string]string{}}, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		name        string
		contentType string
		size        int64
	}{
		{"empty", "image/png", 0},
		{"too large", "image/png", MaxImageSize + 1},
		{"not an image", "application/pdf", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := images.Upload(ctx, "f.png", tc.contentType, tc.size, strings.NewReader("x"))
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestUpload_StorageFailureIsInternal(t *testing.T) {
	images := NewImages(&fakeStorage{putErr: errors.New("down")}, zerolog.Nop())

	_, err := images.Upload(context.Background(), "a.png", "image/png", 1, strings.NewReader("x"))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Failed to upload image", apperr.Message(err))
}

func TestNewMinioStorage(t *testing.T) {
	_, err := NewMinioStorage(config.MinioConfig{})
	assert.EqualError(t, err, "minio endpoint is required")

	_, err = NewMinioStorage(config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.EqualError(t, err, "minio access key and secret key are required")

	s, err := NewMinioStorage(config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "imgs"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/imgs/products/x.png", s.URL("products/x.png"))

	s, err = NewMinioStorage(config.MinioConfig{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s", Bucket: "imgs", PublicURL: "https://cdn.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/imgs/k", s.URL("k"))
}
