// Package storage is the image host: object storage backends and the archive image store on top of them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hondurasarchive/backend/internal/models"
)

// ErrObjectNotFound is returned when an object key does not exist in the backend
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// ImageStore uploads and removes archive images on an ObjectStorage backend
// and derives their public URLs.
type ImageStore struct {
	backend       ObjectStorage
	publicBaseURL string
}

// NewImageStore constructs an ImageStore. publicBaseURL is the URL prefix objects are served under.
func NewImageStore(backend ObjectStorage, publicBaseURL string) *ImageStore {
	return &ImageStore{
		backend:       backend,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// EnsureBucket ensures the configured bucket exists.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Upload stores an image under a key derived from name and returns its URL and reference
func (s *ImageStore) Upload(ctx context.Context, name string, img *models.ImageUpload) (*models.StoredImage, error) {
	ext := ExtensionForContentType(img.ContentType)
	if ext == "" {
		return nil, fmt.Errorf("unsupported image content type %q", img.ContentType)
	}

	key := GenerateObjectKey(name, ext)
	if err := s.backend.Put(ctx, key, img.Reader, img.Size, img.ContentType); err != nil {
		return nil, fmt.Errorf("failed to upload image to %s: %w", s.backend.Bucket(), err)
	}

	return &models.StoredImage{
		URL: s.URL(key),
		Ref: key,
	}, nil
}

// Open returns a reader for a stored image.
// A missing image yields an error wrapping ErrObjectNotFound.
func (s *ImageStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, ref)
}

// Delete removes a stored image. Deleting a missing object is not an error.
func (s *ImageStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, ref); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return fmt.Errorf("failed to delete image %s: %w", ref, err)
	}
	return nil
}

// Close releases the backend client when it holds one
func (s *ImageStore) Close() error {
	if closer, ok := s.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// URL returns the public URL of an object key
func (s *ImageStore) URL(key string) string {
	return s.publicBaseURL + "/" + key
}
