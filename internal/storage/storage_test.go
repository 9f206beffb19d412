package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/hondurasarchive/backend/internal/config"
	"github.com/hondurasarchive/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend is an in-memory ObjectStorage
type mockBackend struct {
	objects   map[string][]byte
	putErr    error
	deleteErr error
}

func newMockBackend() *mockBackend {
	return &mockBackend{objects: map[string][]byte{}}
}

func (m *mockBackend) EnsureBucket(ctx context.Context) error { return nil }

func (m *mockBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *mockBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockBackend) Delete(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *mockBackend) Bucket() string { return "mock" }

// closingBackend is a backend holding a client that must be released
type closingBackend struct {
	*mockBackend
	closed   int
	closeErr error
}

func (c *closingBackend) Close() error {
	c.closed++
	return c.closeErr
}

func TestImageStore_Close(t *testing.T) {
	t.Run("backend without a client", func(t *testing.T) {
		store := NewImageStore(newMockBackend(), "https://cdn.test")
		assert.NoError(t, store.Close())
	})

	t.Run("backend client released", func(t *testing.T) {
		backend := &closingBackend{mockBackend: newMockBackend()}
		store := NewImageStore(backend, "https://cdn.test")

		require.NoError(t, store.Close())
		assert.Equal(t, 1, backend.closed)
	})

	t.Run("close error returned", func(t *testing.T) {
		backend := &closingBackend{mockBackend: newMockBackend(), closeErr: errors.New("transport closed")}
		store := NewImageStore(backend, "https://cdn.test")

		assert.EqualError(t, store.Close(), "transport closed")
	})
}

var keyPattern = regexp.MustCompile(`^archive/juan-perez-[0-9a-f-]{36}\.png$`)

func TestImageStore_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		backend := newMockBackend()
		store := NewImageStore(backend, "https://cdn.test/")

		img, err := store.Upload(context.Background(), "Juan Pérez", &models.ImageUpload{
			Reader:      strings.NewReader("png-bytes"),
			Size:        9,
			ContentType: "image/png",
		})
		require.NoError(t, err)

		assert.Regexp(t, keyPattern, img.Ref)
		assert.Equal(t, "https://cdn.test/"+img.Ref, img.URL)
		assert.Equal(t, []byte("png-bytes"), backend.objects[img.Ref])
	})

	t.Run("unsupported content type", func(t *testing.T) {
		store := NewImageStore(newMockBackend(), "https://cdn.test")

		_, err := store.Upload(context.Background(), "Ana", &models.ImageUpload{
			Reader:      strings.NewReader("%PDF"),
			ContentType: "application/pdf",
		})
		assert.ErrorContains(t, err, "unsupported image content type")
	})

	t.Run("backend failure", func(t *testing.T) {
		backend := newMockBackend()
		backend.putErr = errors.New("connection reset")
		store := NewImageStore(backend, "https://cdn.test")

		_, err := store.Upload(context.Background(), "Ana", &models.ImageUpload{
			Reader:      strings.NewReader("x"),
			ContentType: "image/jpeg",
		})
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestImageStore_Delete(t *testing.T) {
	backend := newMockBackend()
	backend.objects["archive/a.jpg"] = []byte("a")
	store := NewImageStore(backend, "")

	require.NoError(t, store.Delete(context.Background(), "archive/a.jpg"))
	assert.Empty(t, backend.objects)

	// missing objects and empty refs are ignored
	assert.NoError(t, store.Delete(context.Background(), "archive/a.jpg"))
	assert.NoError(t, store.Delete(context.Background(), ""))

	backend.deleteErr = errors.New("access denied")
	assert.ErrorContains(t, store.Delete(context.Background(), "archive/b.jpg"), "access denied")
}

func TestExtensionForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"image/jpeg", ".jpg"},
		{"IMAGE/PNG", ".png"},
		{"image/gif", ".gif"},
		{"image/webp; charset=binary", ".webp"},
		{"application/pdf", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtensionForContentType(tt.contentType))
			assert.Equal(t, tt.expected != "", IsAllowedImageType(tt.contentType))
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForKey("archive/a.JPG"))
	assert.Equal(t, "image/png", ContentTypeForKey("archive/a.png"))
	assert.Equal(t, "image/webp", ContentTypeForKey("archive/a.webp"))
	assert.Empty(t, ContentTypeForKey("archive/a.pdf"))
	assert.Empty(t, ContentTypeForKey("archive/a"))
}

func TestImageStore_Open(t *testing.T) {
	backend := newMockBackend()
	backend.objects["archive/a.png"] = []byte("png-bytes")
	store := NewImageStore(backend, "https://cdn.test")

	r, err := store.Open(context.Background(), "archive/a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()
	assert.Equal(t, "png-bytes", string(data))

	_, err = store.Open(context.Background(), "archive/missing.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestGenerateObjectKey(t *testing.T) {
	assert.Regexp(t, keyPattern, GenerateObjectKey("Juan Pérez", "png"))
	assert.Regexp(t, `^archive/record-[0-9a-f-]{36}\.jpg$`, GenerateObjectKey("¿?", ".jpg"))
	assert.NotEqual(t, GenerateObjectKey("Ana", ".jpg"), GenerateObjectKey("Ana", ".jpg"))

	long := GenerateObjectKey(strings.Repeat("abcdefghij ", 20), ".gif")
	assert.LessOrEqual(t, len(long), len("archive/")+60+1+36+len(".gif"))
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "media")
	s := NewLocalStorage(base)

	require.NoError(t, s.EnsureBucket(ctx))
	assert.DirExists(t, base)
	assert.Equal(t, base, s.Bucket())

	require.NoError(t, s.Put(ctx, "archive/a.jpg", strings.NewReader("jpeg"), 4, "image/jpeg"))
	assert.FileExists(t, filepath.Join(base, "archive", "a.jpg"))

	r, err := s.Get(ctx, "archive/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, s.Delete(ctx, "archive/a.jpg"))
	_, err = os.Stat(filepath.Join(base, "archive", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, s.Delete(ctx, "archive/a.jpg"), ErrObjectNotFound)
	_, err = s.Get(ctx, "archive/a.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = s.Get(ctx, "archive")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	for _, key := range []string{"../escape.jpg", "archive/../../escape.jpg", ".."} {
		assert.Error(t, s.Put(ctx, key, strings.NewReader("x"), 1, "image/jpeg"), key)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		store, err := New(ctx, config.StorageConfig{
			Backend: config.StorageLocal,
			Local:   config.LocalStorageConfig{BasePath: t.TempDir(), BaseURL: "http://localhost:5500"},
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5500/media/archive/a.jpg", store.URL("archive/a.jpg"))
		_, ok := store.backend.(*LocalStorage)
		assert.True(t, ok)
	})

	t.Run("minio", func(t *testing.T) {
		store, err := New(ctx, config.StorageConfig{
			Backend: config.StorageMinIO,
			MinIO: config.MinIOConfig{
				Endpoint:  "localhost:9000",
				AccessKey: "minio",
				SecretKey: "minio123",
				Bucket:    "archive",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/archive/archive/a.jpg", store.URL("archive/a.jpg"))
		_, ok := store.backend.(*LocalStorage)
		assert.False(t, ok)
	})

	t.Run("public base url overrides", func(t *testing.T) {
		store, err := New(ctx, config.StorageConfig{
			Backend:       config.StorageLocal,
			PublicBaseURL: "https://img.example.org",
			Local:         config.LocalStorageConfig{BasePath: t.TempDir()},
		})
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.org/archive/a.jpg", store.URL("archive/a.jpg"))
	})

	t.Run("minio missing credentials", func(t *testing.T) {
		_, err := New(ctx, config.StorageConfig{
			Backend: config.StorageMinIO,
			MinIO:   config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "archive"},
		})
		assert.ErrorContains(t, err, "access key and secret key are required")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(ctx, config.StorageConfig{Backend: "ftp"})
		assert.Error(t, err)
	})
}
