package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hondurasarchive/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Login != "ana" || req.Password != "password1" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "login successful",
			"user":    models.UserDescriptor{ID: 1, Username: "ana", Role: models.RoleAdmin},
			"token":   "token-123",
		})
	})

	mux.HandleFunc("GET /api/archive", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "A", r.URL.Query().Get("letter"))
		assert.Equal(t, "boda civil", r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, models.ListResult{
			Items:      []models.ArchiveRecord{{ID: 3, Names: []string{"Ana Cruz"}}},
			TotalCount: 10,
		})
	})

	mux.HandleFunc("POST /api/archive", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, `["Ana Cruz","Luis Gravina"]`, r.PostFormValue("names"))
			assert.Equal(t, "News", r.PostFormValue("category"))

			file, header, err := r.FormFile("image")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "clip.png", header.Filename)
			assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
			assert.Equal(t, "png-bytes", string(data))

			writeJSON(w, http.StatusCreated, models.ArchiveRecord{ID: 8, Names: []string{"Ana Cruz", "Luis Gravina"}, ImageRef: "archive/ana-cruz.png"})
			return
		}

		var req models.CreateRecordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusCreated, models.ArchiveRecord{ID: 7, Names: req.Names})
	})

	mux.HandleFunc("DELETE /api/archive/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found: record " + r.PathValue("id")})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "record deleted successfully"})
	})

	mux.HandleFunc("GET /api/auth/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
	})

	mux.HandleFunc("POST /api/maintenance/normalize-names", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "key" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing API key"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "names normalized", "changed": 4})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := newFakeAPI(t)
	c := New(srv.URL + "/")
	ctx := context.Background()

	session, err := c.Login(ctx, "ana", "password1")
	require.NoError(t, err)
	assert.Equal(t, "token-123", session.Token)
	assert.True(t, session.IsAdmin())

	t.Run("login failure keeps server message", func(t *testing.T) {
		_, err := c.Login(ctx, "ana", "wrong")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "invalid credentials", apiErr.Message)
	})

	t.Run("list with filters", func(t *testing.T) {
		result, err := c.ListRecords(ctx, models.ListFilter{Letter: "A", Search: "boda civil"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, int64(10), result.TotalCount)
	})

	t.Run("create without image sends json", func(t *testing.T) {
		record, err := c.CreateRecord(ctx, session, &models.CreateRecordRequest{Names: []string{"Ana Cruz"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(7), record.ID)
		assert.Equal(t, []string{"Ana Cruz"}, record.Names)
	})

	t.Run("create with image sends multipart", func(t *testing.T) {
		record, err := c.CreateRecord(ctx, session, &models.CreateRecordRequest{
			Names: []string{"Ana Cruz", "Luis Gravina"}, Category: "News",
		}, &Image{Filename: "clip.png", ContentType: "image/png", Reader: strings.NewReader("png-bytes")})
		require.NoError(t, err)
		assert.Equal(t, "archive/ana-cruz.png", record.ImageRef)
	})

	t.Run("session required", func(t *testing.T) {
		_, err := c.CreateRecord(ctx, nil, &models.CreateRecordRequest{Names: []string{"Ana"}}, nil)
		assert.ErrorIs(t, err, ErrNotLoggedIn)
		assert.ErrorIs(t, c.DeleteRecord(ctx, nil, 7), ErrNotLoggedIn)
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := c.CreateRecord(ctx, &Session{Token: "stale"}, &models.CreateRecordRequest{Names: []string{"Ana"}}, nil)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.DeleteRecord(ctx, session, 7))
		assert.ErrorIs(t, c.DeleteRecord(ctx, session, 9), ErrNotFound)
	})

	t.Run("forbidden", func(t *testing.T) {
		_, err := c.ListUsers(ctx, session)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("normalize names", func(t *testing.T) {
		changed, err := c.NormalizeNames(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, 4, changed)

		_, err = c.NormalizeNames(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewSessionStore(path)

	session, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.False(t, session.IsAdmin())

	saved := &Session{Token: "token-123", User: models.UserDescriptor{ID: 2, Username: "luis", Role: models.RoleClient}}
	require.NoError(t, store.Save(saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
	assert.False(t, loaded.IsAdmin())
	assert.True(t, loaded.IsClient())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	session, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.Error(t, store.Save(&Session{}))
}

func TestSessionStore_CorruptFileIsCleared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	session, err := NewSessionStore(path).Load()
	require.NoError(t, err)
	assert.Nil(t, session)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
