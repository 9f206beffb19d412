//go:build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hondurasarchive/backend/internal/auth/service"
	"github.com/hondurasarchive/backend/internal/config"
	"github.com/hondurasarchive/backend/internal/database"
	"github.com/hondurasarchive/backend/internal/handlers"
	"github.com/hondurasarchive/backend/internal/models"
	"github.com/hondurasarchive/backend/internal/repositories"
	"github.com/hondurasarchive/backend/internal/services"
	"github.com/hondurasarchive/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "integration-maintenance-key"

var (
	testDB       *sql.DB
	testRouter   chi.Router
	testLogger   *zap.Logger
	testMediaDir string
	testArchive  interface{ Wait() }
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR integration png")

// cleanupTestData removes all test data
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec("DELETE FROM archive_records")
	require.NoError(t, err, "Failed to clear archive_records")
	_, err = db.Exec("DELETE FROM users")
	require.NoError(t, err, "Failed to clear users")
	_, err = db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	require.NoError(t, err, "Failed to reset users AUTO_INCREMENT")
}

// setupTestRouter creates the full API router over the real repositories
func setupTestRouter(db *sql.DB, cfg *config.Config, logger *zap.Logger, mediaDir string) chi.Router {
	tokenGen := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	userRepo := repositories.NewUserRepository(db, logger)
	archiveRepo := repositories.NewArchiveRepository(db, logger)

	local := storage.NewLocalStorage(mediaDir)
	images := storage.NewImageStore(local, "http://archive.test"+storage.MediaRoutePrefix)

	archiveSvc := services.NewArchiveService(archiveRepo, images, cfg.DefaultCountry, logger)
	testArchive = archiveSvc

	return handlers.NewRouter(handlers.RouterConfig{
		AuthService:     services.NewAuthService(userRepo, tokenGen, logger),
		AdminService:    services.NewAdminService(userRepo, logger),
		ArchiveService:  archiveSvc,
		NamesNormalizer: archiveSvc,
		DB:              db,
		Media:           images,
		TokenGenerator:  tokenGen,
		Logger:          logger,
		AllowedOrigins:  []string{"*"},
		APIKey:          testAPIKey,
		TokenExpiry:     cfg.JWT.AccessTokenExpiry,
	})
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := "root:password@tcp(localhost:3306)/honduras_archive_test?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci&multiStatements=true&clientFoundRows=true"
	if cfg.Database.Host != "" {
		dsn = cfg.DSN()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	testDB, err = database.Connect(ctx, dsn)
	cancel()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	if err := database.RunMigrations(testDB, "file://../../migrations"); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	testMediaDir, err = os.MkdirTemp("", "archive-media-*")
	if err != nil {
		panic(fmt.Sprintf("Failed to create media directory: %v", err))
	}

	testRouter = setupTestRouter(testDB, cfg, testLogger, testMediaDir)

	code := m.Run()

	testDB.Close()
	os.RemoveAll(testMediaDir)
	os.Exit(code)
}

func doRequest(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func login(t *testing.T, username, password string) string {
	t.Helper()
	w := doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody[struct {
		Token string `json:"token"`
	}](t, w).Token
}

func TestAuthFlow(t *testing.T) {
	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	// First user becomes admin regardless of the requested role
	w := doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "archivista", "email": "Archivista@Example.com", "password": "Password123", "role": "visitor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decodeBody[struct {
		User models.User `json:"user"`
	}](t, w).User
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, "archivista@example.com", first.Email)

	w = doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "lector", "email": "lector@example.com", "password": "Password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	second := decodeBody[struct {
		User models.User `json:"user"`
	}](t, w).User
	assert.Equal(t, models.RoleVisitor, second.Role)

	t.Run("duplicate email rejected", func(t *testing.T) {
		w := doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"username": "otro", "email": "LECTOR@example.com", "password": "Password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var count int
		require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("login errors are indistinguishable", func(t *testing.T) {
		wrong := doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "lector", "password": "wrong-password"})
		unknown := doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "nadie", "password": "wrong-password"})
		assert.Equal(t, http.StatusBadRequest, wrong.Code)
		assert.Equal(t, wrong.Code, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("login by email returns stored role", func(t *testing.T) {
		w := doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "archivista@example.com", "password": "Password123"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[struct {
			User models.UserDescriptor `json:"user"`
		}](t, w)
		assert.Equal(t, models.RoleAdmin, body.User.Role)
	})

	t.Run("admin manages users", func(t *testing.T) {
		adminToken := login(t, "archivista", "Password123")
		visitorToken := login(t, "lector", "Password123")

		w := doRequest(t, http.MethodGet, "/api/auth/users", visitorToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doRequest(t, http.MethodGet, "/api/auth/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody[[]models.UserListItem](t, w), 2)

		w = doRequest(t, http.MethodPut, fmt.Sprintf("/api/auth/users/role/%d", second.ID), adminToken, map[string]string{"role": "client"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "lector", "password": "Password123"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[struct {
			User models.UserDescriptor `json:"user"`
		}](t, w)
		assert.Equal(t, models.RoleClient, body.User.Role)
	})

	t.Run("email owner logs in over an email-shaped username", func(t *testing.T) {
		w := doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"username": "carla@example.com", "email": "squat@example.com", "password": "Password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		// Rows written before usernames were restricted
		_, err := testDB.Exec(`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, 'visitor')`,
			"carla@example.com", "squat@example.com", "not-a-bcrypt-hash")
		require.NoError(t, err)

		w = doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
			"username": "carla", "email": "carla@example.com", "password": "Password456",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "carla@example.com", "password": "Password456"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody[struct {
			User models.UserDescriptor `json:"user"`
		}](t, w)
		assert.Equal(t, "carla", body.User.Username)
	})
}

func createRecordWithImage(t *testing.T, token string, fields map[string]string) models.ArchiveRecord {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="clip.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/archive", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[models.ArchiveRecord](t, w)
}

func TestArchiveFlow(t *testing.T) {
	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	w := doRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "archivista", "email": "archivista@example.com", "password": "Password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	adminToken := login(t, "archivista", "Password123")

	portrait := createRecordWithImage(t, adminToken, map[string]string{
		"names":         `["Juan Pérez","María López"]`,
		"category":      "Portrait",
		"transcription": "Retrato tomado en Comayagua",
	})
	assert.Equal(t, []string{"Juan Pérez", "María López"}, portrait.Names)
	assert.Equal(t, "Honduras", portrait.CountryOfOrigin)
	require.NotEmpty(t, portrait.ImageRef)
	assert.FileExists(t, filepath.Join(testMediaDir, filepath.FromSlash(portrait.ImageRef)))

	w = doRequest(t, http.MethodPost, "/api/archive", adminToken, map[string]any{
		"names":         []string{"Ana Cruz"},
		"category":      "News",
		"transcription": "Boda civil celebrada en Tegucigalpa",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	news := decodeBody[models.ArchiveRecord](t, w)

	t.Run("names round trip in order", func(t *testing.T) {
		w := doRequest(t, http.MethodGet, fmt.Sprintf("/api/archive/%d", portrait.ID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Juan Pérez", "María López"}, decodeBody[models.ArchiveRecord](t, w).Names)
	})

	t.Run("search matches one transcription", func(t *testing.T) {
		w := doRequest(t, http.MethodGet, "/api/archive?search=boda%20civil", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		result := decodeBody[models.ListResult](t, w)
		require.Len(t, result.Items, 1)
		assert.Equal(t, news.ID, result.Items[0].ID)
		assert.Equal(t, int64(2), result.TotalCount)
	})

	t.Run("search matches names but not their encoding", func(t *testing.T) {
		w := doRequest(t, http.MethodGet, "/api/archive?search=mar%C3%ADa", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		result := decodeBody[models.ListResult](t, w)
		require.Len(t, result.Items, 1)
		assert.Equal(t, portrait.ID, result.Items[0].ID)

		for _, term := range []string{",", `"`, "[", `Pérez","María`} {
			w := doRequest(t, http.MethodGet, "/api/archive?search="+url.QueryEscape(term), "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, decodeBody[models.ListResult](t, w).Items, "search %q", term)
		}
	})

	t.Run("letter filter is case-insensitive", func(t *testing.T) {
		w := doRequest(t, http.MethodGet, "/api/archive?letter=j", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		result := decodeBody[models.ListResult](t, w)
		require.Len(t, result.Items, 1)
		assert.Equal(t, portrait.ID, result.Items[0].ID)
	})

	t.Run("newest first", func(t *testing.T) {
		w := doRequest(t, http.MethodGet, "/api/archive", "", nil)
		result := decodeBody[models.ListResult](t, w)
		require.Len(t, result.Items, 2)
		assert.Equal(t, news.ID, result.Items[0].ID)
		require.NotNil(t, result.LastUpdate)
	})

	t.Run("anonymous writes rejected", func(t *testing.T) {
		w := doRequest(t, http.MethodDelete, fmt.Sprintf("/api/archive/%d", news.ID), "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("update changes only given fields", func(t *testing.T) {
		w := doRequest(t, http.MethodPut, fmt.Sprintf("/api/archive/%d", news.ID), adminToken, map[string]any{
			"location": "Tegucigalpa",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decodeBody[models.ArchiveRecord](t, w)
		assert.Equal(t, "Tegucigalpa", updated.Location)
		assert.Equal(t, news.Transcription, updated.Transcription)
		assert.Equal(t, news.Names, updated.Names)
	})

	t.Run("media served from local host", func(t *testing.T) {
		w := doRequest(t, http.MethodGet, storage.MediaRoutePrefix+"/"+portrait.ImageRef, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pngBytes, w.Body.Bytes())
	})

	t.Run("delete removes record and image", func(t *testing.T) {
		w := doRequest(t, http.MethodDelete, fmt.Sprintf("/api/archive/%d", portrait.ID), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		testArchive.Wait()

		w = doRequest(t, http.MethodGet, fmt.Sprintf("/api/archive/%d", portrait.ID), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doRequest(t, http.MethodGet, "/api/archive", "", nil)
		result := decodeBody[models.ListResult](t, w)
		require.Len(t, result.Items, 1)
		assert.Equal(t, news.ID, result.Items[0].ID)

		assert.NoFileExists(t, filepath.Join(testMediaDir, filepath.FromSlash(portrait.ImageRef)))
	})
}

func TestNormalizeNames(t *testing.T) {
	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	_, err := testDB.Exec(`INSERT INTO archive_records (names, names_text, primary_name, category, transcription) VALUES (?, ?, ?, ?, ''), (?, ?, ?, ?, '')`,
		"Rosa Mejía, Pedro Ávila", "Rosa Mejía, Pedro Ávila", "Rosa Mejía", models.CategoryDeath,
		`["Carlos Reyes"]`, "Carlos Reyes", "Carlos Reyes", models.CategoryBirth)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/maintenance/normalize-names", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decodeBody[struct {
		Changed int `json:"changed"`
	}](t, w).Changed)

	var raw, text string
	require.NoError(t, testDB.QueryRow(`SELECT names, names_text FROM archive_records WHERE primary_name = ?`, "Rosa Mejía").Scan(&raw, &text))
	assert.Equal(t, `["Rosa Mejía","Pedro Ávila"]`, raw)
	assert.Equal(t, "Rosa Mejía\nPedro Ávila", text)
}

func TestHealth(t *testing.T) {
	w := doRequest(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
