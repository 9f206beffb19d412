// Package client is a typed Go client of the archive HTTP API.
//
// Authentication state lives in an explicit Session value that callers pass to every
// operation needing it; SessionStore persists it between CLI invocations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hondurasarchive/backend/internal/models"
)

// Client talks to the archive API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the API at baseURL, e.g. "http://localhost:5500"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Image is an image file to attach to a record
type Image struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Signup creates an account. A non-nil session lets an admin grant a role.
func (c *Client) Signup(ctx context.Context, session *Session, req *models.SignupRequest) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", session, req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Login authenticates and returns a new session
func (c *Client) Login(ctx context.Context, login, password string) (*Session, error) {
	var resp struct {
		User  models.UserDescriptor `json:"user"`
		Token string                `json:"token"`
	}
	req := &models.LoginRequest{Login: login, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// ListUsers returns every user. Requires an admin session.
func (c *Client) ListUsers(ctx context.Context, session *Session) ([]models.UserListItem, error) {
	if session == nil {
		return nil, ErrNotLoggedIn
	}
	var users []models.UserListItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/users", session, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser changes the role and/or password of a user. Requires an admin session.
func (c *Client) UpdateUser(ctx context.Context, session *Session, id int64, req *models.UpdateUserRequest) (*models.User, error) {
	if session == nil {
		return nil, ErrNotLoggedIn
	}
	var resp struct {
		User models.User `json:"user"`
	}
	path := "/api/auth/update-user/" + strconv.FormatInt(id, 10)
	if err := c.doJSON(ctx, http.MethodPut, path, session, req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListRecords returns the filtered archive listing
func (c *Client) ListRecords(ctx context.Context, filter models.ListFilter) (*models.ListResult, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Letter != "" {
		query.Set("letter", filter.Letter)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}

	path := "/api/archive"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result models.ListResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRecord returns a single record
func (c *Client) GetRecord(ctx context.Context, id int64) (*models.ArchiveRecord, error) {
	var record models.ArchiveRecord
	if err := c.doJSON(ctx, http.MethodGet, recordPath(id), nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateRecord stores a new record, as multipart when an image is attached. Requires an admin session.
func (c *Client) CreateRecord(ctx context.Context, session *Session, req *models.CreateRecordRequest, image *Image) (*models.ArchiveRecord, error) {
	if session == nil {
		return nil, ErrNotLoggedIn
	}

	var record models.ArchiveRecord
	if image == nil {
		if err := c.doJSON(ctx, http.MethodPost, "/api/archive", session, req, &record); err != nil {
			return nil, err
		}
		return &record, nil
	}

	body, contentType, err := recordForm(req, image)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodPost, "/api/archive", session, body, contentType, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateRecord applies a partial update. Requires an admin session.
func (c *Client) UpdateRecord(ctx context.Context, session *Session, id int64, req *models.UpdateRecordRequest) (*models.ArchiveRecord, error) {
	if session == nil {
		return nil, ErrNotLoggedIn
	}
	var record models.ArchiveRecord
	if err := c.doJSON(ctx, http.MethodPut, recordPath(id), session, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteRecord removes a record. Requires an admin session.
func (c *Client) DeleteRecord(ctx context.Context, session *Session, id int64) error {
	if session == nil {
		return ErrNotLoggedIn
	}
	return c.doJSON(ctx, http.MethodDelete, recordPath(id), session, nil, nil)
}

// NormalizeNames triggers the names normalization pass and returns how many records changed
func (c *Client) NormalizeNames(ctx context.Context, apiKey string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/maintenance/normalize-names", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)

	var resp struct {
		Changed int `json:"changed"`
	}
	if err := c.send(req, &resp); err != nil {
		return 0, err
	}
	return resp.Changed, nil
}

func recordPath(id int64) string {
	return "/api/archive/" + strconv.FormatInt(id, 10)
}

// recordForm encodes a create request and its image as multipart/form-data
func recordForm(req *models.CreateRecordRequest, image *Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	names, err := models.EncodeNames(req.Names)
	if err != nil {
		return nil, "", err
	}

	fields := []struct{ key, value string }{
		{"names", names},
		{"category", req.Category},
		{"eventDate", req.EventDate},
		{"location", req.Location},
		{"birthOrigin", req.BirthOrigin},
		{"countryOfOrigin", req.CountryOfOrigin},
		{"newspaperName", req.NewspaperName},
		{"pageNumber", req.PageNumber},
		{"transcription", req.Transcription},
		{"familySearchId", req.FamilySearchID},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", f.key, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Filename))
	if image.ContentType != "" {
		header.Set("Content-Type", image.ContentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, image.Reader); err != nil {
		return nil, "", fmt.Errorf("failed to write image: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, session *Session, in, out any) error {
	var body io.Reader
	var contentType string
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, session, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, session *Session, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		message := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
