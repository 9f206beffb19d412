package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	authmw "github.com/hondurasarchive/backend/internal/auth/middleware"
	"github.com/hondurasarchive/backend/internal/models"
	"go.uber.org/zap"
)

// maxUploadMemory is the part of a multipart body kept in memory, the rest spills to temp files
const maxUploadMemory = 32 << 20

// ArchiveService is the interface that wraps methods for archive business logic.
type ArchiveService interface {
	// Method CreateRecord validates and stores a new record.
	//
	// "req" parameter contains the descriptive fields of the record.
	// "image" parameter is an optional image uploaded to the image host before the record is stored.
	// "createdBy" parameter is the ID of the creating user, nil when unknown.
	//
	// If the fields are invalid, or the image host fails, or some other error occurs, the error will be returned together with "nil" value.
	CreateRecord(ctx context.Context, req *models.CreateRecordRequest, image *models.ImageUpload, createdBy *int64) (*models.ArchiveRecord, error)
	// Method ListRecords returns records matching the filter, newest first, with archive-wide aggregates.
	//
	// "filter" parameter contains optional search term, first letter and category.
	//
	// If the letter or category is invalid, or some other error occurs, the error will be returned together with "nil" value.
	ListRecords(ctx context.Context, filter models.ListFilter) (*models.ListResult, error)
	// Method GetRecord returns a single record.
	//
	// If record with such ID does not exist, services.ErrNotFound will be returned together with "nil" value.
	GetRecord(ctx context.Context, id int64) (*models.ArchiveRecord, error)
	// Method UpdateRecord applies a partial update and optionally replaces the image.
	//
	// "id" parameter is used to identify the record.
	// "req" parameter contains the fields to change, nil fields are left unchanged.
	// "image" parameter is an optional replacement image.
	//
	// If record not found, or the fields are invalid, or some other error occurs, the error will be returned together with "nil" value.
	UpdateRecord(ctx context.Context, id int64, req *models.UpdateRecordRequest, image *models.ImageUpload) (*models.ArchiveRecord, error)
	// Method DeleteRecord removes a record. Its image is deleted in the background.
	//
	// If record with such ID does not exist, services.ErrNotFound will be returned.
	DeleteRecord(ctx context.Context, id int64) error
}

// ArchiveHandler handles archive record HTTP requests
type ArchiveHandler struct {
	BaseHandler
	archiveService ArchiveService
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(archiveService ArchiveService, logger *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		archiveService: archiveService,
	}
}

// RegisterRoutes registers all archive handler routes.
// Reads are public, writes go through adminMiddleware.
func (h *ArchiveHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Get("/archive", h.ListRecords)
	r.Get("/archive/{id}", h.GetRecord)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/archive", h.CreateRecord)
		r.Put("/archive/{id}", h.UpdateRecord)
		r.Delete("/archive/{id}", h.DeleteRecord)
	})
}

// ListRecords handles GET /archive
// @Summary List archive records
// @Description Get archive records, newest first, optionally filtered by a search term, the first letter of the first name, or a category. The answer also carries the total record count and the creation time of the newest record.
// @Tags archive
// @Produce json
// @Param search query string false "Case-insensitive substring of names, origin or transcription"
// @Param letter query string false "First letter of the first name"
// @Param category query string false "Portrait, News, Birth, Marriage or Death"
// @Success 200 {object} models.ListResult
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /archive [get]
func (h *ArchiveHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.archiveService.ListRecords(r.Context(), models.ListFilter{
		Search:   query.Get("search"),
		Letter:   query.Get("letter"),
		Category: query.Get("category"),
	})
	if err != nil {
		h.RespondServiceError(w, err, "list records")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// GetRecord handles GET /archive/{id}
// @Summary Get archive record
// @Description Get a single archive record by ID
// @Tags archive
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} models.ArchiveRecord
// @Failure 400 {object} map[string]string "Invalid record ID"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /archive/{id} [get]
func (h *ArchiveHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := h.archiveService.GetRecord(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "get record")
		return
	}

	h.RespondJSON(w, http.StatusOK, record)
}

// CreateRecord handles POST /archive
// @Summary Create archive record
// @Description Create a record from a multipart form with an optional image, or from a JSON body without image. Names may be a JSON array or a comma-separated string.
// @Tags archive
// @Accept multipart/form-data,json
// @Produce json
// @Security BearerAuth
// @Param names formData string true "Names, JSON array or comma-separated"
// @Param category formData string false "Portrait (default), News, Birth, Marriage or Death"
// @Param eventDate formData string false "Event date"
// @Param location formData string false "Event location"
// @Param birthOrigin formData string false "Origin of the person"
// @Param countryOfOrigin formData string false "Country of origin, defaults to Honduras"
// @Param newspaperName formData string false "Newspaper name"
// @Param pageNumber formData string false "Page number"
// @Param transcription formData string false "Transcription"
// @Param familySearchId formData string false "FamilySearch ID"
// @Param image formData file false "Clipping image (jpeg, png, gif or webp)"
// @Success 201 {object} models.ArchiveRecord
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 502 {object} map[string]string "Image host failure"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /archive [post]
func (h *ArchiveHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	payload, image, cleanup, err := h.readRecordPayload(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	var createdBy *int64
	if userID, ok := authmw.GetUserID(r.Context()); ok {
		createdBy = &userID
	}

	record, err := h.archiveService.CreateRecord(r.Context(), payload.createRequest(), image, createdBy)
	if err != nil {
		h.RespondServiceError(w, err, "create record")
		return
	}

	h.RespondJSON(w, http.StatusCreated, record)
}

// UpdateRecord handles PUT /archive/{id}
// @Summary Update archive record
// @Description Partially update a record. Absent fields are left unchanged, a new image replaces the stored one.
// @Tags archive
// @Accept json,multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param request body models.UpdateRecordRequest true "Fields to update"
// @Success 200 {object} models.ArchiveRecord
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 502 {object} map[string]string "Image host failure"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /archive/{id} [put]
func (h *ArchiveHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	payload, image, cleanup, err := h.readRecordPayload(r)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	record, err := h.archiveService.UpdateRecord(r.Context(), id, payload.updateRequest(), image)
	if err != nil {
		h.RespondServiceError(w, err, "update record")
		return
	}

	h.RespondJSON(w, http.StatusOK, record)
}

// DeleteRecord handles DELETE /archive/{id}
// @Summary Delete archive record
// @Description Delete a record. Its image is removed from the image host in the background.
// @Tags archive
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} map[string]string "Record deleted"
// @Failure 400 {object} map[string]string "Invalid record ID"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /archive/{id} [delete]
func (h *ArchiveHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := h.archiveService.DeleteRecord(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "delete record")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "record deleted successfully"})
}

// readRecordPayload decodes a JSON or form body and extracts the optional "image" file.
// cleanup closes the file and removes multipart temp files.
func (h *ArchiveHandler) readRecordPayload(r *http.Request) (*recordPayload, *models.ImageUpload, func(), error) {
	noop := func() {}

	if isJSONRequest(r) {
		var payload recordPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, nil, noop, errors.New("invalid request body")
		}
		return &payload, nil, noop, nil
	}

	if err := parseForm(r, maxUploadMemory); err != nil {
		h.Logger.Warn("failed to parse record form", zap.Error(err))
		return nil, nil, noop, errors.New("failed to parse request")
	}
	payload := payloadFromForm(r)

	cleanupForm := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return payload, nil, cleanupForm, nil
	}
	if err != nil {
		cleanupForm()
		h.Logger.Warn("failed to get image file from form", zap.Error(err))
		return nil, nil, noop, errors.New("failed to process image file")
	}
	if header.Size == 0 {
		file.Close()
		return payload, nil, cleanupForm, nil
	}

	image := &models.ImageUpload{
		Reader:      file,
		Size:        header.Size,
		ContentType: imageContentType(file, header),
		Filename:    header.Filename,
	}

	return payload, image, func() {
		file.Close()
		cleanupForm()
	}, nil
}

// imageContentType takes the part's declared type and falls back to sniffing the first bytes
func imageContentType(file multipart.File, header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	_, _ = file.Seek(0, 0)
	return http.DetectContentType(buf[:n])
}
