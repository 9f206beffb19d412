package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hondurasarchive/backend/internal/storage"
	"go.uber.org/zap"
)

// ImageOpener is the interface that wraps read access to the image host
type ImageOpener interface {
	// Method Open opens a stored image by its reference.
	//
	// If the image does not exist, an error wrapping storage.ErrObjectNotFound will be returned together with "nil" value.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// MediaHandler serves images from the image host
type MediaHandler struct {
	BaseHandler
	images ImageOpener
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(images ImageOpener, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler: BaseHandler{Logger: logger},
		images:      images,
	}
}

// RegisterRoutes registers the media download route
func (h *MediaHandler) RegisterRoutes(r chi.Router) {
	r.Get(storage.MediaRoutePrefix+"/*", h.DownloadFile)
}

// DownloadFile handles GET /media/*
// @Summary Download image
// @Description Download an archive image from the image host. Supports range requests when the backend can seek.
// @Tags media
// @Produce octet-stream
// @Param key path string true "Object key"
// @Success 200 {file} file "Image content"
// @Failure 404 {object} map[string]string "File not found"
// @Router /media/{key} [get]
func (h *MediaHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	image, err := h.images.Open(r.Context(), key)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			h.Logger.Warn("failed to open image", zap.String("key", key), zap.Error(err))
		}
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}
	defer image.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	if contentType := storage.ContentTypeForKey(key); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	if seeker, ok := image.(io.ReadSeeker); ok {
		var modTime time.Time
		if file, ok := image.(*os.File); ok {
			if info, err := file.Stat(); err == nil {
				modTime = info.ModTime()
			}
		}
		http.ServeContent(w, r, path.Base(key), modTime, seeker)
		return
	}

	if _, err := io.Copy(w, image); err != nil {
		h.Logger.Warn("failed to stream image", zap.String("key", key), zap.Error(err))
	}
}
