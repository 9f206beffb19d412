package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hondurasarchive/backend/internal/services"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError logs a service error and answers with the status it maps to
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, action string) {
	status := StatusFromError(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("failed to "+action, zap.Error(err))
	} else {
		h.Logger.Warn("failed to "+action, zap.Error(err), zap.Int("status", status))
	}
	h.RespondError(w, status, err.Error())
}

// StatusFromError maps the service error taxonomy to HTTP statuses
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidCredential),
		errors.Is(err, services.ErrDuplicateUser):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseID reads the positive integer {id} URL parameter
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// isJSONRequest reports whether the request body is JSON
func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

// parseForm parses a multipart or urlencoded body
func parseForm(r *http.Request, maxMemory int64) error {
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

// formValue returns the first of keys present in the parsed body, or nil
func formValue(r *http.Request, keys ...string) *string {
	for _, key := range keys {
		if values, ok := r.PostForm[key]; ok && len(values) > 0 {
			v := values[0]
			return &v
		}
	}
	return nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
