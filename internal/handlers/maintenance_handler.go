package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NamesNormalizer is the interface that wraps the legacy names normalization pass
type NamesNormalizer interface {
	// Method NormalizeNames rewrites every record whose stored names are not canonical and returns how many changed.
	//
	// If some error occurs, the number of records changed so far will be returned together with the error.
	NormalizeNames(ctx context.Context) (int, error)
}

// MaintenanceHandler exposes maintenance operations meant for operators and schedulers
type MaintenanceHandler struct {
	BaseHandler
	normalizer NamesNormalizer
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(normalizer NamesNormalizer, logger *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		BaseHandler: BaseHandler{Logger: logger},
		normalizer:  normalizer,
	}
}

// RegisterRoutes registers maintenance routes.
// The caller is expected to gate the router with the API key middleware.
func (h *MaintenanceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/maintenance/normalize-names", h.NormalizeNames)
}

// NormalizeNames handles POST /maintenance/normalize-names
// @Summary Normalize stored names
// @Description Rewrite legacy names (comma-separated strings, name objects) into the canonical JSON array. Requires API key authentication.
// @Tags maintenance
// @Produce json
// @Security MaintenanceKey
// @Success 200 {object} map[string]interface{} "Number of records changed"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /maintenance/normalize-names [post]
func (h *MaintenanceHandler) NormalizeNames(w http.ResponseWriter, r *http.Request) {
	changed, err := h.normalizer.NormalizeNames(r.Context())
	if err != nil {
		h.Logger.Error("failed to normalize names", zap.Error(err), zap.Int("changed", changed))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "names normalized",
		"changed": changed,
	})
}
