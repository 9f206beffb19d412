package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hondurasarchive/backend/internal/models"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for user management
type AdminService interface {
	// Method ListUsers returns every user, newest first.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	ListUsers(ctx context.Context) ([]models.UserListItem, error)
	// Method UpdateUser changes the role and/or password of a user.
	//
	// "id" parameter is used to identify the user.
	// "req" parameter contains the optional new role and password.
	//
	// If user not found, or the role or password is invalid, or some other error occurs, the error will be returned together with "nil" value.
	UpdateUser(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.User, error)
}

// AdminHandler handles administrative user management requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
	}
}

// RegisterRoutes registers all admin handler routes.
// The caller is expected to gate the router with the admin role middleware.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/users", h.ListUsers)
	r.Put("/auth/update-user/{id}", h.UpdateUser)
	r.Put("/auth/users/role/{id}", h.UpdateUser)
}

// ListUsers handles GET /auth/users
// @Summary List users
// @Description Get every user for the administrative management view, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserListItem
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "list users")
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// UpdateUser handles PUT /auth/update-user/{id} and PUT /auth/users/role/{id}
// @Summary Update user
// @Description Change the role and/or password of a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} map[string]interface{} "User updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/update-user/{id} [put]
// @Router /auth/users/role/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err, "update user")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "user updated successfully",
		"user":    user,
	})
}
