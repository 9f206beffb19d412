package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	authmw "github.com/hondurasarchive/backend/internal/auth/middleware"
	"github.com/hondurasarchive/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Signup performs a user data validation and creation and returns the created user.
	//
	// "req" parameter contains username, email, password and optional contact and role.
	// "callerRole" parameter is the role of the authenticated caller, nil for anonymous requests.
	//
	// If user passed invalid data, or such user already exists, or the caller may not grant the requested role, or some other error occurs, the error will be returned together with "nil" value.
	Signup(ctx context.Context, req *models.SignupRequest, callerRole *models.Role) (*models.User, error)
	// Method Login performs a user credentials validation and returns the user descriptor and an access token.
	//
	// "req" parameter contains login (username or email) and password.
	//
	// If user passed invalid credentials, or such user does not exist, services.ErrInvalidCredential will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
	tokenExpiry time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService AuthService,
	logger *zap.Logger,
	tokenExpiry time.Duration,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		tokenExpiry: tokenExpiry,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router, optionalAuth func(http.Handler) http.Handler) {
	r.With(optionalAuth).Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
}

// Signup handles POST /auth/signup
// @Summary Sign up a new user
// @Description Create a user account. The first account of an empty archive becomes admin, later accounts are visitors unless an admin grants another role.
// @Tags auth
// @Accept json,x-www-form-urlencoded,multipart/form-data
// @Produce json
// @Param request body models.SignupRequest true "Signup request"
// @Success 201 {object} map[string]interface{} "User created"
// @Failure 400 {object} map[string]string "Invalid request or user already exists"
// @Failure 403 {object} map[string]string "Role may not be granted by caller"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := parseForm(r, 1<<20); err != nil {
			h.RespondError(w, http.StatusBadRequest, "failed to parse request")
			return
		}
		req = models.SignupRequest{
			Username: r.PostFormValue("username"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			Contact:  r.PostFormValue("contact"),
			WhatsApp: r.PostFormValue("whatsapp"),
			Role:     r.PostFormValue("role"),
		}
	}

	var callerRole *models.Role
	if role, ok := authmw.GetRole(r.Context()); ok {
		callerRole = &role
	}

	user, err := h.authService.Signup(r.Context(), &req, callerRole)
	if err != nil {
		h.RespondServiceError(w, err, "sign up user")
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "user created successfully",
		"user":    user,
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate user with login (email or username) and password. Returns the user and an access token, which is also set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]interface{} "Login successful"
// @Failure 400 {object} map[string]string "Invalid request body or invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := parseForm(r, 1<<20); err != nil {
			h.RespondError(w, http.StatusBadRequest, "failed to parse request")
			return
		}
		req = models.LoginRequest{
			Login:    r.PostFormValue("login"),
			Username: r.PostFormValue("username"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "login user")
		return
	}

	h.setTokenCookie(w, result.Token)

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    result.User,
		"token":   result.Token,
	})
}

// setTokenCookie sets the access token as an HTTP-only cookie
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
