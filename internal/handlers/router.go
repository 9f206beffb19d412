package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/hondurasarchive/backend/internal/auth/middleware"
	"github.com/hondurasarchive/backend/internal/auth/service"
	loggerMiddleware "github.com/hondurasarchive/backend/internal/logger/middleware"
	"github.com/hondurasarchive/backend/internal/middlewares"
	"github.com/hondurasarchive/backend/internal/models"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// RouterConfig holds everything the HTTP API is built from
type RouterConfig struct {
	AuthService     AuthService
	AdminService    AdminService
	ArchiveService  ArchiveService
	NamesNormalizer NamesNormalizer
	DB              Pinger
	// Media serves /media/* from the image host, nil disables the route
	Media          ImageOpener
	TokenGenerator *service.TokenGenerator
	Logger         *zap.Logger

	AllowedOrigins     []string
	RateLimitPerMinute int
	MaxRequestSize     int64
	APIKey             string
	TokenExpiry        time.Duration
	SwaggerDocURL      string
}

// NewRouter wires middlewares, handlers and route groups into a chi router
func NewRouter(cfg RouterConfig) chi.Router {
	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger, cfg.TokenExpiry)
	adminHandler := NewAdminHandler(cfg.AdminService, cfg.Logger)
	archiveHandler := NewArchiveHandler(cfg.ArchiveService, cfg.Logger)
	maintenanceHandler := NewMaintenanceHandler(cfg.NamesNormalizer, cfg.Logger)

	optionalAuthMiddleware := middleware.OptionalAuthMiddleware(cfg.TokenGenerator)
	adminMiddleware := middleware.RoleMiddleware(cfg.TokenGenerator, models.RoleAdmin)
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	maxRequestSize := cfg.MaxRequestSize
	if maxRequestSize <= 0 {
		maxRequestSize = middlewares.DefaultMaxRequestSize
	}

	r := chi.NewRouter()

	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(cfg.Logger))
	r.Use(middlewares.RecoveryMiddleware(cfg.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	if cfg.SwaggerDocURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(cfg.SwaggerDocURL)))
	}

	if cfg.DB != nil {
		NewHealthHandler(cfg.DB, cfg.Logger).RegisterRoutes(r)
	}
	if cfg.Media != nil {
		NewMediaHandler(cfg.Media, cfg.Logger).RegisterRoutes(r)
	}

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, optionalAuthMiddleware)
		archiveHandler.RegisterRoutes(r, adminMiddleware)
		// Register admin routes with role middleware
		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			adminHandler.RegisterRoutes(r)
		})
		// Register maintenance routes with API key middleware
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			maintenanceHandler.RegisterRoutes(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		authHandler.RespondError(w, http.StatusNotFound, "route not found")
	})

	return r
}
