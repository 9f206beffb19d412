package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/hondurasarchive/backend/docs"
	"github.com/hondurasarchive/backend/internal/auth/service"
	"github.com/hondurasarchive/backend/internal/config"
	"github.com/hondurasarchive/backend/internal/database"
	"github.com/hondurasarchive/backend/internal/handlers"
	"github.com/hondurasarchive/backend/internal/logger"
	"github.com/hondurasarchive/backend/internal/repositories"
	"github.com/hondurasarchive/backend/internal/services"
	"github.com/hondurasarchive/backend/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the archive API server",
	Long: `Connects to MySQL, applies pending migrations and serves the archive API
until SIGINT or SIGTERM is received.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := logger.Init(cfg.Logging.Level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.Logger.Info("Starting Honduras Archive API")

	// Connect to database
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		logger.Logger.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db, database.MigrationsPath()); err != nil {
		logger.Logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	// Initialize image host
	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Logger.Error("Failed to initialize image storage", zap.Error(err))
		return err
	}
	if err := images.EnsureBucket(ctx); err != nil {
		logger.Logger.Error("Failed to prepare image storage", zap.Error(err), zap.String("backend", cfg.Storage.Backend))
		return err
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	archiveRepo := repositories.NewArchiveRepository(db, logger.Logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenGenerator, logger.Logger)
	adminService := services.NewAdminService(userRepo, logger.Logger)
	archiveService := services.NewArchiveService(archiveRepo, images, cfg.DefaultCountry, logger.Logger)

	routerCfg := handlers.RouterConfig{
		AuthService:        authService,
		AdminService:       adminService,
		ArchiveService:     archiveService,
		NamesNormalizer:    archiveService,
		DB:                 db,
		Media:              images,
		TokenGenerator:     tokenGenerator,
		Logger:             logger.Logger,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		APIKey:             cfg.APIKey,
		TokenExpiry:        cfg.JWT.AccessTokenExpiry,
		SwaggerDocURL:      fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handlers.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		logger.Logger.Error("Server failed to start", zap.Error(err))
		return err
	case <-quit:
	}

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let pending image deletions finish before the process exits
	archiveService.Wait()
	if err := images.Close(); err != nil {
		logger.Logger.Warn("Failed to close image storage", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
	return nil
}
