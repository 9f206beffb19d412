package main

import (
	"fmt"

	"github.com/hondurasarchive/backend/internal/config"
	"github.com/hondurasarchive/backend/internal/database"
	"github.com/hondurasarchive/backend/internal/logger"
	"github.com/hondurasarchive/backend/internal/repositories"
	"github.com/hondurasarchive/backend/internal/services"
	"github.com/spf13/cobra"
)

var (
	normalizeRemote bool
	normalizeAPIKey string
)

// normalizeCmd rewrites legacy names columns into the canonical JSON array
var normalizeCmd = &cobra.Command{
	Use:   "normalize-names",
	Short: "Rewrite stored record names into the canonical form",
	Long: `Rewrites every record whose names column is not a canonical JSON array.

By default the command connects to the database directly. With --remote it calls the
maintenance endpoint of a running server, authenticated by --api-key (or API_KEY).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			changed int
			err     error
		)
		if normalizeRemote {
			changed, err = newAPIClient().NormalizeNames(cmd.Context(), normalizeAPIKey)
		} else {
			changed, err = normalizeLocal(cmd)
		}
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), map[string]int{"changed": changed}, func() string {
			return fmt.Sprintf("%d record(s) normalized", changed)
		})
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().BoolVar(&normalizeRemote, "remote", false, "Run through the API instead of the database")
	normalizeCmd.Flags().StringVar(&normalizeAPIKey, "api-key", envOrDefault("API_KEY", ""), "Maintenance API key used with --remote")
}

func normalizeLocal(cmd *cobra.Command) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		return 0, fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cmd.Context(), cfg.DSN())
	if err != nil {
		return 0, err
	}
	defer db.Close()

	repo := repositories.NewArchiveRepository(db, logger.Logger)
	// Normalization never touches images
	svc := services.NewArchiveService(repo, nil, cfg.DefaultCountry, logger.Logger)
	return svc.NormalizeNames(cmd.Context())
}
