package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL       string
	sessionPath  string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "honduras-archive",
	Short: "Honduras archive backend and command line client",
	Long: `Runs the Honduras archive API server and talks to a running server.

	honduras-archive serve
	honduras-archive migrate up
	honduras-archive login --user admin
	honduras-archive search --letter A
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOrDefault("ARCHIVE_API_URL", "http://localhost:5500"), "Base URL of the archive API")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "Session file (defaults to the user config directory)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
}

// @title Honduras Archive API
// @version 1.0
// @description API of the Honduras historical newspaper and portrait archive
// @termsOfService http://swagger.io/terms/

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:5500
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey MaintenanceKey
// @in header
// @name X-API-Key
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
