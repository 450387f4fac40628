// cmd/main.go
package main

import (
	"go-account-api/app"
	"go-account-api/config"
	"go-account-api/db"
	"go-account-api/logger"
	"os"

	"github.com/spf13/cobra"
)

// @title           Go-Account API
// @version         1.0
// @description     Account registration and error rendering service.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return nil, err
		}
		logger.Init(cfg.Log.Level, cfg.Log.Format)
		logger.Log.Info("Configuration loaded successfully")
		return cfg, nil
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return app.Run(cfg)
		},
	}

	migrateCmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if args[0] == "down" {
				return db.MigrateDown(cfg.DSN())
			}
			return db.MigrateUp(cfg.DSN())
		},
	}

	root := &cobra.Command{
		Use:          "go-account-api",
		Short:        "Account registration service",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yml")
	root.AddCommand(serve, migrateCmd)
	return root
}
