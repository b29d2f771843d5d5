package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curio/internal/config"
	"curio/internal/logging"
	"curio/internal/storage"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "curio",
	Short:        "Curio science learning assistant API",
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command selected on the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CURIO_CONFIG"), "path to a JSON config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// bootstrap loads configuration, builds the logger and opens the migrated database.
func bootstrap() (*config.Config, *zap.Logger, *sqlx.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.BasicConfig.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	logger.Info("opening database", zap.String("driver", cfg.Database.Driver))
	db, err := storage.Open(cfg.Database)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	// Create necessary tables: chat_messages, file_uploads, research_papers
	if err := storage.Migrate(db); err != nil {
		db.Close()
		logger.Sync()
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return cfg, logger, db, nil
}
