package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curio/internal/api"
	"curio/internal/service/ai"
	"curio/internal/service/assistant"
	"curio/internal/service/document"
	"curio/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer db.Close()

	if err := os.MkdirAll(cfg.BasicConfig.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload directory %s: %w", cfg.BasicConfig.UploadDir, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	extractor, err := document.NewExtractor(ctx, logger.Named("document"))
	if err != nil {
		return fmt.Errorf("init document extractor: %w", err)
	}
	generator := ai.Resolve(ctx, cfg.Generation, ai.NewBackend, logger.Named("ai"))

	assistantService := assistant.NewService(
		storage.NewStore(db),
		generator,
		extractor,
		cfg.BasicConfig.UploadDir,
		logger.Named("assistant"),
	)
	handlers := api.NewHandler(assistantService, logger.Named("api"))

	if cfg.BasicConfig.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger.Named("http")), api.BodyLimit(cfg.BasicConfig.MaxRequestBytes))
	router.MaxMultipartMemory = cfg.BasicConfig.MaxRequestBytes
	handlers.RegisterRoutes(router)

	logger.Info("server starting",
		zap.String("addr", cfg.BasicConfig.ServerAddress),
		zap.String("generator_tier", generator.Tier().String()),
		zap.String("model", generator.Model()),
	)
	if err := router.Run(cfg.BasicConfig.ServerAddress); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
