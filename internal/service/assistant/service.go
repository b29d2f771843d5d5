// Package assistant orchestrates generation, extraction and persistence for each request.
package assistant

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"curio/internal/models"
	"curio/internal/service/ai"
	"curio/internal/service/document"
)

var (
	ErrEmptyMessage       = errors.New("message is required")
	ErrEmptyText          = errors.New("text is required")
	ErrMissingPaperFields = errors.New("title and abstract are required")
	ErrNoFilename         = errors.New("file name is required")
	ErrEmptyUpload        = errors.New("uploaded file is empty")
	ErrUnsupportedFile    = errors.New("unsupported document type")
	ErrFileNotFound       = errors.New("file not found")
)

// Store is the persistence the service depends on.
type Store interface {
	Ping(ctx context.Context) error
	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) (int64, error)
	ListChatHistory(ctx context.Context) ([]models.ChatMessage, error)
	SaveFileUpload(ctx context.Context, f *models.FileUpload) (int64, error)
	SaveResearchPaper(ctx context.Context, p *models.ResearchPaper) (int64, error)
}

// Generator produces text. *ai.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) ai.Reply
	Translate(ctx context.Context, text string) ai.Reply
	Tier() ai.Tier
	Model() string
	Language() string
}

// Service handles chat, translation, uploads and research analysis.
type Service struct {
	store     Store
	generator Generator
	extractor *document.Extractor
	uploadDir string
	logger    *zap.Logger
}

// NewService builds a new assistant service.
func NewService(store Store, generator Generator, extractor *document.Extractor, uploadDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		generator: generator,
		extractor: extractor,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Status describes the active generation tier and database reachability.
type Status struct {
	Tier     ai.Tier
	Model    string
	Language string
	Database error
}

// Status pings the database and reports the generator resolved at startup.
func (s *Service) Status(ctx context.Context) Status {
	return Status{
		Tier:     s.generator.Tier(),
		Model:    s.generator.Model(),
		Language: s.generator.Language(),
		Database: s.store.Ping(ctx),
	}
}
