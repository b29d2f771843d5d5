package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"curio/internal/models"
)

const (
	// MaxPaperContentChars bounds research paper content kept in storage.
	MaxPaperContentChars = 10000
	maxTitleChars        = 255
	maxFilenameChars     = 255
)

// Store persists chat exchanges, uploads and research papers. Every save is a single insert.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an opened, migrated database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveChatMessage inserts msg, assigning its id and timestamp.
func (s *Store) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) (int64, error) {
	if msg == nil {
		return 0, errors.New("chat message cannot be nil")
	}
	now := time.Now().UTC()
	id, err := s.insert(ctx,
		`INSERT INTO chat_messages (user_message, bot_response, timestamp, is_translated, is_degraded) VALUES (?, ?, ?, ?, ?)`,
		msg.UserMessage, msg.BotResponse, now, msg.IsTranslated, msg.IsDegraded,
	)
	if err != nil {
		return 0, fmt.Errorf("insert chat message: %w", err)
	}
	msg.ID = id
	msg.Timestamp = now
	return id, nil
}

// ListChatHistory returns every chat message, newest first.
func (s *Store) ListChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.SelectContext(ctx, &messages,
		`SELECT id, user_message, bot_response, timestamp, is_translated, is_degraded
		 FROM chat_messages ORDER BY timestamp DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	return messages, nil
}

// SaveFileUpload inserts upload metadata, assigning its id and timestamp.
func (s *Store) SaveFileUpload(ctx context.Context, f *models.FileUpload) (int64, error) {
	if f == nil {
		return 0, errors.New("file upload cannot be nil")
	}
	if f.StoredFilename == "" {
		return 0, errors.New("stored filename is required")
	}
	fileType := f.FileType
	if fileType == "" {
		fileType = "unknown"
	}
	now := time.Now().UTC()
	original := capRunes(f.OriginalFilename, maxFilenameChars)
	id, err := s.insert(ctx,
		`INSERT INTO file_uploads (original_filename, stored_filename, file_path, file_type, upload_timestamp, analysis) VALUES (?, ?, ?, ?, ?, ?)`,
		original, f.StoredFilename, f.FilePath, fileType, now, f.Analysis,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file upload: %w", err)
	}
	f.ID = id
	f.OriginalFilename = original
	f.FileType = fileType
	f.UploadTimestamp = now
	return id, nil
}

// SaveResearchPaper inserts a paper submission. Content beyond MaxPaperContentChars is dropped.
func (s *Store) SaveResearchPaper(ctx context.Context, p *models.ResearchPaper) (int64, error) {
	if p == nil {
		return 0, errors.New("research paper cannot be nil")
	}
	now := time.Now().UTC()
	title := capRunes(p.Title, maxTitleChars)
	content := capRunes(p.Content, MaxPaperContentChars)
	id, err := s.insert(ctx,
		`INSERT INTO research_papers (title, abstract, content, analysis, submission_timestamp) VALUES (?, ?, ?, ?, ?)`,
		title, p.Abstract, content, p.Analysis, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert research paper: %w", err)
	}
	p.ID = id
	p.Title = title
	p.Content = content
	p.SubmissionTimestamp = now
	return id, nil
}

// insert runs a single INSERT written with '?' placeholders and returns the new row id.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	query = s.db.Rebind(query)
	if s.db.DriverName() == "postgres" {
		var id int64
		if err := s.db.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func capRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
