package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"curio/internal/models"
	"curio/internal/service/document"
)

// UploadResult describes a stored upload.
type UploadResult struct {
	File     *models.FileUpload
	Analysis string
	Summary  *document.Summary
}

// StoreUpload writes body under a generated name, analyzes it when it is a readable document and
// records the upload. The file is removed again if the record cannot be saved.
func (s *Service) StoreUpload(ctx context.Context, filename string, body io.Reader) (*UploadResult, error) {
	original := filepath.Base(strings.TrimSpace(strings.ReplaceAll(filename, "\\", "/")))
	if original == "" || original == "." || original == "/" {
		return nil, ErrNoFilename
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(original))
	path := filepath.Join(s.uploadDir, stored)
	if err := writeAtomic(path, body); err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectFile(path)
	fileType := "unknown"
	mediaType := ""
	if err == nil {
		mediaType = mtype.String()
		if major, _, ok := strings.Cut(mediaType, "/"); ok && major != "" {
			fileType = major
		}
	} else {
		s.logger.Warn("detect upload type failed", zap.String("file", stored), zap.Error(err))
	}

	analysis, summary := s.analyzeUpload(ctx, path, original, mediaType, fileType)
	record := &models.FileUpload{
		OriginalFilename: original,
		StoredFilename:   stored,
		FilePath:         path,
		FileType:         fileType,
		Analysis:         &analysis,
	}
	if _, err := s.store.SaveFileUpload(ctx, record); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Error("remove orphaned upload failed", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return &UploadResult{File: record, Analysis: analysis, Summary: summary}, nil
}

func (s *Service) analyzeUpload(ctx context.Context, path, original, mediaType, fileType string) (string, *document.Summary) {
	kind, ok := document.KindForMIME(mediaType)
	if !ok && fileType == "text" {
		kind, ok = document.KindText, true
	}
	if !ok {
		kind, ok = document.KindForFilename(original)
	}
	if !ok {
		return fmt.Sprintf("File uploaded successfully. File type '%s' analysis is not supported.", fileType), nil
	}

	res := s.extractor.ExtractFile(ctx, path, string(kind))
	if !res.Success {
		return fmt.Sprintf("Error analyzing file: %s", res.Error), nil
	}
	summary := document.Summarize(res.Text)
	reply := s.generator.Generate(ctx, uploadPrompt(fileType, res.Text))
	return reply.Text, &summary
}

// UploadPath resolves a stored upload by its generated name.
func (s *Service) UploadPath(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", ErrFileNotFound
	}
	path := filepath.Join(s.uploadDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		return "", ErrFileNotFound
	}
	return path, nil
}

// writeAtomic copies r into a temporary file beside path and renames it into place once the data is on
// disk, so a partially written upload is never visible under its final name.
func writeAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return fmt.Errorf("write upload: %w", err)
	}
	if n == 0 {
		cleanup()
		return ErrEmptyUpload
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename upload: %w", err)
	}
	return nil
}
