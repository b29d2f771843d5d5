package assistant

import (
	"context"
	"fmt"
	"path/filepath"

	"curio/internal/models"
	"curio/internal/service/ai"
	"curio/internal/service/document"
)

// ExtractionError reports a document whose text could not be extracted.
type ExtractionError struct {
	Result document.Result
}

func (e *ExtractionError) Error() string {
	return e.Result.Error
}

// DocumentInput is a document submitted for analysis.
type DocumentInput struct {
	FileName    string
	ContentType string
	Data        []byte
	SaveToChat  bool
}

// DocumentAnalysis is the extracted text of a document with its statistics and a model review.
type DocumentAnalysis struct {
	FileName string
	FileType document.Kind
	FileSize int
	Text     string
	Summary  document.Summary
	Analysis string
	Outcome  ai.Outcome
}

// AnalyzeDocument extracts the text of a PDF, DOCX or TXT document and asks the generator to explain
// it for a student. When SaveToChat is set the analysis is also recorded as a chat exchange.
func (s *Service) AnalyzeDocument(ctx context.Context, in DocumentInput) (*DocumentAnalysis, error) {
	kind, ok := document.KindForMIME(in.ContentType)
	if !ok {
		kind, ok = document.KindForFilename(in.FileName)
	}
	if !ok || len(in.Data) == 0 {
		return nil, ErrUnsupportedFile
	}

	res := s.extractor.Extract(ctx, in.Data, string(kind))
	if !res.Success {
		return nil, &ExtractionError{Result: res}
	}

	name := filepath.Base(in.FileName)
	reply := s.generator.Generate(ctx, documentPrompt(name, res.Text))
	out := &DocumentAnalysis{
		FileName: name,
		FileType: kind,
		FileSize: len(in.Data),
		Text:     res.Text,
		Summary:  document.Summarize(res.Text),
		Analysis: reply.Text,
		Outcome:  reply.Outcome,
	}

	if in.SaveToChat {
		record := &models.ChatMessage{
			UserMessage: "Analyzed document: " + name,
			BotResponse: reply.Text,
			IsDegraded:  reply.Degraded(),
		}
		if _, err := s.store.SaveChatMessage(ctx, record); err != nil {
			return nil, fmt.Errorf("save document analysis: %w", err)
		}
	}
	return out, nil
}
