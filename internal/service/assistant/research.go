package assistant

import (
	"context"
	"fmt"
	"strings"

	"curio/internal/models"
	"curio/internal/service/ai"
)

// ResearchResult holds the analysis of a paper. PaperID is zero when the reply was not persisted.
type ResearchResult struct {
	PaperID int64
	Reply   ai.Reply
}

// AnalyzeResearch reviews a paper and records it with its analysis. Apologies from the generator are
// returned without being stored.
func (s *Service) AnalyzeResearch(ctx context.Context, title, abstract, content string) (*ResearchResult, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(abstract) == "" {
		return nil, ErrMissingPaperFields
	}

	reply := s.generator.Generate(ctx, researchPrompt(title, abstract, content))
	if !reply.Usable() {
		return &ResearchResult{Reply: reply}, nil
	}

	analysis := reply.Text
	paper := &models.ResearchPaper{
		Title:    title,
		Abstract: abstract,
		Content:  content,
		Analysis: &analysis,
	}
	id, err := s.store.SaveResearchPaper(ctx, paper)
	if err != nil {
		return nil, fmt.Errorf("save research paper: %w", err)
	}
	return &ResearchResult{PaperID: id, Reply: reply}, nil
}
