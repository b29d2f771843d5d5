package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"curio/internal/models"
	"curio/internal/service/ai"
)

// ChatResult is the reply to one chat message.
type ChatResult struct {
	MessageID   int64
	Response    string
	Translation string
	Translated  bool
	Outcome     ai.Outcome
}

// Chat generates a reply, optionally translates it and records the exchange. Degraded replies are
// stored as well, flagged as such.
func (s *Service) Chat(ctx context.Context, message string, translate bool) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	reply := s.generator.Generate(ctx, message)
	result := &ChatResult{Response: reply.Text, Outcome: reply.Outcome}
	if translate && reply.Usable() {
		result.Translation = s.generator.Translate(ctx, reply.Text).TranslationText()
		result.Translated = true
	}

	record := &models.ChatMessage{
		UserMessage:  message,
		BotResponse:  reply.Text,
		IsTranslated: result.Translated,
		IsDegraded:   reply.Degraded(),
	}
	id, err := s.store.SaveChatMessage(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("save chat: %w", err)
	}
	result.MessageID = id
	s.logger.Debug("chat recorded",
		zap.Int64("id", id),
		zap.String("outcome", string(reply.Outcome)),
		zap.Bool("translated", result.Translated),
	)
	return result, nil
}

// Translate renders text in the configured language.
func (s *Service) Translate(ctx context.Context, text string) (ai.Reply, error) {
	if strings.TrimSpace(text) == "" {
		return ai.Reply{}, ErrEmptyText
	}
	return s.generator.Translate(ctx, text), nil
}

// History returns every recorded chat exchange, newest first.
func (s *Service) History(ctx context.Context) ([]models.ChatMessage, error) {
	history, err := s.store.ListChatHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return history, nil
}
