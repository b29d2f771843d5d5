package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"curio/internal/config"
)

const claudeMaxTokens = 3000

// ErrMissingAPIKey is returned when a tier has no credential configured.
var ErrMissingAPIKey = errors.New("api key is not configured")

// NewBackend constructs a chat model for the provider. Gemini models are looked up once so that an
// unknown model or a rejected key fails here rather than on the first request.
func NewBackend(ctx context.Context, p config.ProviderConfig) (Backend, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, fmt.Errorf("%s/%s: %w", p.Provider, p.Model, ErrMissingAPIKey)
	}
	if strings.TrimSpace(p.Model) == "" {
		return nil, fmt.Errorf("%s: model name is required", p.Provider)
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch p.Provider {
	case "gemini", "":
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if cerr != nil {
			return nil, fmt.Errorf("create gemini client: %w", cerr)
		}
		if _, cerr = client.Models.Get(ctx, p.Model, nil); cerr != nil {
			return nil, fmt.Errorf("lookup gemini model %s: %w", p.Model, cerr)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  p.Model,
		})
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: p.BaseURL,
			Model:   p.Model,
			APIKey:  p.APIKey,
		})
	case "claude":
		var baseURL *string
		if p.BaseURL != "" {
			baseURL = &p.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    p.APIKey,
			Model:     p.Model,
			BaseURL:   baseURL,
			MaxTokens: claudeMaxTokens,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", p.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", p.Provider, err)
	}
	return &chatModelBackend{model: chatModel}, nil
}

type chatModelBackend struct {
	model model.BaseChatModel
}

func (b *chatModelBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrNoText
	}
	return resp.Content, nil
}

// stubBackend echoes the prompt and tells the user that the model is unreachable.
type stubBackend struct{}

func (stubBackend) Generate(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("I received your message: '%s'. I've saved this to the database, but I'm currently "+
		"experiencing connection issues with my AI service. Please try again later.", prompt), nil
}
