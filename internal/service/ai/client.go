// Package ai wraps the text generation backends behind a client that never fails a request: every call
// yields user-facing text together with an outcome describing how it was produced.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	MessageEmpty       = "I couldn't generate a response. Please try again."
	MessageRateLimited = "I'm currently experiencing high demand. Please try again in a moment while I'm processing your request."
	MessageUnavailable = "I'm sorry, I'm having trouble connecting to my knowledge source right now. Please try again soon."

	TranslationErrorMarker = "[Translation error]"

	defaultLanguage = "Bengali"
)

// ErrNoText is returned by a Backend whose response carried no text.
var ErrNoText = errors.New("response has no text")

// Backend produces text for a single prompt.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Outcome describes how a Reply was produced.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeEmpty       Outcome = "empty"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeStub        Outcome = "stub"
)

// Reply is the result of one generation call. Text is always safe to show to a user.
type Reply struct {
	Text    string
	Outcome Outcome
	Err     error
}

// Degraded reports whether the text is anything other than a real model answer.
func (r Reply) Degraded() bool {
	return r.Outcome != OutcomeOK
}

// Usable reports whether the text is generated content rather than an apology.
func (r Reply) Usable() bool {
	return r.Outcome == OutcomeOK || r.Outcome == OutcomeStub
}

// TranslationText renders a translation reply for embedding next to another answer.
func (r Reply) TranslationText() string {
	switch r.Outcome {
	case OutcomeOK, OutcomeStub:
		return r.Text
	case OutcomeEmpty:
		return TranslationErrorMarker
	default:
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		return fmt.Sprintf("[Translation failed: %s]", msg)
	}
}

// Client is the process-wide generation client. It is read-only after construction.
type Client struct {
	backend  Backend
	tier     Tier
	model    string
	language string
	logger   *zap.Logger
}

// NewClient binds a backend resolved at the given tier.
func NewClient(backend Backend, tier Tier, model, language string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}
	return &Client{backend: backend, tier: tier, model: model, language: language, logger: logger}
}

// Tier returns the tier that was resolved at startup.
func (c *Client) Tier() Tier { return c.tier }

// Model returns the model name backing the client, empty for the stub.
func (c *Client) Model() string { return c.model }

// Language is the translation target language.
func (c *Client) Language() string { return c.language }

// Generate submits prompt to the backend and classifies the result.
func (c *Client) Generate(ctx context.Context, prompt string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("generation backend panicked", zap.Any("panic", r))
			reply = Reply{Text: MessageUnavailable, Outcome: OutcomeUnavailable, Err: fmt.Errorf("backend panic: %v", r)}
		}
	}()

	text, err := c.backend.Generate(ctx, prompt)
	if err != nil {
		return c.classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return Reply{Text: MessageEmpty, Outcome: OutcomeEmpty, Err: ErrNoText}
	}
	if c.tier == TierStub {
		return Reply{Text: text, Outcome: OutcomeStub}
	}
	return Reply{Text: text, Outcome: OutcomeOK}
}

// Translate asks the backend to translate text into the configured language.
func (c *Client) Translate(ctx context.Context, text string) Reply {
	return c.Generate(ctx, fmt.Sprintf("Translate the following text to %s: %s", c.language, text))
}

func (c *Client) classify(err error) Reply {
	if errors.Is(err, ErrNoText) {
		return Reply{Text: MessageEmpty, Outcome: OutcomeEmpty, Err: err}
	}
	if IsRateLimited(err) {
		c.logger.Warn("generation rate limited", zap.String("tier", c.tier.String()), zap.Error(err))
		return Reply{Text: MessageRateLimited, Outcome: OutcomeRateLimited, Err: err}
	}
	c.logger.Error("generation failed", zap.String("tier", c.tier.String()), zap.Error(err))
	return Reply{Text: MessageUnavailable, Outcome: OutcomeUnavailable, Err: err}
}

// IsRateLimited matches quota and HTTP 429 errors by their message.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "429")
}
