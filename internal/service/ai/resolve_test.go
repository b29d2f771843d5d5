package ai

import (
	"context"
	"errors"
	"testing"

	"curio/internal/config"
)

func testGenerationConfig() config.GenerationConfig {
	return config.GenerationConfig{
		TranslationLanguage: "Bengali",
		Primary:             config.ProviderConfig{Provider: "gemini", Model: "gemini-1.5-flash", APIKey: "k"},
		Secondary:           config.ProviderConfig{Provider: "gemini", Model: "gemini-pro", APIKey: "k"},
	}
}

func TestResolveTiers(t *testing.T) {
	tests := []struct {
		name  string
		fails map[string]bool
		tier  Tier
		model string
	}{
		{"primary", nil, TierPrimary, "gemini-1.5-flash"},
		{"secondary", map[string]bool{"gemini-1.5-flash": true}, TierSecondary, "gemini-pro"},
		{"stub", map[string]bool{"gemini-1.5-flash": true, "gemini-pro": true}, TierStub, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempted []string
			build := func(_ context.Context, p config.ProviderConfig) (Backend, error) {
				attempted = append(attempted, p.Model)
				if tt.fails[p.Model] {
					return nil, errors.New("model not found")
				}
				return &fakeBackend{text: "answer from " + p.Model}, nil
			}
			c := Resolve(context.Background(), testGenerationConfig(), build, nil)
			if c.Tier() != tt.tier || c.Model() != tt.model {
				t.Fatalf("resolved %s/%q, want %s/%q", c.Tier(), c.Model(), tt.tier, tt.model)
			}
			if tt.tier == TierPrimary && len(attempted) != 1 {
				t.Fatalf("secondary should not be attempted, got %v", attempted)
			}
		})
	}
}

func TestResolveWithoutKeyFallsBackToStub(t *testing.T) {
	cfg := testGenerationConfig()
	cfg.Primary.APIKey = ""
	cfg.Secondary.APIKey = ""

	c := Resolve(context.Background(), cfg, NewBackend, nil)
	if c.Tier() != TierStub {
		t.Fatalf("expected stub tier, got %s", c.Tier())
	}
	if reply := c.Generate(context.Background(), "hi"); reply.Outcome != OutcomeStub {
		t.Fatalf("expected stub outcome, got %+v", reply)
	}
}

func TestNewBackendRejectsMissingKey(t *testing.T) {
	_, err := NewBackend(context.Background(), config.ProviderConfig{Provider: "openai", Model: "gpt-4o-mini"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestTierString(t *testing.T) {
	if TierPrimary.String() != "primary" || TierSecondary.String() != "secondary" || TierStub.String() != "stub" {
		t.Fatalf("unexpected tier names")
	}
}
