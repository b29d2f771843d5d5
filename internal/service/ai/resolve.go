package ai

import (
	"context"

	"go.uber.org/zap"

	"curio/internal/config"
)

// Tier identifies which backend a Client was resolved to.
type Tier int

const (
	TierPrimary Tier = iota
	TierSecondary
	TierStub
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierStub:
		return "stub"
	default:
		return "unknown"
	}
}

// BuildFunc constructs a backend for one configured tier.
type BuildFunc func(ctx context.Context, p config.ProviderConfig) (Backend, error)

// Resolve tries the primary tier, then the secondary, and falls back to the echoing stub when neither
// can be constructed. It never fails.
func Resolve(ctx context.Context, cfg config.GenerationConfig, build BuildFunc, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if build == nil {
		build = NewBackend
	}

	tiers := []struct {
		tier     Tier
		provider config.ProviderConfig
	}{
		{TierPrimary, cfg.Primary},
		{TierSecondary, cfg.Secondary},
	}
	for _, t := range tiers {
		backend, err := build(ctx, t.provider)
		if err != nil {
			logger.Warn("generation tier unavailable",
				zap.String("tier", t.tier.String()),
				zap.String("provider", t.provider.Provider),
				zap.String("model", t.provider.Model),
				zap.Error(err),
			)
			continue
		}
		logger.Info("generation tier resolved",
			zap.String("tier", t.tier.String()),
			zap.String("provider", t.provider.Provider),
			zap.String("model", t.provider.Model),
		)
		return NewClient(backend, t.tier, t.provider.Model, cfg.TranslationLanguage, logger)
	}

	logger.Warn("no generation backend available, running in degraded mode")
	return NewClient(stubBackend{}, TierStub, "", cfg.TranslationLanguage, logger)
}
