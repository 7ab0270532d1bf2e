package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/store"
)

// NewProvider builds the configured remote provider and wraps it with
// Decorate. The offline provider is supplied by the caller, so
// ProviderOffline is rejected here.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("provider %q has no remote implementation", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return Decorate(base, cfg, events, logger), nil
}

// Decorate wraps base as caller → retry → logging → base. events may be nil.
func Decorate(base Provider, cfg Config, events store.EventRepo, logger *zap.Logger) Provider {
	p := base
	if events != nil {
		p = WithLogging(p, events, logger)
	}
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry)
	}
	return p
}
