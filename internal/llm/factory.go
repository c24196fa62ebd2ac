package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/mathsim/internal/store"
	"github.com/rs/zerolog"
)

// Deps carries the optional collaborators of the middleware chain.
type Deps struct {
	EventRepo store.EventRepo
	Observer  CallObserver
	Logger    zerolog.Logger
}

// NewProvider creates a Provider from configuration, wrapped as
// caller → rate limit → retry → logging → base.
func NewProvider(ctx context.Context, cfg Config, deps Deps) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown model provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, deps.EventRepo, WithObserver(deps.Observer), WithLogger(deps.Logger))
	retried := WithRetry(logged, cfg.Retry, deps.Logger)
	limited := WithRateLimit(retried, cfg.RateLimit)

	if cfg.Timeout > 0 {
		return &timeoutProvider{inner: limited, timeout: cfg.Timeout}, nil
	}
	return limited, nil
}

// timeoutProvider bounds each call, retries included.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
