package llm

import (
	"context"
	"fmt"

	"github.com/rahul/planweave/internal/core"
	"github.com/rahul/planweave/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewProvider builds the langchaingo model for a configured provider.
func NewProvider(ctx context.Context, name string, p config.ProviderConfig) (llms.Model, error) {
	switch name {
	case "openai", "openrouter", "deepseek":
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		return openai.New(opts...)
	case "gemini", "googleai":
		opts := []googleai.Option{
			googleai.WithAPIKey(p.APIKey),
			googleai.WithDefaultTemperature(p.Temperature),
			googleai.WithDefaultTopP(p.TopP),
		}
		if p.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(p.Model))
		}
		return googleai.New(ctx, opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(p.Model)}
		if p.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(p.BaseURL))
		}
		return ollama.New(opts...)
	default:
		return nil, core.ErrValidation("UNKNOWN_PROVIDER", fmt.Sprintf("provider %q is not supported", name))
	}
}

// FromConfig builds the Completer for the default provider of cfg.
func FromConfig(ctx context.Context, cfg *config.Config, opts ...ModelOption) (*Model, string, error) {
	name, p := cfg.GetDefaultProvider()
	if name == "" {
		return nil, "", core.ErrValidation("NO_PROVIDER", "no enabled provider found in config")
	}
	model, err := NewProvider(ctx, name, p)
	if err != nil {
		return nil, name, fmt.Errorf("initializing provider %s: %w", name, err)
	}
	opts = append([]ModelOption{
		WithCallTimeout(cfg.Execution.CallTimeout),
		WithSampling(p.Temperature, p.TopP),
	}, opts...)
	return NewModel(model, opts...), name, nil
}
