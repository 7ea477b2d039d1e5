package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/medassist/internal/config"
	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/pkg/log"
)

// NewProvider creates the appropriate Generator based on configuration.
func NewProvider(ctx context.Context, app *config.AppConfig) (core.Generator, error) {
	cfg := config.NewOpenAIConfig(ctx)

	log.FromCtx(ctx).Info().
		Str("provider", app.LLMProvider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch app.LLMProvider {
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model), nil
	case "custom":
		return NewCustomOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", app.LLMProvider)
	}
}
