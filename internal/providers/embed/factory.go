package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/medassist/internal/config"
	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/pkg/log"
)

func NewEmbedder(ctx context.Context, cfg *config.EmbedConfig) (core.Embedder, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Msg("starting embedder")

	switch cfg.Provider {
	case "local":
		return NewLocal(cfg.Dimensions), nil
	case "openai":
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown embed provider: %s", cfg.Provider)
	}
}
