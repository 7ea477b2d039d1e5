package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type EmbedConfig struct {
	// "local" uses the deterministic in-process embedder, "openai" the
	// hosted embeddings endpoint.
	Provider   string `env:"MEDASSIST_EMBED_PROVIDER" envDefault:"local"`
	Model      string `env:"MEDASSIST_EMBED_MODEL" envDefault:"text-embedding-3-small"`
	BaseURL    string `env:"MEDASSIST_EMBED_BASE_URL" envDefault:"https://api.openai.com/v1"`
	APIKey     string `env:"MEDASSIST_EMBED_API_KEY"`
	Dimensions int    `env:"MEDASSIST_EMBED_DIMENSIONS" envDefault:"256"`
}

func NewEmbedConfig(ctx context.Context) *EmbedConfig {
	cfg := &EmbedConfig{}
	if err := env.Parse(cfg); err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("failed to parse Embed config")
	}
	return cfg
}
