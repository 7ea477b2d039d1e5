package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medassist/pkg/log"
)

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY,required,notEmpty"`
	Model   string `env:"MEDASSIST_LLM_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"MEDASSIST_LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OpenAI config")
	}
	return c
}
