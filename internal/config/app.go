package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medassist/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MEDASSIST_RUNTIME_PATH" envDefault:".medassist"`
	// Allow selecting the generation provider
	LLMProvider string `env:"MEDASSIST_LLM_PROVIDER" envDefault:"openai"`

	// Conversation and memory tuning
	HistoryWindow       int     `env:"MEDASSIST_HISTORY_WINDOW" envDefault:"20"`
	ContextTokenBudget  int     `env:"MEDASSIST_CONTEXT_TOKEN_BUDGET" envDefault:"2000"`
	ExtractionInterval  int     `env:"MEDASSIST_EXTRACTION_INTERVAL" envDefault:"5"`
	EpisodicTopK        int     `env:"MEDASSIST_EPISODIC_TOP_K" envDefault:"3"`
	SimilarityThreshold float64 `env:"MEDASSIST_SIMILARITY_THRESHOLD" envDefault:"0.7"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "medassist.db")
}

func (c AppConfig) GetConversationsPath() string {
	return filepath.Join(c.RuntimePath, "conversations")
}
