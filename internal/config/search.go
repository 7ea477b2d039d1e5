package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medassist/pkg/log"
)

// SearchConfig points at the structured vocabulary-search backend.
// KeyField and LabelField name the attributes used as record identity and
// display label; every other returned attribute is kept verbatim.
type SearchConfig struct {
	BaseURL    string `env:"MEDASSIST_SEARCH_URL,required,notEmpty"`
	APIKey     string `env:"MEDASSIST_SEARCH_API_KEY"`
	KeyField   string `env:"MEDASSIST_SEARCH_KEY_FIELD" envDefault:"CODE"`
	LabelField string `env:"MEDASSIST_SEARCH_LABEL_FIELD" envDefault:"STR"`
	MaxResults int    `env:"MEDASSIST_SEARCH_MAX_RESULTS" envDefault:"20"`
}

func NewSearchConfig(ctx context.Context) *SearchConfig {
	c := &SearchConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Search config")
	}
	return c
}
