package core

import "context"

type EpisodeRepository interface {
	AddEpisode(ctx context.Context, ep Episode) error
	SearchSimilar(ctx context.Context, vector []float32, limit int, minSimilarity float32) ([]EpisodeMatch, error)
	DeleteEpisode(ctx context.Context, turnID string) error
	CountEpisodes(ctx context.Context) (int, error)
}

type FactRepository interface {
	AddFact(ctx context.Context, f Fact) error
	FactsForEntities(ctx context.Context, entities []string, limit int) ([]Fact, error)
	CountFacts(ctx context.Context) (int, error)
}
