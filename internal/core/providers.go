package core

import "context"

// SearchProvider resolves a query against the structured-search backend.
// Implementations must preserve every field the backend returns.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]Record, error)
}

// Embedder turns text into a fixed-dimension vector. Must be deterministic
// for identical input so similarity search stays stable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator is the hosted chat-completion collaborator.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
