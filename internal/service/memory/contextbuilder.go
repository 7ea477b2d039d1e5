package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/pkg/log"
)

const (
	DefaultEpisodicTopK        = 3
	DefaultSimilarityThreshold = 0.7

	factsHeader    = "Known facts:"
	sessionHeader  = "Current session data:"
	historyHeader  = "Recent conversation (most recent first):"
	episodicHeader = "Related past discussions:"
)

// BuildRequest carries everything one context assembly needs.
type BuildRequest struct {
	Query           string
	History         []core.ConversationTurn
	SessionItems    []core.DataItem
	TokenBudget     int
	IncludeEpisodic bool
	IncludeSemantic bool
}

type tier struct {
	header string
	items  []string
}

// Builder assembles a single bounded context string from the memory tiers,
// in priority order: facts, session data, recent turns, episodic matches.
// The estimate of the returned string never exceeds the budget.
type Builder struct {
	episodes      core.EpisodeRepository
	facts         core.FactRepository
	embedder      core.Embedder
	topK          int
	minSimilarity float32
}

func NewBuilder(episodes core.EpisodeRepository, facts core.FactRepository, embedder core.Embedder, topK int, minSimilarity float32) *Builder {
	if topK <= 0 {
		topK = DefaultEpisodicTopK
	}
	if minSimilarity <= 0 {
		minSimilarity = DefaultSimilarityThreshold
	}
	return &Builder{
		episodes:      episodes,
		facts:         facts,
		embedder:      embedder,
		topK:          topK,
		minSimilarity: minSimilarity,
	}
}

func (b *Builder) Build(ctx context.Context, req BuildRequest) string {
	var tiers []tier

	if req.IncludeSemantic {
		tiers = append(tiers, tier{factsHeader, b.renderFacts(ctx, req.Query)})
	}
	tiers = append(tiers,
		tier{sessionHeader, renderSessionItems(req.SessionItems)},
		tier{historyHeader, renderHistory(req.History)},
	)
	if req.IncludeEpisodic {
		tiers = append(tiers, tier{episodicHeader, b.renderEpisodes(ctx, req.Query)})
	}

	return assemble(tiers, req.TokenBudget)
}

// assemble keeps whole items per tier while the running estimate stays
// within budget. A tier that cannot fit even one item is skipped entirely,
// header included; nothing is ever cut mid-item.
func assemble(tiers []tier, budget int) string {
	var parts []string
	remaining := budget

	for _, t := range tiers {
		if len(t.items) == 0 {
			continue
		}

		cost := CountTokens(t.header) + 1 // joining newline
		var kept []string
		for _, item := range t.items {
			c := CountTokens(item) + 1
			if cost+c > remaining {
				break
			}
			kept = append(kept, item)
			cost += c
		}
		if len(kept) == 0 {
			continue
		}

		parts = append(parts, t.header)
		parts = append(parts, kept...)
		remaining -= cost
	}

	// Per-item accounting can drift from the joined string's estimate, so
	// enforce the guarantee on the final text.
	result := strings.Join(parts, "\n")
	for CountTokens(result) > budget && len(parts) > 0 {
		parts = parts[:len(parts)-1]
		result = strings.Join(parts, "\n")
	}
	return result
}

func (b *Builder) renderFacts(ctx context.Context, query string) []string {
	if b.facts == nil {
		return nil
	}
	entities := ExtractEntities(query)
	facts, err := b.facts.FactsForEntities(ctx, entities, 5)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("fact lookup failed, skipping tier")
		return nil
	}

	items := make([]string, 0, len(facts))
	for _, f := range facts {
		items = append(items, fmt.Sprintf("- %s (%s confidence)", f.Content, f.Confidence))
	}
	return items
}

// renderSessionItems renders each item as `[key] value` plus an indented
// line per metadata attribute, nested sub-structures as raw JSON so the
// generation step can parse mappings without another retrieval.
func renderSessionItems(items []core.DataItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s", item.Key, item.Value)

		names := make([]string, 0, len(item.Metadata))
		for name := range item.Metadata {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(&b, "\n  %s: %s", name, renderMetadataValue(item.Metadata[name]))
		}
		out = append(out, b.String())
	}
	return out
}

func renderMetadataValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func renderHistory(turns []core.ConversationTurn) []string {
	out := make([]string, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		out = append(out, fmt.Sprintf("%s: %s", turns[i].Role, turns[i].Content))
	}
	return out
}

func (b *Builder) renderEpisodes(ctx context.Context, query string) []string {
	if b.episodes == nil || b.embedder == nil {
		return nil
	}
	logger := log.FromCtx(ctx)

	vec, err := b.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("query embedding failed, skipping episodic tier")
		return nil
	}

	matches, err := b.episodes.SearchSimilar(ctx, vec, b.topK, b.minSimilarity)
	if err != nil {
		logger.Warn().Err(err).Msg("episodic search failed, skipping tier")
		return nil
	}

	items := make([]string, 0, len(matches))
	for _, m := range matches {
		items = append(items, "- "+excerpt(m.Text, 200))
	}
	return items
}

func excerpt(text string, maxChars int) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "..."
}
