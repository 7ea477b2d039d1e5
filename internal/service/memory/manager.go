package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/pkg/log"
)

const DefaultExtractionInterval = 5

// Manager orchestrates the long-term memory tiers: every turn is appended
// to history and written to the episodic store, and every N turns a fact
// extraction task is queued. All memory writes are best-effort; a degraded
// memory subsystem never breaks the visible conversation.
type Manager struct {
	history   *History
	episodes  core.EpisodeRepository
	facts     core.FactRepository
	embedder  core.Embedder
	generator core.Generator
	builder   *Builder
	interval  int

	mu       sync.Mutex
	counters map[string]int
	wg       sync.WaitGroup
}

func NewManager(
	history *History,
	episodes core.EpisodeRepository,
	facts core.FactRepository,
	embedder core.Embedder,
	generator core.Generator,
	builder *Builder,
	extractionInterval int,
) *Manager {
	if extractionInterval <= 0 {
		extractionInterval = DefaultExtractionInterval
	}
	return &Manager{
		history:   history,
		episodes:  episodes,
		facts:     facts,
		embedder:  embedder,
		generator: generator,
		builder:   builder,
		interval:  extractionInterval,
		counters:  make(map[string]int),
	}
}

func (m *Manager) History() *History {
	return m.history
}

// ProcessTurn records a completed turn. History is always appended; the
// episodic write and the periodic fact extraction are best-effort.
func (m *Manager) ProcessTurn(ctx context.Context, sessionID, query, response, agentType string) {
	now := time.Now().UTC()
	m.history.Append(ctx, sessionID, core.ConversationTurn{
		Role:      core.RoleUser,
		Content:   query,
		Timestamp: now,
	})
	m.history.Append(ctx, sessionID, core.ConversationTurn{
		Role:      core.RoleAssistant,
		Content:   response,
		AgentType: agentType,
		Timestamp: now,
	})

	if err := m.storeEpisode(ctx, sessionID, query, response); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("episode storage failed")
	}

	m.mu.Lock()
	m.counters[sessionID]++
	due := m.counters[sessionID]%m.interval == 0
	m.mu.Unlock()

	if due {
		// Queued after the response so extraction latency and failures
		// stay invisible to the turn that triggered it.
		turns := m.history.Turns(ctx, sessionID)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.extractFacts(ctx, sessionID, turns)
		}()
	}
}

func (m *Manager) storeEpisode(ctx context.Context, sessionID, query, response string) error {
	if m.embedder == nil || m.episodes == nil {
		return nil
	}

	text := fmt.Sprintf("User: %s\nAssistant: %s", query, response)
	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed turn: %w", err)
	}

	return m.episodes.AddEpisode(ctx, core.Episode{
		TurnID:       uuid.NewString(),
		SessionID:    sessionID,
		Text:         text,
		QueryPreview: excerpt(query, 80),
		Embedding:    vec,
		CreatedAt:    time.Now().UTC(),
	})
}

// GetRelevantContext resolves the entity set from the query and hands off
// to the ContextBuilder.
func (m *Manager) GetRelevantContext(ctx context.Context, sessionID, query string, sessionItems []core.DataItem, tokenBudget int, includeEpisodic, includeSemantic bool) string {
	return m.builder.Build(ctx, BuildRequest{
		Query:           query,
		History:         m.history.Turns(ctx, sessionID),
		SessionItems:    sessionItems,
		TokenBudget:     tokenBudget,
		IncludeEpisodic: includeEpisodic,
		IncludeSemantic: includeSemantic,
	})
}

func (m *Manager) extractFacts(ctx context.Context, sessionID string, turns []core.ConversationTurn) {
	logger := log.FromCtx(ctx).With().Str("session", sessionID).Logger()

	if m.generator == nil || m.facts == nil {
		return
	}

	conversation := formatConversation(turns)
	if conversation == "" {
		return
	}

	resp, err := m.generator.Complete(ctx, extractionSystemPrompt, buildExtractionPrompt(conversation))
	if err != nil {
		logger.Warn().Err(err).Msg("fact extraction call failed")
		return
	}

	facts, err := parseExtractionResponse(resp)
	if err != nil {
		logger.Warn().Err(err).Msg("fact extraction response unparseable")
		return
	}

	for _, f := range facts {
		fact := core.Fact{
			ID:         uuid.NewString(),
			Content:    f.Content,
			Confidence: f.Confidence,
			Entities:   f.Entities,
			CreatedAt:  time.Now().UTC(),
		}
		if err := m.facts.AddFact(ctx, fact); err != nil {
			logger.Warn().Err(err).Msg("failed to save extracted fact")
			continue
		}
		logger.Debug().Str("confidence", fact.Confidence).Msg("fact extracted")
	}
}

func formatConversation(turns []core.ConversationTurn) string {
	var b strings.Builder
	for _, t := range turns {
		if t.Role == core.RoleSystem {
			continue
		}
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// Close drains in-flight extraction tasks.
func (m *Manager) Close() {
	m.wg.Wait()
}
