package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/pkg/log"
)

const DefaultHistoryWindow = 20

// Persister saves one conversation per file; convfile.Store implements it.
type Persister interface {
	Save(sessionID string, turns []core.ConversationTurn) error
	Load(sessionID string) ([]core.ConversationTurn, error)
	Delete(sessionID string) error
}

// History keeps a bounded FIFO window of raw turns per session. Writes go
// through a best-effort persister so conversations survive restarts; a
// persistence failure never breaks the in-memory window.
type History struct {
	mu        sync.RWMutex
	window    int
	turns     map[string][]core.ConversationTurn
	loaded    map[string]bool
	persister Persister
}

func NewHistory(window int, persister Persister) *History {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &History{
		window:    window,
		turns:     make(map[string][]core.ConversationTurn),
		loaded:    make(map[string]bool),
		persister: persister,
	}
}

// ensureLoaded restores a saved conversation the first time a session is
// touched. Callers must hold the write lock.
func (h *History) ensureLoaded(ctx context.Context, sessionID string) {
	if h.loaded[sessionID] || h.persister == nil {
		return
	}
	h.loaded[sessionID] = true

	saved, err := h.persister.Load(sessionID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("failed to restore conversation")
		return
	}
	if len(saved) > h.window {
		saved = saved[len(saved)-h.window:]
	}
	h.turns[sessionID] = saved
}

func (h *History) Append(ctx context.Context, sessionID string, turn core.ConversationTurn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ensureLoaded(ctx, sessionID)

	turns := append(h.turns[sessionID], turn)
	if len(turns) > h.window {
		turns = turns[len(turns)-h.window:]
	}
	h.turns[sessionID] = turns

	if h.persister != nil {
		if err := h.persister.Save(sessionID, turns); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("failed to persist conversation")
		}
	}
}

func (h *History) Turns(ctx context.Context, sessionID string) []core.ConversationTurn {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ensureLoaded(ctx, sessionID)
	return append([]core.ConversationTurn(nil), h.turns[sessionID]...)
}

func (h *History) TurnCount(ctx context.Context, sessionID string) int {
	return len(h.Turns(ctx, sessionID))
}

// Stats counts turns per role and per agent type.
func (h *History) Stats(ctx context.Context, sessionID string) map[string]int {
	stats := make(map[string]int)
	for _, t := range h.Turns(ctx, sessionID) {
		stats["role:"+t.Role]++
		if t.AgentType != "" {
			stats["agent:"+t.AgentType]++
		}
	}
	return stats
}

// FormatRecent renders up to n turns, oldest first, for prompt context.
func (h *History) FormatRecent(ctx context.Context, sessionID string, n int) string {
	turns := h.Turns(ctx, sessionID)
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	return b.String()
}

func (h *History) Clear(ctx context.Context, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.turns, sessionID)
	h.loaded[sessionID] = true

	if h.persister != nil {
		if err := h.persister.Delete(sessionID); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("failed to delete saved conversation")
		}
	}
}
