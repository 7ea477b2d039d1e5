package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/internal/storage/convfile"
)

func userTurn(content string) core.ConversationTurn {
	return core.ConversationTurn{Role: core.RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

func TestHistoryWindowEvictsOldestFirst(t *testing.T) {
	h := NewHistory(3, nil)
	ctx := context.Background()

	for _, c := range []string{"one", "two", "three", "four"} {
		h.Append(ctx, "s1", userTurn(c))
	}

	turns := h.Turns(ctx, "s1")
	require.Len(t, turns, 3)
	assert.Equal(t, "two", turns[0].Content)
	assert.Equal(t, "four", turns[2].Content)
}

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	h := NewHistory(5, nil)
	ctx := context.Background()

	assert.Empty(t, h.Turns(ctx, "ghost"))
	assert.Zero(t, h.TurnCount(ctx, "ghost"))
}

func TestHistoryStats(t *testing.T) {
	h := NewHistory(10, nil)
	ctx := context.Background()

	h.Append(ctx, "s1", userTurn("find codes"))
	h.Append(ctx, "s1", core.ConversationTurn{Role: core.RoleAssistant, Content: "found", AgentType: "code_search"})

	stats := h.Stats(ctx, "s1")
	assert.Equal(t, 1, stats["role:user"])
	assert.Equal(t, 1, stats["role:assistant"])
	assert.Equal(t, 1, stats["agent:code_search"])
}

func TestHistoryPersistAndRestore(t *testing.T) {
	dir := t.TempDir()
	store, err := convfile.NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	h := NewHistory(10, store)
	h.Append(ctx, "s1", userTurn("remember me"))

	// A fresh History backed by the same directory restores the window.
	h2 := NewHistory(10, store)
	turns := h2.Turns(ctx, "s1")
	require.Len(t, turns, 1)
	assert.Equal(t, "remember me", turns[0].Content)
}

func TestHistoryClearDeletesSaved(t *testing.T) {
	store, err := convfile.NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	h := NewHistory(10, store)
	h.Append(ctx, "s1", userTurn("gone soon"))
	h.Clear(ctx, "s1")

	assert.Empty(t, h.Turns(ctx, "s1"))

	h2 := NewHistory(10, store)
	assert.Empty(t, h2.Turns(ctx, "s1"))
}

func TestHistoryFormatRecent(t *testing.T) {
	h := NewHistory(10, nil)
	ctx := context.Background()

	h.Append(ctx, "s1", userTurn("hello"))
	h.Append(ctx, "s1", core.ConversationTurn{Role: core.RoleAssistant, Content: "hi there"})

	out := h.FormatRecent(ctx, "s1", 2)
	assert.Equal(t, "user: hello\nassistant: hi there\n", out)
}
