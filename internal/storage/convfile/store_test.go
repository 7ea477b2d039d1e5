package convfile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/medassist/internal/core"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	turns := []core.ConversationTurn{
		{Role: core.RoleUser, Content: "find diabetes codes", Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{Role: core.RoleAssistant, Content: "Found E11.9", AgentType: "code_search", Timestamp: time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)},
	}
	require.NoError(t, store.Save("session-1", turns))

	got, err := store.Load("session-1")
	require.NoError(t, err)
	assert.Equal(t, turns, got)
}

func TestLoadMissingConversation(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	got, err := store.Load("never-saved")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("s", []core.ConversationTurn{{Role: core.RoleUser, Content: "hi"}}))
	require.NoError(t, store.Delete("s"))
	require.NoError(t, store.Delete("s"))

	got, err := store.Load("s")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionIDSanitized(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("../../etc/passwd", []core.ConversationTurn{{Role: core.RoleUser, Content: "x"}}))
	got, err := store.Load("../../etc/passwd")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
