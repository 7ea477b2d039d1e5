package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/internal/service/session"
)

type stubSearch struct {
	records []core.Record
	err     error
	calls   int
}

func (s *stubSearch) Search(ctx context.Context, query string) ([]core.Record, error) {
	s.calls++
	return s.records, s.err
}

type countingGenerator struct {
	mu       sync.Mutex
	calls    int
	lastSys  string
	lastUser string
	response string
	err      error
}

func (g *countingGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastSys = system
	g.lastUser = user
	return g.response, g.err
}

func diabetesRecords() []core.Record {
	return []core.Record{
		{
			Key:   "E11.9",
			Label: "Type 2 diabetes mellitus without complications",
			Fields: map[string]any{
				"CODE":     "E11.9",
				"STR":      "Type 2 diabetes mellitus without complications",
				"TTY":      "PT",
				"mappings": map[string]any{"SNOMED": "44054006"},
			},
		},
		{
			Key:   "E11.65",
			Label: "Type 2 diabetes mellitus with hyperglycemia",
			Fields: map[string]any{
				"CODE": "E11.65",
				"STR":  "Type 2 diabetes mellitus with hyperglycemia",
			},
		},
	}
}

func TestRunCommitsResultsAfterFormat(t *testing.T) {
	search := &stubSearch{records: diabetesRecords()}
	gen := &countingGenerator{response: "| code | description |"}
	sessions := session.NewStore()
	w := NewConceptSet(search, gen, sessions)

	out, err := w.Run(context.Background(), "s1", "build a concept set for diabetes")
	require.NoError(t, err)
	assert.Equal(t, "| code | description |", out)

	assert.Equal(t, 1, search.calls)
	assert.Equal(t, 1, gen.calls)

	// Both records committed with their full field set.
	assert.Equal(t, 2, sessions.ItemCount("s1"))
	item := sessions.Get("s1").CurrentData["E11.9"]
	assert.Equal(t, "build a concept set for diabetes", item.SourceQuery)
	mappings, ok := item.Metadata["mappings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "44054006", mappings["SNOMED"])
}

func TestRunEmptyRetrieveSkipsGeneration(t *testing.T) {
	search := &stubSearch{}
	gen := &countingGenerator{response: "should never be used"}
	sessions := session.NewStore()
	w := NewConceptSet(search, gen, sessions)

	out, err := w.Run(context.Background(), "s1", "build a concept set for unicorn disease")
	require.NoError(t, err)

	assert.Contains(t, out, "No matching records found")
	assert.Zero(t, gen.calls)
	assert.False(t, sessions.HasData("s1"))
}

func TestRunRetrieveFailureCommitsNothing(t *testing.T) {
	search := &stubSearch{err: fmt.Errorf("backend down")}
	gen := &countingGenerator{}
	sessions := session.NewStore()
	w := NewConceptSet(search, gen, sessions)

	_, err := w.Run(context.Background(), "s1", "build a concept set for sepsis")
	require.Error(t, err)
	assert.Zero(t, gen.calls)
	assert.False(t, sessions.HasData("s1"))
}

func TestRunFormatFailureCommitsNothing(t *testing.T) {
	search := &stubSearch{records: diabetesRecords()}
	gen := &countingGenerator{err: fmt.Errorf("model unavailable")}
	sessions := session.NewStore()
	w := NewConceptSet(search, gen, sessions)

	_, err := w.Run(context.Background(), "s1", "build a concept set for diabetes")
	require.Error(t, err)
	assert.False(t, sessions.HasData("s1"))
}

func TestFormatPromptNamesEveryAttribute(t *testing.T) {
	search := &stubSearch{records: diabetesRecords()}
	gen := &countingGenerator{response: "ok"}
	w := NewConceptSet(search, gen, session.NewStore())

	_, err := w.Run(context.Background(), "s1", "build a concept set for diabetes")
	require.NoError(t, err)

	for _, attr := range []string{"CODE", "STR", "TTY", "mappings"} {
		assert.Contains(t, gen.lastSys, attr)
	}
	assert.Contains(t, gen.lastSys, "Do not introduce any record")
	// Nested mapping values reach the prompt as raw JSON.
	assert.Contains(t, gen.lastUser, `{"SNOMED":"44054006"}`)
}

func TestDetectShape(t *testing.T) {
	assert.Contains(t, buildFormatInstructions([]string{"CODE"}, detectShape("give me json output")), "JSON array")
	assert.Contains(t, buildFormatInstructions([]string{"CODE"}, detectShape("as a list please")), "bulleted list")
	assert.Contains(t, buildFormatInstructions([]string{"CODE"}, detectShape("build a concept set")), "markdown table")
}
