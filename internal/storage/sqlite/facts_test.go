package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/medassist/internal/core"
)

func testFact(content, confidence string, entities ...string) core.Fact {
	return core.Fact{
		ID:         uuid.NewString(),
		Content:    content,
		Confidence: confidence,
		Entities:   entities,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestFactsForEntitiesMatchAndOrder(t *testing.T) {
	repo := NewFactsRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.AddFact(ctx, testFact("E11.9 is unspecified type 2 diabetes", core.ConfidenceHigh, "E11.9", "diabetes")))
	require.NoError(t, repo.AddFact(ctx, testFact("user prefers table output", core.ConfidenceLow, "diabetes")))
	require.NoError(t, repo.AddFact(ctx, testFact("I10 is essential hypertension", core.ConfidenceHigh, "I10")))

	facts, err := repo.FactsForEntities(ctx, []string{"diabetes"}, 10)
	require.NoError(t, err)
	require.Len(t, facts, 2)

	assert.Equal(t, core.ConfidenceHigh, facts[0].Confidence)
	assert.Equal(t, core.ConfidenceLow, facts[1].Confidence)
}

func TestFactsForEntitiesCaseInsensitive(t *testing.T) {
	repo := NewFactsRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.AddFact(ctx, testFact("codes discussed", core.ConfidenceMedium, "Diabetes")))

	facts, err := repo.FactsForEntities(ctx, []string{"DIABETES"}, 10)
	require.NoError(t, err)
	assert.Len(t, facts, 1)
}

func TestFactsForEntitiesBumpsAccessCount(t *testing.T) {
	repo := NewFactsRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.AddFact(ctx, testFact("sticky fact", core.ConfidenceHigh, "sepsis")))

	first, err := repo.FactsForEntities(ctx, []string{"sepsis"}, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].AccessCount)

	second, err := repo.FactsForEntities(ctx, []string{"sepsis"}, 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].AccessCount)
}

func TestFactsForEntitiesNoEntities(t *testing.T) {
	repo := NewFactsRepo(newTestDB(t))

	facts, err := repo.FactsForEntities(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestCountFacts(t *testing.T) {
	repo := NewFactsRepo(newTestDB(t))
	ctx := context.Background()

	count, err := repo.CountFacts(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.AddFact(ctx, testFact("one", core.ConfidenceLow, "x")))
	count, err = repo.CountFacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
