package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestLocalDeterministic(t *testing.T) {
	e := NewLocal(256)
	a, err := e.Embed(context.Background(), "type 2 diabetes mellitus")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "type 2 diabetes mellitus")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLocalNearIdenticalTextsAreSimilar(t *testing.T) {
	e := NewLocal(256)
	ctx := context.Background()

	a, err := e.Embed(ctx, "user asked about type 2 diabetes mellitus codes")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "user asked about type 2 diabetes mellitus coding")
	require.NoError(t, err)

	assert.Greater(t, cosine(a, b), 0.7)
}

func TestLocalUnrelatedTextsAreDistant(t *testing.T) {
	e := NewLocal(256)
	ctx := context.Background()

	a, err := e.Embed(ctx, "essential hypertension blood pressure")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "fracture of left femur surgical repair")
	require.NoError(t, err)

	assert.Less(t, cosine(a, b), 0.5)
}

func TestLocalNormalized(t *testing.T) {
	e := NewLocal(128)
	vec, err := e.Embed(context.Background(), "chronic kidney disease stage 3")
	require.NoError(t, err)
	require.Len(t, vec, 128)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestLocalEmptyText(t *testing.T) {
	e := NewLocal(64)
	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestLocalBatchMatchesSingle(t *testing.T) {
	e := NewLocal(64)
	ctx := context.Background()

	batch, err := e.EmbedBatch(ctx, []string{"atrial fibrillation", "sepsis"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	single, err := e.Embed(ctx, "atrial fibrillation")
	require.NoError(t, err)
	assert.Equal(t, single, batch[0])
}
