package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Local is a deterministic in-process embedder. Each token hashes into a
// fixed-size bucket vector which is then L2-normalized, so texts sharing
// most of their tokens land close under cosine similarity. No network, no
// model weights, stable across runs.
type Local struct {
	dimensions int
}

func NewLocal(dimensions int) *Local {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &Local{dimensions: dimensions}
}

func (l *Local) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, l.dimensions)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(l.dimensions)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

func (l *Local) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := l.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})
}
