package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"bare code", "what is E11.9", []string{"E11.9"}},
		{"code without decimal", "tell me about I10", []string{"I10"}},
		{"keyword", "searching for diabetes info", []string{"diabetes"}},
		{"code and keyword", "is E11.9 the diabetes code", []string{"E11.9", "diabetes"}},
		{"duplicates collapsed", "E11.9 and E11.9 again", []string{"E11.9"}},
		{"nothing", "hello there", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.query))
		})
	}
}

func TestExtractEntitiesIgnoresLowercaseCodes(t *testing.T) {
	// The code pattern requires an uppercase letter; "e11.9" is prose.
	assert.NotContains(t, ExtractEntities("e11.9 maybe"), "e11.9")
}
