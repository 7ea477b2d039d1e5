package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFollowUp(t *testing.T) {
	d := NewFollowUpDetector()

	tests := []struct {
		name       string
		query      string
		hasData    bool
		nonempty   bool
		want       bool
	}{
		{"no session data", "show as table", false, true, false},
		{"no data even with search words", "find more codes", false, true, false},
		{"search intent plus novelty", "search for different codes", true, true, false},
		{"find plus new", "find new hypertension codes", true, true, false},
		{"get me more", "get me more results", true, true, false},
		{"bare novelty word is a follow-up", "tell me more", true, true, true},
		{"explicit code lookup", "what is the code for asthma", true, true, false},
		{"find code for", "find code for migraine", true, true, false},
		{"concept set request", "build a concept set for sepsis", true, true, false},
		{"manipulation of current data", "show as table", true, true, true},
		{"question about stored record", "which of those is billable", true, true, true},
		{"has data but empty history", "show as table", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsFollowUp(tt.query, tt.hasData, tt.nonempty))
		})
	}
}

func TestNoveltyAloneNeverTriggersNewSearch(t *testing.T) {
	d := NewFollowUpDetector()

	// Novelty vocabulary without search intent must stay a follow-up.
	for _, q := range []string{"tell me more", "any other details", "something different about these"} {
		assert.True(t, d.IsFollowUp(q, true, true), q)
	}
}

func TestNoDataAlwaysFalse(t *testing.T) {
	d := NewFollowUpDetector()

	for _, q := range []string{"", "show as table", "tell me more", "what about those"} {
		assert.False(t, d.IsFollowUp(q, false, true), q)
	}
}
