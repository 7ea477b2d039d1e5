package session

import (
	"regexp"
	"strings"
)

// FollowUpDetector decides whether a turn manipulates already-retrieved
// session data or asks for a fresh retrieval. The rules are ordered and the
// first match wins; they are deliberately biased so a missed follow-up
// falls through to a fresh retrieval rather than silently dropping context.
type FollowUpDetector struct{}

func NewFollowUpDetector() *FollowUpDetector {
	return &FollowUpDetector{}
}

var searchIntentPhrases = []string{
	"search for", "find", "look up", "get me", "retrieve",
}

var noveltyPattern = regexp.MustCompile(`\b(new|different|other|more)\b`)

var codeLookupPhrases = []string{
	"what is the code for", "what's the code for", "find code for",
	"find the code for",
}

func (d *FollowUpDetector) IsFollowUp(query string, hasSessionData, conversationNonempty bool) bool {
	q := strings.ToLower(query)

	// Nothing retrieved yet, nothing to follow up on.
	if !hasSessionData {
		return false
	}

	// Explicit new search needs both search intent and a novelty word.
	// A bare "more" is common in follow-ups like "tell me more".
	if hasSearchIntent(q) && noveltyPattern.MatchString(q) {
		return false
	}

	for _, phrase := range codeLookupPhrases {
		if strings.Contains(q, phrase) {
			return false
		}
	}

	if conceptSetPattern.MatchString(q) {
		return false
	}

	if conversationNonempty {
		return true
	}
	return false
}

func hasSearchIntent(q string) bool {
	for _, phrase := range searchIntentPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
