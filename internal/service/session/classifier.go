package session

import (
	"regexp"
	"strings"

	"github.com/sandevgo/medassist/internal/core"
)

// Classifier maps a raw user query to a route tag using keyword matching.
// Pure and total: any query gets a tag, conversational by default.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

var conceptSetPattern = regexp.MustCompile(`(?i)\b(build|create|make|generate|compile)\b.*\b(concept set|code set|value set|set of (codes|records|concepts))\b|\bconcept set\b`)

var mappingKeywords = []string{
	"map to", "maps to", "mapping", "mappings", "crosswalk", "cross-reference",
	"snomed", "parent", "child", "children", "hierarchy", "related codes",
	"relationship",
}

var codeSearchKeywords = []string{
	"code for", "codes for", "what is the code", "find code", "icd",
	"diagnosis code", "search for", "find", "look up", "lookup",
	"get me", "retrieve",
}

func (c *Classifier) Classify(query string) core.RouteTag {
	q := strings.ToLower(query)

	if conceptSetPattern.MatchString(q) {
		return core.RouteConceptSet
	}
	for _, kw := range mappingKeywords {
		if strings.Contains(q, kw) {
			return core.RouteMappingSearch
		}
	}
	for _, kw := range codeSearchKeywords {
		if strings.Contains(q, kw) {
			return core.RouteCodeSearch
		}
	}
	return core.RouteConversational
}
