package memory

import (
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`\b([A-Z]\d{2}(?:\.\d+)?)\b`)

// Clinical terms worth tagging as entities without any NLP machinery.
var entityKeywords = []string{
	"diabetes", "hypertension", "asthma", "cancer", "sepsis", "pneumonia",
	"fracture", "stroke", "migraine", "depression", "anxiety", "obesity",
	"copd", "arthritis", "kidney", "cardiac", "hepatitis", "influenza",
	"icd", "snomed", "mapping", "concept set",
}

// ExtractEntities tags a query with vocabulary codes and known clinical
// keywords. Deterministic, order-stable, no duplicates.
func ExtractEntities(query string) []string {
	var entities []string
	seen := make(map[string]struct{})

	add := func(e string) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		entities = append(entities, e)
	}

	for _, m := range codePattern.FindAllString(query, -1) {
		add(m)
	}

	q := strings.ToLower(query)
	for _, kw := range entityKeywords {
		if strings.Contains(q, kw) {
			add(kw)
		}
	}
	return entities
}
