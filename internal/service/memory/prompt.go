package memory

import (
	"encoding/json"
	"fmt"
	"strings"
)

type extractedFact struct {
	Content    string   `json:"content"`
	Confidence string   `json:"confidence"`
	Entities   []string `json:"entities"`
}

const extractionSystemPrompt = "You are a knowledge extraction system. Output only valid JSON."

func buildExtractionPrompt(conversation string) string {
	return fmt.Sprintf(
		`Extract distinct, durable facts from the conversation below. Output format: JSON list of objects {content, confidence, entities}. Confidence is one of [high, medium, low]. Entities is a list of short tags (codes, conditions, topics) the fact is about. Rules: 1. Ignore greetings and small talk. 2. Facts must be self-contained (replace "he" with "User"). 3. Prefer facts about the records discussed and the user's working preferences. Conversation: %s`,
		conversation,
	)
}

func parseExtractionResponse(content string) ([]extractedFact, error) {
	jsonStr := extractJSONArray(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var facts []extractedFact
	if err := json.Unmarshal([]byte(jsonStr), &facts); err != nil {
		return nil, fmt.Errorf("unmarshal facts: %w", err)
	}

	out := facts[:0]
	for _, f := range facts {
		if strings.TrimSpace(f.Content) == "" {
			continue
		}
		f.Confidence = normalizeConfidence(f.Confidence)
		out = append(out, f)
	}
	return out, nil
}

func normalizeConfidence(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "high":
		return "high"
	case "medium", "med":
		return "medium"
	default:
		return "low"
	}
}

// extractJSONArray pulls the outermost JSON array out of a model response
// that may wrap it in prose or code fences.
func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content[start:], "]")
	if end == -1 {
		return ""
	}

	return content[start : start+end+1]
}
