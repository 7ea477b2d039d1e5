package core

import "time"

const (
	AppName    = "MedAssist"
	AppVersion = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// RouteTag identifies which agent handles a turn.
type RouteTag string

const (
	RouteCodeSearch     RouteTag = "code_search"
	RouteMappingSearch  RouteTag = "mapping_search"
	RouteConversational RouteTag = "conversational"
	RouteConceptSet     RouteTag = "concept_set"
)

// Record is one structured result from the retrieval backend. Key and Label
// are the only fields the core relies on; Fields carries the complete source
// document verbatim, including any nested mapping sub-structures, so later
// turns can use attributes without a second retrieval.
type Record struct {
	Key    string
	Label  string
	Fields map[string]any
}

// DataItem is one entry of a session's current working set.
type DataItem struct {
	ItemType    string
	Key         string
	Value       string
	Metadata    map[string]any
	AddedAt     time.Time
	SourceQuery string
}

type ConversationTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	AgentType string    `json:"agent_type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Episode is an immutable long-term memory entry for one completed turn.
type Episode struct {
	TurnID       string
	SessionID    string
	Text         string
	QueryPreview string
	Embedding    []float32
	CreatedAt    time.Time
}

type EpisodeMatch struct {
	Episode
	Similarity float32
}

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ConfidenceRank orders confidence levels for sorting; unknown values rank lowest.
func ConfidenceRank(c string) int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Fact is a durable natural-language statement extracted from conversations.
// Facts are append-only; extraction never overwrites existing entries.
type Fact struct {
	ID          string
	Content     string
	Confidence  string
	Entities    []string
	AccessCount int
	CreatedAt   time.Time
}
