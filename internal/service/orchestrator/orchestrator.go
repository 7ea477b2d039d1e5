package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/internal/service/memory"
	"github.com/sandevgo/medassist/internal/service/session"
	"github.com/sandevgo/medassist/internal/service/workflow"
	"github.com/sandevgo/medassist/pkg/log"
)

// UnavailableMessage is the only user-visible failure. Everything else
// degrades silently inside the core.
const UnavailableMessage = "The service is temporarily unavailable. Please try again in a moment."

const DefaultTokenBudget = 2000

type Stats struct {
	ItemCount int `json:"item_count"`
	TurnCount int `json:"turn_count"`
}

// Orchestrator routes each user turn to a retrieval agent, the concept-set
// pipeline or the conversational generation step, and keeps the session
// store as the single source of truth for retrieved records.
type Orchestrator struct {
	sessions    *session.Store
	classifier  *session.Classifier
	followUp    *session.FollowUpDetector
	search      core.SearchProvider
	generator   core.Generator
	memory      *memory.Manager
	conceptSet  *workflow.ConceptSet
	tokenBudget int
}

func New(
	sessions *session.Store,
	search core.SearchProvider,
	generator core.Generator,
	mem *memory.Manager,
	conceptSet *workflow.ConceptSet,
	tokenBudget int,
) *Orchestrator {
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	return &Orchestrator{
		sessions:    sessions,
		classifier:  session.NewClassifier(),
		followUp:    session.NewFollowUpDetector(),
		search:      search,
		generator:   generator,
		memory:      mem,
		conceptSet:  conceptSet,
		tokenBudget: tokenBudget,
	}
}

// HandleTurn processes one user turn to completion. Collaborator failures
// surface as the unavailable message with no state committed for the turn;
// memory failures never surface at all.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, query string) string {
	logger := log.FromCtx(ctx).With().Str("session", sessionID).Logger()

	route := o.classifier.Classify(query)
	hasData := o.sessions.HasData(sessionID)
	nonempty := o.memory.History().TurnCount(ctx, sessionID) > 0
	isFollowUp := o.followUp.IsFollowUp(query, hasData, nonempty)

	logger.Debug().
		Str("route", string(route)).
		Bool("has_data", hasData).
		Bool("follow_up", isFollowUp).
		Msg("turn classified")

	var response string
	var agentType string
	var err error

	switch {
	case route == core.RouteConceptSet:
		agentType = string(core.RouteConceptSet)
		response, err = o.conceptSet.Run(ctx, sessionID, query)

	case isFollowUp:
		agentType = string(core.RouteConversational)
		response, err = o.answerFollowUp(ctx, sessionID, query)

	case route == core.RouteCodeSearch || route == core.RouteMappingSearch:
		agentType = string(route)
		response, err = o.runRetrieval(ctx, sessionID, query, route)

	default:
		agentType = string(core.RouteConversational)
		response, err = o.converse(ctx, sessionID, query)
	}

	if err != nil {
		logger.Error().Err(err).Str("agent", agentType).Msg("turn failed")
		return UnavailableMessage
	}

	response = normalizeCitations(response, o.sessions.Get(sessionID).CurrentData)
	o.memory.ProcessTurn(ctx, sessionID, query, response, agentType)
	return response
}

// runRetrieval resolves the query against the search backend, summarizes
// the results through the generation step and only then commits the records
// to the session store.
func (o *Orchestrator) runRetrieval(ctx context.Context, sessionID, query string, route core.RouteTag) (string, error) {
	records, err := o.search.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("retrieval: %w", err)
	}
	if len(records) == 0 {
		return fmt.Sprintf("No matching records found for %q.", query), nil
	}

	itemType := "primary-record"
	if route == core.RouteMappingSearch {
		itemType = "mapping-record"
	}

	items := make([]core.DataItem, 0, len(records))
	now := time.Now().UTC()
	for _, rec := range records {
		items = append(items, core.DataItem{
			ItemType:    itemType,
			Key:         rec.Key,
			Value:       rec.Label,
			Metadata:    rec.Fields,
			AddedAt:     now,
			SourceQuery: query,
		})
	}

	contextStr := o.memory.GetRelevantContext(ctx, sessionID, query, items, o.tokenBudget, false, false)
	response, err := o.generator.Complete(ctx, retrievalSystemPrompt(contextStr), query)
	if err != nil {
		return "", fmt.Errorf("retrieval summary: %w", err)
	}

	// All collaborator calls succeeded; commit the records now.
	for _, item := range items {
		o.sessions.Put(sessionID, item)
	}
	return response, nil
}

func (o *Orchestrator) answerFollowUp(ctx context.Context, sessionID, query string) (string, error) {
	items := o.sessions.Items(sessionID)
	contextStr := o.memory.GetRelevantContext(ctx, sessionID, query, items, o.tokenBudget, true, true)

	response, err := o.generator.Complete(ctx, followUpSystemPrompt(contextStr), query)
	if err != nil {
		return "", fmt.Errorf("follow-up generation: %w", err)
	}
	return response, nil
}

func (o *Orchestrator) converse(ctx context.Context, sessionID, query string) (string, error) {
	items := o.sessions.Items(sessionID)
	contextStr := o.memory.GetRelevantContext(ctx, sessionID, query, items, o.tokenBudget, true, true)

	response, err := o.generator.Complete(ctx, conversationalSystemPrompt(contextStr), query)
	if err != nil {
		return "", fmt.Errorf("conversation: %w", err)
	}
	return response, nil
}

func (o *Orchestrator) SessionStats(ctx context.Context, sessionID string) Stats {
	return Stats{
		ItemCount: o.sessions.ItemCount(sessionID),
		TurnCount: o.memory.History().TurnCount(ctx, sessionID),
	}
}

func (o *Orchestrator) ResetSession(ctx context.Context, sessionID string) {
	o.sessions.Clear(sessionID)
	o.memory.History().Clear(ctx, sessionID)
	log.FromCtx(ctx).Info().Str("session", sessionID).Msg("session reset")
}

var citationPattern = regexp.MustCompile(`\[?\b[A-Z]\d{2}(?:\.\d+)?\b\]?`)

// normalizeCitations brackets vocabulary codes that refer to records in the
// session's working set, so cited codes are visually tied to stored data.
// Codes already bracketed are left alone.
func normalizeCitations(response string, currentData map[string]core.DataItem) string {
	if len(currentData) == 0 {
		return response
	}
	return citationPattern.ReplaceAllStringFunc(response, func(m string) string {
		if strings.HasPrefix(m, "[") || strings.HasSuffix(m, "]") {
			return m
		}
		if _, ok := currentData[m]; !ok {
			return m
		}
		return "[" + m + "]"
	})
}

func retrievalSystemPrompt(contextStr string) string {
	var b strings.Builder
	b.WriteString("You are a medical coding assistant. Summarize the retrieved records for the user.\n")
	b.WriteString("Mention every record by its code and label. Use only the records below; never invent codes or attributes.\n\n")
	b.WriteString(contextStr)
	return b.String()
}

func followUpSystemPrompt(contextStr string) string {
	var b strings.Builder
	b.WriteString("You are a medical coding assistant. The user is asking about data already retrieved in this session.\n")
	b.WriteString("Answer strictly from the context below; if the answer is not in it, say so. Never invent codes or attributes.\n\n")
	b.WriteString(contextStr)
	return b.String()
}

func conversationalSystemPrompt(contextStr string) string {
	var b strings.Builder
	b.WriteString("You are a medical coding assistant. Answer conversationally.\n")
	b.WriteString("If the context below is relevant, ground your answer in it; never invent codes or records.\n\n")
	b.WriteString(contextStr)
	return b.String()
}
