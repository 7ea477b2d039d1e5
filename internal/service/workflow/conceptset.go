package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/internal/service/session"
	"github.com/sandevgo/medassist/pkg/log"
)

type stage string

const (
	stageRetrieve stage = "retrieve"
	stageExtract  stage = "extract"
	stageFormat   stage = "format"
	stageDone     stage = "done"
)

// pipeline is the transient working state of one concept-set request. The
// session store is only touched once, when the format stage completes.
type pipeline struct {
	query     string
	records   []core.Record
	extracted []extractedRecord
	attrNames []string
}

type extractedRecord struct {
	record     core.Record
	flattened  string
	extraCount int
}

// ConceptSet runs structured-output requests through a fixed sequential
// pipeline: retrieve, extract, format, done. No backtracking, no branches.
type ConceptSet struct {
	search    core.SearchProvider
	generator core.Generator
	sessions  *session.Store
}

func NewConceptSet(search core.SearchProvider, generator core.Generator, sessions *session.Store) *ConceptSet {
	return &ConceptSet{
		search:    search,
		generator: generator,
		sessions:  sessions,
	}
}

// Run executes the pipeline for one query. An empty retrieval short-circuits
// with a "no matching records" message and never calls the generation step.
func (w *ConceptSet) Run(ctx context.Context, sessionID, query string) (string, error) {
	logger := log.FromCtx(ctx).With().Str("session", sessionID).Logger()
	p := &pipeline{query: query}

	current := stageRetrieve
	for current != stageDone {
		logger.Debug().Str("stage", string(current)).Msg("concept set pipeline")

		switch current {
		case stageRetrieve:
			records, err := w.search.Search(ctx, query)
			if err != nil {
				return "", fmt.Errorf("retrieve stage: %w", err)
			}
			if len(records) == 0 {
				return fmt.Sprintf("No matching records found for %q.", query), nil
			}
			p.records = records
			current = stageExtract

		case stageExtract:
			w.extract(ctx, p)
			current = stageFormat

		case stageFormat:
			text, err := w.format(ctx, p)
			if err != nil {
				return "", fmt.Errorf("format stage: %w", err)
			}
			w.commit(sessionID, p)
			current = stageDone
			return text, nil
		}
	}
	return "", nil
}

// extract flattens every field of every record into a line-oriented form,
// attribute names sorted, nested structures as raw JSON. Nothing is dropped.
func (w *ConceptSet) extract(ctx context.Context, p *pipeline) {
	logger := log.FromCtx(ctx)
	attrSet := make(map[string]struct{})

	for _, rec := range p.records {
		names := make([]string, 0, len(rec.Fields))
		for name := range rec.Fields {
			names = append(names, name)
			attrSet[name] = struct{}{}
		}
		sort.Strings(names)

		var b strings.Builder
		extra := 0
		for _, name := range names {
			fmt.Fprintf(&b, "%s: %s\n", name, renderFieldValue(rec.Fields[name]))
			// Fields beyond the key and label are supplementary.
			if s, ok := rec.Fields[name].(string); ok && (s == rec.Key || s == rec.Label) {
				continue
			}
			extra++
		}

		logger.Debug().
			Str("key", rec.Key).
			Int("supplementary_fields", extra).
			Msg("record extracted")

		p.extracted = append(p.extracted, extractedRecord{
			record:     rec,
			flattened:  b.String(),
			extraCount: extra,
		})
	}

	p.attrNames = make([]string, 0, len(attrSet))
	for name := range attrSet {
		p.attrNames = append(p.attrNames, name)
	}
	sort.Strings(p.attrNames)
}

func renderFieldValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (w *ConceptSet) format(ctx context.Context, p *pipeline) (string, error) {
	var data strings.Builder
	for i, ex := range p.extracted {
		fmt.Fprintf(&data, "Record %d:\n%s\n", i+1, ex.flattened)
	}

	system := buildFormatInstructions(p.attrNames, detectShape(p.query))
	return w.generator.Complete(ctx, system, fmt.Sprintf("Request: %s\n\nExtracted records:\n%s", p.query, data.String()))
}

// commit writes the final item set to the session store, once, after the
// format stage has produced output.
func (w *ConceptSet) commit(sessionID string, p *pipeline) {
	now := time.Now().UTC()
	for _, rec := range p.records {
		w.sessions.Put(sessionID, core.DataItem{
			ItemType:    "primary-record",
			Key:         rec.Key,
			Value:       rec.Label,
			Metadata:    rec.Fields,
			AddedAt:     now,
			SourceQuery: p.query,
		})
	}
}

func detectShape(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "json"):
		return "a JSON array of objects"
	case strings.Contains(q, "list") || strings.Contains(q, "bullet"):
		return "a bulleted list"
	default:
		return "a markdown table"
	}
}

func buildFormatInstructions(attrNames []string, shape string) string {
	var b strings.Builder
	b.WriteString("You format medical coding concept sets from extracted record data.\n")
	b.WriteString("The records contain exactly these attributes: ")
	b.WriteString(strings.Join(attrNames, ", "))
	b.WriteString(".\n")
	b.WriteString("Attributes holding nested JSON (such as mapping or cross-reference fields) are serialized objects; parse the JSON text to read their sub-fields.\n")
	b.WriteString("Use only records and attribute values present in the extracted data. Do not introduce any record, code or attribute that is not listed.\n")
	fmt.Fprintf(&b, "Present the result as %s.\n", shape)
	return b.String()
}
