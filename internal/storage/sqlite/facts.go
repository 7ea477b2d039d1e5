package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/medassist/internal/core"
)

// FactsRepo stores extracted knowledge statements. Extraction only appends;
// the single update is the access counter bumped when a fact is read.
type FactsRepo struct {
	db *sql.DB
}

func NewFactsRepo(db *sql.DB) *FactsRepo {
	return &FactsRepo{db: db}
}

func (r *FactsRepo) AddFact(ctx context.Context, f core.Fact) error {
	entitiesJSON, err := json.Marshal(f.Entities)
	if err != nil {
		return fmt.Errorf("failed to marshal entities: %w", err)
	}

	query := `INSERT INTO facts (id, content, confidence, entities, access_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, f.ID, f.Content, f.Confidence, string(entitiesJSON), f.AccessCount, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fact: %w", err)
	}
	return nil
}

// FactsForEntities returns facts sharing at least one entity with the given
// set, ordered by confidence then access count. Matching is case-insensitive.
// Returned facts get their access counter bumped.
func (r *FactsRepo) FactsForEntities(ctx context.Context, entities []string, limit int) ([]core.Fact, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		wanted[strings.ToLower(e)] = struct{}{}
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, content, confidence, entities, access_count, created_at FROM facts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var matched []core.Fact
	for rows.Next() {
		var f core.Fact
		var entitiesStr string
		if err := rows.Scan(&f.ID, &f.Content, &f.Confidence, &entitiesStr, &f.AccessCount, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		if err := json.Unmarshal([]byte(entitiesStr), &f.Entities); err != nil {
			continue
		}

		for _, e := range f.Entities {
			if _, ok := wanted[strings.ToLower(e)]; ok {
				matched = append(matched, f)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facts: %w", err)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := core.ConfidenceRank(matched[i].Confidence), core.ConfidenceRank(matched[j].Confidence)
		if ri != rj {
			return ri > rj
		}
		return matched[i].AccessCount > matched[j].AccessCount
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	if err := r.bumpAccess(ctx, matched); err != nil {
		return nil, err
	}
	return matched, nil
}

func (r *FactsRepo) bumpAccess(ctx context.Context, facts []core.Fact) error {
	if len(facts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range facts {
		if _, err := tx.ExecContext(ctx, `UPDATE facts SET access_count = access_count + 1 WHERE id = ?`, facts[i].ID); err != nil {
			return fmt.Errorf("failed to bump fact access: %w", err)
		}
		facts[i].AccessCount++
	}
	return tx.Commit()
}

func (r *FactsRepo) CountFacts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	return count, nil
}
