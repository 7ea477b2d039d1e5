package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/pkg/log"
)

// EpisodesRepo is the append-only long-term store of completed turns.
// Rows are never updated; the only mutations are insert and delete by id.
type EpisodesRepo struct {
	db *sql.DB
}

func NewEpisodesRepo(db *sql.DB) *EpisodesRepo {
	return &EpisodesRepo{db: db}
}

func (r *EpisodesRepo) AddEpisode(ctx context.Context, ep core.Episode) error {
	blob, err := serializeVector(ep.Embedding)
	if err != nil {
		return err
	}

	query := `INSERT INTO episodes (turn_id, session_id, text, query_preview, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, ep.TurnID, ep.SessionID, ep.Text, ep.QueryPreview, blob, ep.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	return nil
}

// SearchSimilar ranks all stored episodes by cosine similarity against the
// query vector, keeps those at or above minSimilarity and returns the top
// limit matches, most similar first.
func (r *EpisodesRepo) SearchSimilar(ctx context.Context, vector []float32, limit int, minSimilarity float32) ([]core.EpisodeMatch, error) {
	query := `SELECT turn_id, session_id, text, query_preview, embedding, created_at FROM episodes`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var matches []core.EpisodeMatch
	for rows.Next() {
		var ep core.Episode
		var blob []byte
		if err := rows.Scan(&ep.TurnID, &ep.SessionID, &ep.Text, &ep.QueryPreview, &blob, &ep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}

		ep.Embedding, err = deserializeVector(blob)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("turn_id", ep.TurnID).Msg("skipping episode with bad embedding")
			continue
		}

		sim := cosineSimilarity(vector, ep.Embedding)
		if sim >= minSimilarity {
			matches = append(matches, core.EpisodeMatch{Episode: ep, Similarity: sim})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate episodes: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *EpisodesRepo) DeleteEpisode(ctx context.Context, turnID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM episodes WHERE turn_id = ?`, turnID)
	if err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	return nil
}

func (r *EpisodesRepo) CountEpisodes(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count episodes: %w", err)
	}
	return count, nil
}
