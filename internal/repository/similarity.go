package repository

import (
	"context"
	"database/sql"
	"fmt"

	"league-journey/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// SimilarityRepository stores the pro-matching result set per player.
type SimilarityRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSimilarityRepository(sqlDB *sql.DB, logger zerolog.Logger) *SimilarityRepository {
	return &SimilarityRepository{db: sqlDB, logger: logger}
}

// ReplaceForPlayer swaps the player's whole match set in one transaction.
// A failed replace leaves the previous set intact.
func (r *SimilarityRepository) ReplaceForPlayer(ctx context.Context, playerID int64, matches []domain.SimilarityMatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM league_similarity_matches WHERE player_id = ?`, playerID,
	); err != nil {
		return fmt.Errorf("failed to clear similarity matches for player %d: %w", playerID, err)
	}

	for _, m := range matches {
		id := m.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO league_similarity_matches (id, player_id, pro_player_id, similarity_score, feature_explanation)
			 VALUES (?,?,?,?,?)`,
			id, playerID, m.ProPlayerID, m.Score, m.FeatureExplanation,
		); err != nil {
			return fmt.Errorf("failed to insert similarity match for pro %d: %w", m.ProPlayerID, err)
		}
	}

	return tx.Commit()
}

// ListByPlayer returns the stored matches, best score first, pro id ascending
// on ties.
func (r *SimilarityRepository) ListByPlayer(ctx context.Context, playerID int64) ([]domain.SimilarityMatch, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, pro_player_id, similarity_score, COALESCE(feature_explanation, '')
		   FROM league_similarity_matches
		  WHERE player_id = ?
		  ORDER BY similarity_score DESC, pro_player_id ASC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.SimilarityMatch
	for rows.Next() {
		var m domain.SimilarityMatch
		if err := rows.Scan(&m.ID, &m.PlayerID, &m.ProPlayerID, &m.Score, &m.FeatureExplanation); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// UpdateExplanation fills the narrative explanation of one stored match.
func (r *SimilarityRepository) UpdateExplanation(ctx context.Context, id string, explanation string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE league_similarity_matches SET feature_explanation = ? WHERE id = ?`,
		explanation, id,
	)
	return err
}
