package repository

import (
	"context"
	"database/sql"
	"fmt"

	"league-journey/internal/constants"
	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// RecommendationRepository stores the champion picks suggested to a player.
type RecommendationRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRecommendationRepository(sqlDB *sql.DB, logger zerolog.Logger) *RecommendationRepository {
	return &RecommendationRepository{db: sqlDB, logger: logger}
}

// ReplaceForPlayer swaps the player's recommendation set in one transaction.
// Ranks must be unique and within 1..MaxRecommendationRank.
func (r *RecommendationRepository) ReplaceForPlayer(ctx context.Context, playerID int64, recs []domain.ChampionRecommendation) error {
	seen := make(map[int]bool, len(recs))
	for _, rec := range recs {
		if rec.Rank < 1 || rec.Rank > constants.MaxRecommendationRank || seen[rec.Rank] {
			return fmt.Errorf("recommendation rank %d for player %d: %w",
				rec.Rank, playerID, domain.ErrConstraintViolation)
		}
		seen[rec.Rank] = true
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM league_champion_recommendations WHERE player_id = ?`, playerID,
	); err != nil {
		return fmt.Errorf("failed to clear recommendations for player %d: %w", playerID, err)
	}

	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO league_champion_recommendations
				(player_id, champion_id, champion_name, champion_icon_url, reason, rank)
			 VALUES (?,?,?,?,?,?)`,
			playerID, rec.ChampionID, rec.ChampionName, rec.ChampionIconURL, rec.Reason, rec.Rank,
		); err != nil {
			return fmt.Errorf("failed to insert recommendation rank %d: %w", rec.Rank, err)
		}
	}

	return tx.Commit()
}

// ListByPlayer returns recommendations ordered by rank.
func (r *RecommendationRepository) ListByPlayer(ctx context.Context, playerID int64) ([]domain.ChampionRecommendation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, champion_id, champion_name, champion_icon_url, reason, rank
		   FROM league_champion_recommendations
		  WHERE player_id = ?
		  ORDER BY rank ASC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.ChampionRecommendation
	for rows.Next() {
		var rec domain.ChampionRecommendation
		if err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.ChampionID, &rec.ChampionName,
			&rec.ChampionIconURL, &rec.Reason, &rec.Rank); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// UpdateReason fills the narrative reason of one stored recommendation.
func (r *RecommendationRepository) UpdateReason(ctx context.Context, id int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE league_champion_recommendations SET reason = ? WHERE id = ?`,
		reason, id,
	)
	return err
}
