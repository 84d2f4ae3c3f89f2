package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"league-journey/internal/domain"
	"league-journey/internal/recommend"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ProPlayerRepository holds the pro roster and the study videos attached to
// recommendations. Pro match histories live in the regular match tables,
// linked to the roster through the shared puuid.
type ProPlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *ProPlayerRepository {
	return &ProPlayerRepository{db: sqlDB, logger: logger}
}

const proColumns = `id, name, team, region, role, profile_icon_id, puuid, game_name, tag_line`

// List returns the full roster, id ascending.
func (r *ProPlayerRepository) List(ctx context.Context) ([]domain.ProPlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+proColumns+` FROM league_pro_players ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pros []domain.ProPlayer
	for rows.Next() {
		var p domain.ProPlayer
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &p.Region, &p.Role,
			&p.ProfileIconID, &p.Puuid, &p.GameName, &p.TagLine); err != nil {
			return nil, err
		}
		pros = append(pros, p)
	}
	return pros, rows.Err()
}

func (r *ProPlayerRepository) GetByID(ctx context.Context, id int64) (*domain.ProPlayer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+proColumns+` FROM league_pro_players WHERE id = ?`, id)

	var p domain.ProPlayer
	if err := row.Scan(&p.ID, &p.Name, &p.Team, &p.Region, &p.Role,
		&p.ProfileIconID, &p.Puuid, &p.GameName, &p.TagLine); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Upsert writes one roster entry keyed on puuid when present.
func (r *ProPlayerRepository) Upsert(ctx context.Context, p *domain.ProPlayer) error {
	if p.Puuid != nil {
		res, err := r.db.ExecContext(ctx,
			`UPDATE league_pro_players
			    SET name = ?, team = ?, region = ?, role = ?,
			        profile_icon_id = ?, game_name = ?, tag_line = ?
			  WHERE puuid = ?`,
			p.Name, p.Team, p.Region, p.Role,
			p.ProfileIconID, p.GameName, p.TagLine, *p.Puuid,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO league_pro_players (name, team, region, role, profile_icon_id, puuid, game_name, tag_line)
		 VALUES (?,?,?,?,?,?,?,?)`,
		p.Name, p.Team, p.Region, p.Role, p.ProfileIconID, p.Puuid, p.GameName, p.TagLine,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pro player %s: %w", p.Name, err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

// LinkedPlayerID resolves the league_players row holding the pro's ingested
// match history, domain.ErrNotFound when the pro has no puuid link yet.
func (r *ProPlayerRepository) LinkedPlayerID(ctx context.Context, proID int64) (int64, error) {
	var playerID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id
		   FROM league_players p
		   JOIN league_pro_players pro ON pro.puuid = p.puuid
		  WHERE pro.id = ?`,
		proID,
	).Scan(&playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return playerID, err
}

// ChampionPool aggregates the champions a pro actually plays from their
// ingested match metrics, most-played first.
func (r *ProPlayerRepository) ChampionPool(ctx context.Context, proID int64) ([]recommend.ChampionPlay, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.champion_id, m.champion_name, COUNT(*) AS games
		   FROM league_player_match_metrics m
		   JOIN league_players p ON p.id = m.player_id
		   JOIN league_pro_players pro ON pro.puuid = p.puuid
		  WHERE pro.id = ?
		  GROUP BY m.champion_id, m.champion_name
		  ORDER BY games DESC, m.champion_id ASC`,
		proID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []recommend.ChampionPlay
	for rows.Next() {
		var cp recommend.ChampionPlay
		if err := rows.Scan(&cp.ChampionID, &cp.ChampionName, &cp.Games); err != nil {
			return nil, err
		}
		pool = append(pool, cp)
	}
	return pool, rows.Err()
}

// ReferenceMatch finds the pro's most recent ingested match on a champion,
// used as reference footage for recommendations.
func (r *ProPlayerRepository) ReferenceMatch(ctx context.Context, proID, championID int64) (string, error) {
	var matchID string
	err := r.db.QueryRowContext(ctx,
		`SELECT lm.match_id
		   FROM league_player_match_metrics m
		   JOIN league_matches lm ON lm.id = m.match_id
		   JOIN league_players p ON p.id = m.player_id
		   JOIN league_pro_players pro ON pro.puuid = p.puuid
		  WHERE pro.id = ? AND m.champion_id = ?
		  ORDER BY m.match_recorded_at DESC
		  LIMIT 1`,
		proID, championID,
	).Scan(&matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return matchID, err
}

// ReplaceVideos swaps the study videos shown to a player in one transaction.
func (r *ProPlayerRepository) ReplaceVideos(ctx context.Context, playerID int64, videos []domain.ProPlayerChampionVideo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM league_pro_player_champion_videos WHERE player_id = ?`, playerID,
	); err != nil {
		return fmt.Errorf("failed to clear videos for player %d: %w", playerID, err)
	}

	for _, v := range videos {
		id := v.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO league_pro_player_champion_videos
				(id, player_id, pro_player_id, champion_id, champion_name,
				 video_url, video_title, match_id, key_points, focus_areas)
			 VALUES (?,?,?,?,?,?,?,?,?,?)`,
			id, playerID, v.ProPlayerID, v.ChampionID, v.ChampionName,
			v.VideoURL, v.VideoTitle, v.MatchID, v.KeyPoints, v.FocusAreas,
		); err != nil {
			return fmt.Errorf("failed to insert video for champion %d: %w", v.ChampionID, err)
		}
	}

	return tx.Commit()
}

// ListVideos returns the stored study videos for a player.
func (r *ProPlayerRepository) ListVideos(ctx context.Context, playerID int64) ([]domain.ProPlayerChampionVideo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, pro_player_id, champion_id, champion_name,
		        video_url, video_title, match_id, key_points, focus_areas
		   FROM league_pro_player_champion_videos
		  WHERE player_id = ?
		  ORDER BY champion_id ASC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []domain.ProPlayerChampionVideo
	for rows.Next() {
		var v domain.ProPlayerChampionVideo
		if err := rows.Scan(&v.ID, &v.PlayerID, &v.ProPlayerID, &v.ChampionID, &v.ChampionName,
			&v.VideoURL, &v.VideoTitle, &v.MatchID, &v.KeyPoints, &v.FocusAreas); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
