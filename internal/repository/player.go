package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = `id, game_name, tag_line, puuid, summoner_id, region, role,
	favorite_champion_id, favorite_champion_name, profile_icon_id, created_at, updated_at`

func (r *PlayerRepository) GetByRiotID(ctx context.Context, gameName, tagLine, region string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM league_players WHERE game_name = ? AND tag_line = ? AND region = ?`,
		gameName, tagLine, region,
	)
	return scanPlayer(row)
}

func (r *PlayerRepository) GetByPuuid(ctx context.Context, puuid string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM league_players WHERE puuid = ?`, puuid,
	)
	return scanPlayer(row)
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM league_players WHERE id = ?`, id,
	)
	return scanPlayer(row)
}

// Create inserts a new player. Identity fields are immutable after this.
func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) (int64, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO league_players (game_name, tag_line, puuid, summoner_id, region, role,
			favorite_champion_id, favorite_champion_name, profile_icon_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.GameName, p.TagLine, p.Puuid, p.SummonerID, p.Region, p.Role,
		p.FavoriteChampionID, p.FavoriteChampionName, p.ProfileIconID, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create player %s: %w", p.RiotID(), err)
	}
	return res.LastInsertId()
}

// UpdateProfile updates the mutable role and profile metadata only.
func (r *PlayerRepository) UpdateProfile(ctx context.Context, p *domain.Player) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE league_players
		    SET role = ?, favorite_champion_id = ?, favorite_champion_name = ?, profile_icon_id = ?, updated_at = ?
		  WHERE id = ?`,
		p.Role, p.FavoriteChampionID, p.FavoriteChampionName, p.ProfileIconID, time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", p.ID, err)
	}
	return nil
}

// List returns every tracked player, for full pipeline runs.
func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM league_players ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.GameName, &p.TagLine, &p.Puuid, &p.SummonerID, &p.Region, &p.Role,
			&p.FavoriteChampionID, &p.FavoriteChampionName, &p.ProfileIconID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// TouchRiotUser records that a Riot ID looked itself up.
func (r *PlayerRepository) TouchRiotUser(ctx context.Context, u *domain.RiotUser) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO league_riot_users (riot_id, region, main_role, favorite_champion_id, last_seen_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (riot_id) DO UPDATE
		 SET region = excluded.region,
		     main_role = excluded.main_role,
		     favorite_champion_id = excluded.favorite_champion_id,
		     last_seen_at = excluded.last_seen_at`,
		u.RiotID, u.Region, u.MainRole, u.FavoriteChampionID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to touch riot user %s: %w", u.RiotID, err)
	}
	return nil
}

func scanPlayer(row *sql.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.GameName, &p.TagLine, &p.Puuid, &p.SummonerID, &p.Region, &p.Role,
		&p.FavoriteChampionID, &p.FavoriteChampionName, &p.ProfileIconID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
