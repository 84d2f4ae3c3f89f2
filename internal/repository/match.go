package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// MatchRepository is the durable store for raw match payloads and their
// derived metrics. The two records share a lifecycle: metrics exist iff
// the parent match is processed.
type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: sqlDB, logger: logger}
}

// StoreRaw inserts a raw match payload for a player, deduping on the
// match identifier. Returns the row id and whether the row was new.
func (r *MatchRepository) StoreRaw(ctx context.Context, playerID int64, matchID string, raw json.RawMessage, matchTimestamp int64) (int64, bool, error) {
	var existing int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM league_matches WHERE match_id = ? AND player_id = ?`,
		matchID, playerID,
	).Scan(&existing)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO league_matches (match_id, player_id, raw_data, match_timestamp, is_processed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		matchID, playerID, string(raw), matchTimestamp, now, now,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to store match %s: %w", matchID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// GetUnprocessed returns the player's unprocessed matches, oldest first.
func (r *MatchRepository) GetUnprocessed(ctx context.Context, playerID int64) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, player_id, raw_data, match_timestamp, is_processed, created_at, updated_at
		   FROM league_matches
		  WHERE player_id = ? AND is_processed = 0
		  ORDER BY match_timestamp ASC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		var raw string
		if err := rows.Scan(&m.ID, &m.MatchID, &m.PlayerID, &raw, &m.MatchTimestamp, &m.IsProcessed, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.RawData = json.RawMessage(raw)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// IsProcessed reports the processed flag for a match row.
func (r *MatchRepository) IsProcessed(ctx context.Context, matchRowID int64) (bool, error) {
	var processed bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_processed FROM league_matches WHERE id = ?`, matchRowID,
	).Scan(&processed)
	if err == sql.ErrNoRows {
		return false, domain.ErrNotFound
	}
	return processed, err
}

// SaveMetrics writes the derived metrics and marks the match processed in
// one transaction. Recomputation replaces the existing metrics row.
func (r *MatchRepository) SaveMetrics(ctx context.Context, m *domain.PlayerMatchMetrics) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	items, err := jsonText(m.Items)
	if err != nil {
		return err
	}
	spells, err := jsonText(m.SummonerSpells)
	if err != nil {
		return err
	}
	skillOrder, err := jsonText(m.SkillOrder)
	if err != nil {
		return err
	}
	runeSetup, err := jsonText(m.RuneSetup)
	if err != nil {
		return err
	}
	damageBreakdown, err := jsonText(m.DamageBreakdown)
	if err != nil {
		return err
	}
	objectives, err := jsonText(m.ObjectiveContribution)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO league_player_match_metrics (
			match_id, player_id, champion_id, champion_name, role, lane,
			cs_per_min, gold_per_min, damage_per_min, damage_share, kill_participation,
			kills, deaths, assists, kda_ratio, win, team_id, participant_id, game_duration,
			vision_score, vision_score_per_min, gold_earned, total_damage_dealt,
			total_damage_taken, total_heal, total_minions_killed, neutral_minions_killed,
			wards_placed, wards_killed,
			first_blood, first_blood_assist, first_tower, first_tower_assist,
			items, summoner_spells, rune_setup, skill_order, damage_breakdown,
			objective_contribution, match_recorded_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.MatchID, m.PlayerID, m.ChampionID, m.ChampionName, m.Role, m.Lane,
		m.CSPerMin, m.GoldPerMin, m.DamagePerMin, m.DamageShare, m.KillParticipation,
		m.Kills, m.Deaths, m.Assists, m.KDARatio, m.Win, m.TeamID, m.ParticipantID, m.GameDuration,
		m.VisionScore, m.VisionScorePerMin, m.GoldEarned, m.TotalDamageDealt,
		m.TotalDamageTaken, m.TotalHeal, m.TotalMinionsKilled, m.NeutralMinionsKilled,
		m.WardsPlaced, m.WardsKilled,
		m.FirstBlood, m.FirstBloodAssist, m.FirstTower, m.FirstTowerAssist,
		items, spells, runeSetup, skillOrder, damageBreakdown,
		objectives, m.MatchRecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert metrics for match %d: %w", m.MatchID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE league_matches SET is_processed = 1, updated_at = ? WHERE id = ?`,
		time.Now(), m.MatchID,
	); err != nil {
		return fmt.Errorf("failed to mark match %d processed: %w", m.MatchID, err)
	}

	return tx.Commit()
}

// MetricsHistory returns the player's full metrics history ordered by
// match timestamp ascending.
func (r *MatchRepository) MetricsHistory(ctx context.Context, playerID int64) ([]domain.PlayerMatchMetrics, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, player_id, champion_id, champion_name, role, lane,
		        cs_per_min, gold_per_min, damage_per_min, damage_share, kill_participation,
		        kills, deaths, assists, kda_ratio, win, team_id, participant_id, game_duration,
		        vision_score, vision_score_per_min, gold_earned, total_damage_dealt,
		        total_damage_taken, total_heal, total_minions_killed, neutral_minions_killed,
		        wards_placed, wards_killed,
		        first_blood, first_blood_assist, first_tower, first_tower_assist,
		        items, summoner_spells, rune_setup, skill_order, damage_breakdown,
		        objective_contribution, match_recorded_at
		   FROM league_player_match_metrics
		  WHERE player_id = ?
		  ORDER BY match_recorded_at ASC`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.PlayerMatchMetrics
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, *m)
	}
	return history, rows.Err()
}

func scanMetrics(rows *sql.Rows) (*domain.PlayerMatchMetrics, error) {
	var m domain.PlayerMatchMetrics
	var items, spells, runeSetup, skillOrder, damageBreakdown, objectives sql.NullString

	err := rows.Scan(
		&m.ID, &m.MatchID, &m.PlayerID, &m.ChampionID, &m.ChampionName, &m.Role, &m.Lane,
		&m.CSPerMin, &m.GoldPerMin, &m.DamagePerMin, &m.DamageShare, &m.KillParticipation,
		&m.Kills, &m.Deaths, &m.Assists, &m.KDARatio, &m.Win, &m.TeamID, &m.ParticipantID, &m.GameDuration,
		&m.VisionScore, &m.VisionScorePerMin, &m.GoldEarned, &m.TotalDamageDealt,
		&m.TotalDamageTaken, &m.TotalHeal, &m.TotalMinionsKilled, &m.NeutralMinionsKilled,
		&m.WardsPlaced, &m.WardsKilled,
		&m.FirstBlood, &m.FirstBloodAssist, &m.FirstTower, &m.FirstTowerAssist,
		&items, &spells, &runeSetup, &skillOrder, &damageBreakdown,
		&objectives, &m.MatchRecordedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := jsonField(items, &m.Items); err != nil {
		return nil, err
	}
	if err := jsonField(spells, &m.SummonerSpells); err != nil {
		return nil, err
	}
	if err := jsonField(skillOrder, &m.SkillOrder); err != nil {
		return nil, err
	}
	if err := jsonField(runeSetup, &m.RuneSetup); err != nil {
		return nil, err
	}
	if err := jsonField(damageBreakdown, &m.DamageBreakdown); err != nil {
		return nil, err
	}
	if err := jsonField(objectives, &m.ObjectiveContribution); err != nil {
		return nil, err
	}
	return &m, nil
}

// jsonText serializes a blob field for storage; nil values stay NULL.
func jsonText(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Slice) && rv.IsNil() {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json field: %w", err)
	}
	return string(data), nil
}

func jsonField(src sql.NullString, dst any) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(src.String), dst); err != nil {
		return fmt.Errorf("failed to unmarshal json field: %w", err)
	}
	return nil
}
