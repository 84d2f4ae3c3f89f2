package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// PlaystyleRepository stores one vector per owner. An owner is either a
// tracked player or a pro player, never both.
type PlaystyleRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlaystyleRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlaystyleRepository {
	return &PlaystyleRepository{db: sqlDB, logger: logger}
}

// Upsert writes the vector for its owner, replacing any previous one.
func (r *PlaystyleRepository) Upsert(ctx context.Context, ps *domain.PlayerPlaystyle) error {
	if ps.Owner.IsZero() {
		return domain.ErrAmbiguousOwner
	}

	signals, err := json.Marshal(ps.Signals)
	if err != nil {
		return fmt.Errorf("failed to encode raw signals: %w", err)
	}

	v := ps.Vector
	var conflictCol string
	var playerID, proPlayerID *int64
	if id, ok := ps.Owner.PlayerID(); ok {
		playerID = &id
		conflictCol = "player_id"
	} else if id, ok := ps.Owner.ProPlayerID(); ok {
		proPlayerID = &id
		conflictCol = "pro_player_id"
	} else {
		return domain.ErrAmbiguousOwner
	}

	query := fmt.Sprintf(
		`INSERT INTO league_player_playstyle (
			player_id, pro_player_id,
			aggressiveness, team_focus, objective_control,
			vision_control, farm_efficiency, late_game_scaling,
			low_confidence, playstyle_summary, raw_signals
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (%s) DO UPDATE SET
			aggressiveness = excluded.aggressiveness,
			team_focus = excluded.team_focus,
			objective_control = excluded.objective_control,
			vision_control = excluded.vision_control,
			farm_efficiency = excluded.farm_efficiency,
			late_game_scaling = excluded.late_game_scaling,
			low_confidence = excluded.low_confidence,
			playstyle_summary = excluded.playstyle_summary,
			raw_signals = excluded.raw_signals`, conflictCol)

	_, err = r.db.ExecContext(ctx, query,
		playerID, proPlayerID,
		v.Aggressiveness, v.TeamFocus, v.ObjectiveControl,
		v.VisionControl, v.FarmEfficiency, v.LateGameScaling,
		ps.LowConfidence, ps.Summary, string(signals),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert playstyle for %s: %w", ps.Owner, err)
	}
	return nil
}

// GetByOwner loads the stored vector for an owner, domain.ErrNotFound when
// none has been computed yet.
func (r *PlaystyleRepository) GetByOwner(ctx context.Context, owner domain.PlaystyleOwner) (*domain.PlayerPlaystyle, error) {
	var (
		where string
		arg   int64
	)
	if id, ok := owner.PlayerID(); ok {
		where, arg = "player_id = ?", id
	} else if id, ok := owner.ProPlayerID(); ok {
		where, arg = "pro_player_id = ?", id
	} else {
		return nil, domain.ErrAmbiguousOwner
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, player_id, pro_player_id,
		        aggressiveness, team_focus, objective_control,
		        vision_control, farm_efficiency, late_game_scaling,
		        low_confidence, playstyle_summary, raw_signals
		   FROM league_player_playstyle WHERE `+where, arg)

	ps, err := scanPlaystyle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ps, nil
}

// ListProVectors returns every stored pro-player vector, ordered by pro id
// so downstream matching sees a stable order.
func (r *PlaystyleRepository) ListProVectors(ctx context.Context) ([]domain.PlayerPlaystyle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, pro_player_id,
		        aggressiveness, team_focus, objective_control,
		        vision_control, farm_efficiency, late_game_scaling,
		        low_confidence, playstyle_summary, raw_signals
		   FROM league_player_playstyle
		  WHERE pro_player_id IS NOT NULL
		  ORDER BY pro_player_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vectors []domain.PlayerPlaystyle
	for rows.Next() {
		ps, err := scanPlaystyle(rows)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, *ps)
	}
	return vectors, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaystyle(row rowScanner) (*domain.PlayerPlaystyle, error) {
	var (
		ps          domain.PlayerPlaystyle
		playerID    *int64
		proPlayerID *int64
		summary     sql.NullString
		rawSignals  sql.NullString
	)
	if err := row.Scan(&ps.ID, &playerID, &proPlayerID,
		&ps.Vector.Aggressiveness, &ps.Vector.TeamFocus, &ps.Vector.ObjectiveControl,
		&ps.Vector.VisionControl, &ps.Vector.FarmEfficiency, &ps.Vector.LateGameScaling,
		&ps.LowConfidence, &summary, &rawSignals); err != nil {
		return nil, err
	}

	switch {
	case playerID != nil && proPlayerID == nil:
		ps.Owner = domain.PlayerOwner(*playerID)
	case proPlayerID != nil && playerID == nil:
		ps.Owner = domain.ProPlayerOwner(*proPlayerID)
	default:
		return nil, domain.ErrAmbiguousOwner
	}

	ps.Summary = summary.String
	if rawSignals.Valid && rawSignals.String != "" {
		if err := json.Unmarshal([]byte(rawSignals.String), &ps.Signals); err != nil {
			return nil, fmt.Errorf("failed to decode raw signals: %w", err)
		}
	}
	return &ps, nil
}
