package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// ChampionRepository is the champion catalog seeded from Data Dragon.
type ChampionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewChampionRepository(sqlDB *sql.DB, logger zerolog.Logger) *ChampionRepository {
	return &ChampionRepository{db: sqlDB, logger: logger}
}

// UpsertBatch writes the whole catalog in one transaction, updating rows
// that already exist so re-seeding picks up patch renames and new icons.
func (r *ChampionRepository) UpsertBatch(ctx context.Context, champions []domain.Champion) error {
	if len(champions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range champions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO league_champions (champion_id, champion_key, name, title, image_url)
			 VALUES (?,?,?,?,?)
			 ON CONFLICT (champion_id) DO UPDATE SET
				champion_key = excluded.champion_key,
				name = excluded.name,
				title = excluded.title,
				image_url = excluded.image_url`,
			c.ChampionID, c.ChampionKey, c.Name, c.Title, c.ImageURL,
		); err != nil {
			return fmt.Errorf("failed to upsert champion %s: %w", c.ChampionKey, err)
		}
	}

	r.logger.Info().Int("count", len(champions)).Msg("champion catalog updated")
	return tx.Commit()
}

// GetByID looks up a champion by its numeric Riot id.
func (r *ChampionRepository) GetByID(ctx context.Context, championID int64) (*domain.Champion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, champion_id, champion_key, name, title, image_url
		   FROM league_champions WHERE champion_id = ?`,
		championID,
	)

	var c domain.Champion
	if err := row.Scan(&c.ID, &c.ChampionID, &c.ChampionKey, &c.Name, &c.Title, &c.ImageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// IconURL resolves a champion icon, empty string when the catalog does not
// know the champion yet.
func (r *ChampionRepository) IconURL(ctx context.Context, championID int64) *string {
	c, err := r.GetByID(ctx, championID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn().Err(err).Int64("champion_id", championID).Msg("champion lookup failed")
		}
		return nil
	}
	if c.ImageURL == "" {
		return nil
	}
	return &c.ImageURL
}

// Count reports catalog size, used to decide whether seeding is needed.
func (r *ChampionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM league_champions`).Scan(&n)
	return n, err
}
