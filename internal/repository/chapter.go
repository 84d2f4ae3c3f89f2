package repository

import (
	"context"
	"database/sql"
	"fmt"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// ChapterRepository owns all PlayerChapter rows for a player+season.
// Recompute replaces the whole season set atomically.
type ChapterRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewChapterRepository(sqlDB *sql.DB, logger zerolog.Logger) *ChapterRepository {
	return &ChapterRepository{db: sqlDB, logger: logger}
}

// ReplaceSeason deletes the existing chapter set for the player+season and
// writes the new one in a single transaction, so readers never observe a
// mix of old and new chapters.
func (r *ChapterRepository) ReplaceSeason(ctx context.Context, playerID int64, season int, chapters []domain.PlayerChapter) error {
	if err := validateChapterSet(chapters); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM league_player_chapters WHERE player_id = ? AND season = ?`,
		playerID, season,
	); err != nil {
		return fmt.Errorf("failed to clear chapters for player %d season %d: %w", playerID, season, err)
	}

	for _, ch := range chapters {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO league_player_chapters (
				player_id, chapter_index, season, start_date, end_date,
				start_game_idx, end_game_idx, title, summary,
				top_champion_id, top_champion_name, top_champion_icon_url, top_champion_games,
				games_count, win_rate, kda_score, cs_score, damage_score, vision_score
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			playerID, ch.ChapterIndex, season, ch.StartDate, ch.EndDate,
			ch.StartGameIdx, ch.EndGameIdx, ch.Title, ch.Summary,
			ch.TopChampionID, ch.TopChampionName, ch.TopChampionIconURL, ch.TopChampionGames,
			ch.GamesCount, ch.WinRate, ch.KDAScore, ch.CSScore, ch.DamageScore, ch.VisionScore,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chapter %d: %w", ch.ChapterIndex, err)
		}
		chapterID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, matchID := range ch.MatchIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO league_chapter_matches (chapter_id, match_id) VALUES (?, ?)`,
				chapterID, matchID,
			); err != nil {
				return fmt.Errorf("failed to link match %d to chapter %d: %w", matchID, ch.ChapterIndex, err)
			}
		}
	}

	return tx.Commit()
}

// ListSeason returns the chapter set for a player+season, oldest first.
func (r *ChapterRepository) ListSeason(ctx context.Context, playerID int64, season int) ([]domain.PlayerChapter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, chapter_index, season, start_date, end_date,
		        start_game_idx, end_game_idx, title, summary,
		        top_champion_id, top_champion_name, top_champion_icon_url, top_champion_games,
		        games_count, win_rate, kda_score, cs_score, damage_score, vision_score
		   FROM league_player_chapters
		  WHERE player_id = ? AND season = ?
		  ORDER BY chapter_index ASC`,
		playerID, season,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []domain.PlayerChapter
	for rows.Next() {
		var ch domain.PlayerChapter
		if err := rows.Scan(&ch.ID, &ch.PlayerID, &ch.ChapterIndex, &ch.Season, &ch.StartDate, &ch.EndDate,
			&ch.StartGameIdx, &ch.EndGameIdx, &ch.Title, &ch.Summary,
			&ch.TopChampionID, &ch.TopChampionName, &ch.TopChampionIconURL, &ch.TopChampionGames,
			&ch.GamesCount, &ch.WinRate, &ch.KDAScore, &ch.CSScore, &ch.DamageScore, &ch.VisionScore); err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// Seasons returns the seasons a player has chapters for.
func (r *ChapterRepository) Seasons(ctx context.Context, playerID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT season FROM league_player_chapters WHERE player_id = ? ORDER BY season`,
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// UpdateSummary fills the narrative summary of one chapter.
func (r *ChapterRepository) UpdateSummary(ctx context.Context, chapterID int64, title, summary string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE league_player_chapters SET title = ?, summary = ? WHERE id = ?`,
		title, summary, chapterID,
	)
	return err
}

// validateChapterSet rejects overlapping or non-contiguous game ranges
// before anything touches the database.
func validateChapterSet(chapters []domain.PlayerChapter) error {
	prevEnd := 0
	for _, ch := range chapters {
		if ch.StartGameIdx > ch.EndGameIdx {
			return fmt.Errorf("chapter %d range [%d,%d]: %w",
				ch.ChapterIndex, ch.StartGameIdx, ch.EndGameIdx, domain.ErrConstraintViolation)
		}
		if ch.StartGameIdx != prevEnd+1 {
			return fmt.Errorf("chapter %d starts at game %d after end %d: %w",
				ch.ChapterIndex, ch.StartGameIdx, prevEnd, domain.ErrConstraintViolation)
		}
		prevEnd = ch.EndGameIdx
	}
	return nil
}
