package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"league-journey/internal/config"
	"league-journey/internal/database"
	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

const (
	testRegion = "euw1"
	testPuuid  = "puuid-test-0001"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedPlayer(t *testing.T, db *sql.DB, gameName, puuid string) int64 {
	t.Helper()

	repo := NewPlayerRepository(db, zerolog.Nop())
	id, err := repo.Create(context.Background(), &domain.Player{
		GameName: gameName,
		TagLine:  "EUW",
		Puuid:    puuid,
		Region:   testRegion,
	})
	if err != nil {
		t.Fatalf("seed player %s: %v", gameName, err)
	}
	return id
}

func seedPro(t *testing.T, db *sql.DB, name string, puuid *string) int64 {
	t.Helper()

	repo := NewProPlayerRepository(db, zerolog.Nop())
	pro := &domain.ProPlayer{Name: name, Region: testRegion, Role: "mid", Puuid: puuid}
	if err := repo.Upsert(context.Background(), pro); err != nil {
		t.Fatalf("seed pro %s: %v", name, err)
	}
	return pro.ID
}

func seedMatch(t *testing.T, db *sql.DB, playerID int64, matchID string, ts int64) int64 {
	t.Helper()

	repo := NewMatchRepository(db, zerolog.Nop())
	raw := json.RawMessage(fmt.Sprintf(`{"metadata":{"matchId":%q}}`, matchID))
	id, _, err := repo.StoreRaw(context.Background(), playerID, matchID, raw, ts)
	if err != nil {
		t.Fatalf("seed match %s: %v", matchID, err)
	}
	return id
}

func metricsFor(matchRowID, playerID, championID int64, champion string, ts int64) *domain.PlayerMatchMetrics {
	cs := 7.2
	return &domain.PlayerMatchMetrics{
		MatchID:         matchRowID,
		PlayerID:        playerID,
		ChampionID:      championID,
		ChampionName:    champion,
		Kills:           5,
		Deaths:          2,
		Assists:         8,
		Win:             true,
		CSPerMin:        &cs,
		Items:           []int{3089, 3157},
		MatchRecordedAt: ts,
	}
}

func testChapter(index int, startGame, endGame int, matchIDs []int64) domain.PlayerChapter {
	day := 24 * time.Hour
	return domain.PlayerChapter{
		ChapterIndex: index,
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(startGame) * day),
		EndDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(endGame) * day),
		StartGameIdx: startGame,
		EndGameIdx:   endGame,
		GamesCount:   endGame - startGame + 1,
		WinRate:      0.5,
		MatchIDs:     matchIDs,
	}
}
