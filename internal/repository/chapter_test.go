package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

func TestReplaceSeasonSwapsWholeSet(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewChapterRepository(db, zerolog.Nop())
	ctx := context.Background()

	var matchIDs []int64
	for i := 0; i < 4; i++ {
		matchIDs = append(matchIDs, seedMatch(t, db, playerID, fmt.Sprintf("EUW1_%d", i), int64(i*1000)))
	}

	first := []domain.PlayerChapter{
		testChapter(1, 1, 2, matchIDs[:2]),
		testChapter(2, 3, 4, matchIDs[2:]),
	}
	if err := repo.ReplaceSeason(ctx, playerID, 2025, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []domain.PlayerChapter{testChapter(1, 1, 4, matchIDs)}
	if err := repo.ReplaceSeason(ctx, playerID, 2025, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	chapters, err := repo.ListSeason(ctx, playerID, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 1 {
		t.Fatalf("recompute should replace the chapter set, got %d chapters", len(chapters))
	}
	if chapters[0].StartGameIdx != 1 || chapters[0].EndGameIdx != 4 {
		t.Errorf("chapter range [%d,%d], want [1,4]", chapters[0].StartGameIdx, chapters[0].EndGameIdx)
	}

	var links int
	if err := db.QueryRow(`SELECT COUNT(*) FROM league_chapter_matches`).Scan(&links); err != nil {
		t.Fatal(err)
	}
	if links != 4 {
		t.Errorf("stale chapter-match links survived the replace: got %d, want 4", links)
	}
}

func TestReplaceSeasonLeavesOtherSeasonsAlone(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewChapterRepository(db, zerolog.Nop())
	ctx := context.Background()

	if err := repo.ReplaceSeason(ctx, playerID, 2024, []domain.PlayerChapter{testChapter(1, 1, 1, nil)}); err != nil {
		t.Fatal(err)
	}
	if err := repo.ReplaceSeason(ctx, playerID, 2025, []domain.PlayerChapter{testChapter(1, 1, 1, nil)}); err != nil {
		t.Fatal(err)
	}
	if err := repo.ReplaceSeason(ctx, playerID, 2025, nil); err != nil {
		t.Fatal(err)
	}

	prev, err := repo.ListSeason(ctx, playerID, 2024)
	if err != nil {
		t.Fatal(err)
	}
	if len(prev) != 1 {
		t.Errorf("replacing 2025 should not touch 2024, got %d chapters", len(prev))
	}

	seasons, err := repo.Seasons(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(seasons) != 1 || seasons[0] != 2024 {
		t.Errorf("seasons = %v, want [2024]", seasons)
	}
}

func TestReplaceSeasonRejectsBrokenRanges(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewChapterRepository(db, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		name     string
		chapters []domain.PlayerChapter
	}{
		{"gap between chapters", []domain.PlayerChapter{testChapter(1, 1, 2, nil), testChapter(2, 4, 5, nil)}},
		{"overlapping chapters", []domain.PlayerChapter{testChapter(1, 1, 3, nil), testChapter(2, 3, 5, nil)}},
		{"inverted range", []domain.PlayerChapter{testChapter(1, 2, 1, nil)}},
		{"does not start at one", []domain.PlayerChapter{testChapter(1, 2, 3, nil)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.ReplaceSeason(ctx, playerID, 2025, tc.chapters)
			if !errors.Is(err, domain.ErrConstraintViolation) {
				t.Errorf("got %v, want ErrConstraintViolation", err)
			}
		})
	}
}
