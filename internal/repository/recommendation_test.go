package repository

import (
	"context"
	"errors"
	"testing"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

func TestRecommendationReplaceForPlayer(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewRecommendationRepository(db, zerolog.Nop())
	ctx := context.Background()

	first := []domain.ChampionRecommendation{
		{PlayerID: playerID, ChampionID: 103, ChampionName: "Ahri", Rank: 1},
		{PlayerID: playerID, ChampionID: 7, ChampionName: "LeBlanc", Rank: 2},
		{PlayerID: playerID, ChampionID: 134, ChampionName: "Syndra", Rank: 3},
	}
	if err := repo.ReplaceForPlayer(ctx, playerID, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []domain.ChampionRecommendation{
		{PlayerID: playerID, ChampionID: 7, ChampionName: "LeBlanc", Rank: 1},
	}
	if err := repo.ReplaceForPlayer(ctx, playerID, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := repo.ListByPlayer(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("replace should swap the whole set, got %d rows", len(got))
	}
	if got[0].ChampionName != "LeBlanc" || got[0].Rank != 1 {
		t.Errorf("got %s rank %d, want LeBlanc rank 1", got[0].ChampionName, got[0].Rank)
	}
}

func TestRecommendationRejectsBadRanks(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewRecommendationRepository(db, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		name string
		recs []domain.ChampionRecommendation
	}{
		{"duplicate rank", []domain.ChampionRecommendation{
			{PlayerID: playerID, ChampionID: 103, ChampionName: "Ahri", Rank: 1},
			{PlayerID: playerID, ChampionID: 7, ChampionName: "LeBlanc", Rank: 1},
		}},
		{"rank zero", []domain.ChampionRecommendation{
			{PlayerID: playerID, ChampionID: 103, ChampionName: "Ahri", Rank: 0},
		}},
		{"rank above cap", []domain.ChampionRecommendation{
			{PlayerID: playerID, ChampionID: 103, ChampionName: "Ahri", Rank: 4},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.ReplaceForPlayer(ctx, playerID, tc.recs)
			if !errors.Is(err, domain.ErrConstraintViolation) {
				t.Errorf("got %v, want ErrConstraintViolation", err)
			}
		})
	}
}

func TestRecommendationListOrderedByRank(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewRecommendationRepository(db, zerolog.Nop())
	ctx := context.Background()

	recs := []domain.ChampionRecommendation{
		{PlayerID: playerID, ChampionID: 134, ChampionName: "Syndra", Rank: 3},
		{PlayerID: playerID, ChampionID: 103, ChampionName: "Ahri", Rank: 1},
		{PlayerID: playerID, ChampionID: 7, ChampionName: "LeBlanc", Rank: 2},
	}
	if err := repo.ReplaceForPlayer(ctx, playerID, recs); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListByPlayer(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	for i, rec := range got {
		if rec.Rank != i+1 {
			t.Errorf("position %d has rank %d", i, rec.Rank)
		}
	}
}
