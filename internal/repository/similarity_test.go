package repository

import (
	"context"
	"testing"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

func TestSimilarityReplaceForPlayer(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	proA := seedPro(t, db, "Chovy", nil)
	proB := seedPro(t, db, "Caps", nil)
	repo := NewSimilarityRepository(db, zerolog.Nop())
	ctx := context.Background()

	first := []domain.SimilarityMatch{
		{PlayerID: playerID, ProPlayerID: proA, Score: 0.9},
		{PlayerID: playerID, ProPlayerID: proB, Score: 0.7},
	}
	if err := repo.ReplaceForPlayer(ctx, playerID, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []domain.SimilarityMatch{{PlayerID: playerID, ProPlayerID: proB, Score: 0.95}}
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
	if got[0].ProPlayerID != proB || got[0].Score != 0.95 {
		t.Errorf("got pro %d score %v, want pro %d score 0.95", got[0].ProPlayerID, got[0].Score, proB)
	}
	if got[0].ID == "" {
		t.Error("stored match should have a generated id")
	}
}

func TestSimilarityListOrdering(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	proA := seedPro(t, db, "Chovy", nil)
	proB := seedPro(t, db, "Caps", nil)
	proC := seedPro(t, db, "Knight", nil)
	repo := NewSimilarityRepository(db, zerolog.Nop())
	ctx := context.Background()

	matches := []domain.SimilarityMatch{
		{PlayerID: playerID, ProPlayerID: proC, Score: 0.8},
		{PlayerID: playerID, ProPlayerID: proA, Score: 0.6},
		{PlayerID: playerID, ProPlayerID: proB, Score: 0.8},
	}
	if err := repo.ReplaceForPlayer(ctx, playerID, matches); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListByPlayer(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []int64{proB, proC, proA}
	for i, want := range wantOrder {
		if got[i].ProPlayerID != want {
			t.Errorf("position %d: got pro %d, want %d", i, got[i].ProPlayerID, want)
		}
	}
}

func TestSimilarityUpdateExplanation(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	proA := seedPro(t, db, "Chovy", nil)
	repo := NewSimilarityRepository(db, zerolog.Nop())
	ctx := context.Background()

	if err := repo.ReplaceForPlayer(ctx, playerID, []domain.SimilarityMatch{
		{PlayerID: playerID, ProPlayerID: proA, Score: 0.9},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListByPlayer(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateExplanation(ctx, got[0].ID, "shares your roaming mid profile"); err != nil {
		t.Fatal(err)
	}

	got, err = repo.ListByPlayer(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].FeatureExplanation != "shares your roaming mid profile" {
		t.Errorf("explanation = %q", got[0].FeatureExplanation)
	}
}
