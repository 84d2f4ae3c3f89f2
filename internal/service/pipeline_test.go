package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"league-journey/internal/domain"
	"league-journey/internal/repository"
	"league-journey/internal/similarity"

	"github.com/rs/zerolog"
)

func newPipelineService(db *sql.DB) *PipelineService {
	return &PipelineService{
		players:        repository.NewPlayerRepository(db, zerolog.Nop()),
		playstyleRepo:  repository.NewPlaystyleRepository(db, zerolog.Nop()),
		matcher:        similarity.NewMatcher(zerolog.Nop()),
		similarityRepo: repository.NewSimilarityRepository(db, zerolog.Nop()),
		pros:           repository.NewProPlayerRepository(db, zerolog.Nop()),
		topN:           3,
		logger:         zerolog.Nop(),
	}
}

func seedProVector(t *testing.T, svc *PipelineService, name string, aggressiveness float64) int64 {
	t.Helper()
	ctx := context.Background()

	pro := &domain.ProPlayer{Name: name, Region: "kr", Role: "MIDDLE"}
	if err := svc.pros.Upsert(ctx, pro); err != nil {
		t.Fatal(err)
	}
	ps := &domain.PlayerPlaystyle{
		Owner: domain.ProPlayerOwner(pro.ID),
		Vector: domain.PlaystyleVector{
			Aggressiveness:   aggressiveness,
			TeamFocus:        50,
			ObjectiveControl: 50,
			VisionControl:    50,
			FarmEfficiency:   50,
			LateGameScaling:  50,
		},
	}
	if err := svc.playstyleRepo.Upsert(ctx, ps); err != nil {
		t.Fatal(err)
	}
	return pro.ID
}

func TestRebuildSimilarityStoresEveryPro(t *testing.T) {
	db := newTestDB(t)
	svc := newPipelineService(db)
	ctx := context.Background()

	player := &domain.Player{GameName: "Faker", TagLine: "KR1", Puuid: "puuid-faker", Region: "kr"}
	playerID, err := svc.players.Create(ctx, player)
	if err != nil {
		t.Fatal(err)
	}

	const roster = 5
	for i := 0; i < roster; i++ {
		seedProVector(t, svc, fmt.Sprintf("pro-%d", i), float64(30+i*10))
	}

	ps := &domain.PlayerPlaystyle{
		Owner: domain.PlayerOwner(playerID),
		Vector: domain.PlaystyleVector{
			Aggressiveness:   60,
			TeamFocus:        50,
			ObjectiveControl: 50,
			VisionControl:    50,
			FarmEfficiency:   50,
			LateGameScaling:  50,
		},
	}
	if err := svc.playstyleRepo.Upsert(ctx, ps); err != nil {
		t.Fatal(err)
	}

	results, err := svc.rebuildSimilarity(ctx, playerID, ps)
	if err != nil {
		t.Fatalf("rebuild similarity: %v", err)
	}
	if len(results) != roster {
		t.Fatalf("matcher returned %d results, want one per pro (%d)", len(results), roster)
	}

	// The ranking is stored whole; only the recommendation stage narrows
	// to the top-N slice.
	stored, err := svc.similarityRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != roster {
		t.Fatalf("stored %d similarity rows, want one per pro (%d)", len(stored), roster)
	}
	for i := 1; i < len(stored); i++ {
		if stored[i].Score > stored[i-1].Score {
			t.Errorf("stored rows not ranked best first: %f after %f", stored[i].Score, stored[i-1].Score)
		}
	}
}
