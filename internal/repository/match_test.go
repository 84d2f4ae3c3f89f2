package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"league-journey/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestStoreRawDedupesOnMatchID(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	raw := json.RawMessage(`{"metadata":{"matchId":"EUW1_100"}}`)
	id1, isNew, err := repo.StoreRaw(ctx, playerID, "EUW1_100", raw, 1000)
	if err != nil {
		t.Fatalf("first store: %v", err)
	}
	if !isNew {
		t.Error("first store should report a new row")
	}

	id2, isNew, err := repo.StoreRaw(ctx, playerID, "EUW1_100", raw, 1000)
	if err != nil {
		t.Fatalf("second store: %v", err)
	}
	if isNew {
		t.Error("duplicate store should not report a new row")
	}
	if id1 != id2 {
		t.Errorf("duplicate store returned id %d, want existing id %d", id2, id1)
	}
}

func TestStoreRawSameMatchTwoPlayers(t *testing.T) {
	db := newTestDB(t)
	p1 := seedPlayer(t, db, "Faker", "puuid-faker")
	p2 := seedPlayer(t, db, "Chovy", "puuid-chovy")
	repo := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	raw := json.RawMessage(`{}`)
	id1, _, err := repo.StoreRaw(ctx, p1, "EUW1_100", raw, 1000)
	if err != nil {
		t.Fatal(err)
	}
	id2, isNew, err := repo.StoreRaw(ctx, p2, "EUW1_100", raw, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !isNew || id1 == id2 {
		t.Errorf("two tracked players in one match should get separate rows, got %d and %d", id1, id2)
	}
}

func TestSaveMetricsMarksMatchProcessed(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	matchRowID := seedMatch(t, db, playerID, "EUW1_100", 1000)
	repo := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	processed, err := repo.IsProcessed(ctx, matchRowID)
	if err != nil {
		t.Fatal(err)
	}
	if processed {
		t.Fatal("fresh match should not be processed")
	}

	if err := repo.SaveMetrics(ctx, metricsFor(matchRowID, playerID, 103, "Ahri", 1000)); err != nil {
		t.Fatalf("save metrics: %v", err)
	}

	processed, err = repo.IsProcessed(ctx, matchRowID)
	if err != nil {
		t.Fatal(err)
	}
	if !processed {
		t.Error("match should be processed after its metrics are stored")
	}

	unprocessed, err := repo.GetUnprocessed(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(unprocessed) != 0 {
		t.Errorf("expected no unprocessed matches, got %d", len(unprocessed))
	}
}

func TestSaveMetricsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	matchRowID := seedMatch(t, db, playerID, "EUW1_100", 1000)
	repo := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	m := metricsFor(matchRowID, playerID, 103, "Ahri", 1000)
	if err := repo.SaveMetrics(ctx, m); err != nil {
		t.Fatal(err)
	}
	m.Kills = 12
	if err := repo.SaveMetrics(ctx, m); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	history, err := repo.MetricsHistory(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("recompute should replace the metrics row, got %d rows", len(history))
	}
	if history[0].Kills != 12 {
		t.Errorf("kills = %d, want recomputed value 12", history[0].Kills)
	}
}

func TestMetricsHistoryOrderAndBlobs(t *testing.T) {
	db := newTestDB(t)
	playerID := seedPlayer(t, db, "Faker", testPuuid)
	repo := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	// Insert out of chronological order.
	for _, ts := range []int64{3000, 1000, 2000} {
		matchRowID := seedMatch(t, db, playerID, fmt.Sprintf("EUW1_%d", ts), ts)
		if err := repo.SaveMetrics(ctx, metricsFor(matchRowID, playerID, 103, "Ahri", ts)); err != nil {
			t.Fatal(err)
		}
	}

	history, err := repo.MetricsHistory(ctx, playerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].MatchRecordedAt < history[i-1].MatchRecordedAt {
			t.Fatalf("history not ordered by recorded timestamp: %d before %d",
				history[i-1].MatchRecordedAt, history[i].MatchRecordedAt)
		}
	}

	if diff := cmp.Diff([]int{3089, 3157}, history[0].Items); diff != "" {
		t.Errorf("items blob mismatch (-want +got):\n%s", diff)
	}
	if history[0].CSPerMin == nil || *history[0].CSPerMin != 7.2 {
		t.Errorf("cs_per_min lost through storage: %v", history[0].CSPerMin)
	}
	if history[0].DamageShare != nil {
		t.Errorf("absent damage share should stay null, got %v", *history[0].DamageShare)
	}
}

func TestIsProcessedUnknownMatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db, zerolog.Nop())

	_, err := repo.IsProcessed(context.Background(), 9999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown match row: got %v, want ErrNotFound", err)
	}
}
