package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"league-journey/internal/config"
	"league-journey/internal/database"
	"league-journey/internal/domain"
	"league-journey/internal/metrics"
	"league-journey/internal/repository"

	"github.com/rs/zerolog"
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

func newIngestService(db *sql.DB) *IngestService {
	return &IngestService{
		players:  repository.NewPlayerRepository(db, zerolog.Nop()),
		matches:  repository.NewMatchRepository(db, zerolog.Nop()),
		computer: metrics.NewComputer(zerolog.Nop()),
		maxFetch: 20,
		logger:   zerolog.Nop(),
	}
}

func rawPayload(matchID, puuid string) json.RawMessage {
	doc := fmt.Sprintf(`{
		"metadata": {"matchId": %q, "participants": [%q]},
		"info": {
			"gameCreation": 1700000000000,
			"gameDuration": 1800,
			"gameVersion": "15.1",
			"queueId": 420,
			"participants": [{
				"puuid": %q,
				"participantId": 1,
				"teamId": 100,
				"win": true,
				"championId": 103,
				"championName": "Ahri",
				"teamPosition": "MIDDLE",
				"lane": "MIDDLE",
				"kills": 6,
				"deaths": 2,
				"assists": 9,
				"goldEarned": 13200,
				"totalDamageDealtToChampions": 23000,
				"totalMinionsKilled": 210,
				"visionScore": 28
			}]
		}
	}`, matchID, puuid, puuid)
	return json.RawMessage(doc)
}

func TestProcessUnprocessedComputesMetrics(t *testing.T) {
	db := newTestDB(t)
	svc := newIngestService(db)
	ctx := context.Background()

	player := &domain.Player{GameName: "Faker", TagLine: "KR1", Puuid: "puuid-faker", Region: "kr"}
	id, err := svc.players.Create(ctx, player)
	if err != nil {
		t.Fatal(err)
	}
	player.ID = id

	if _, _, err := svc.matches.StoreRaw(ctx, id, "KR_1", rawPayload("KR_1", player.Puuid), 1700000000000); err != nil {
		t.Fatal(err)
	}

	report := &IngestReport{}
	if err := svc.ProcessUnprocessed(ctx, player, report); err != nil {
		t.Fatalf("process: %v", err)
	}
	if report.Processed != 1 || report.Skipped != 0 {
		t.Errorf("report = %+v, want 1 processed, 0 skipped", report)
	}

	history, err := svc.matches.MetricsHistory(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 metrics row, got %d", len(history))
	}
	if history[0].ChampionName != "Ahri" || history[0].Kills != 6 {
		t.Errorf("metrics not derived from payload: %+v", history[0])
	}
	if history[0].MatchRecordedAt != 1700000000000 {
		t.Errorf("match timestamp not carried onto metrics: %d", history[0].MatchRecordedAt)
	}
}

func TestProcessUnprocessedLeavesMissingParticipantPending(t *testing.T) {
	db := newTestDB(t)
	svc := newIngestService(db)
	ctx := context.Background()

	player := &domain.Player{GameName: "Faker", TagLine: "KR1", Puuid: "puuid-faker", Region: "kr"}
	id, err := svc.players.Create(ctx, player)
	if err != nil {
		t.Fatal(err)
	}
	player.ID = id

	// Payload holds a different player's participant data.
	if _, _, err := svc.matches.StoreRaw(ctx, id, "KR_2", rawPayload("KR_2", "someone-else"), 1700000000000); err != nil {
		t.Fatal(err)
	}

	report := &IngestReport{}
	if err := svc.ProcessUnprocessed(ctx, player, report); err != nil {
		t.Fatalf("process should not fail on a missing participant: %v", err)
	}
	if report.Processed != 0 || report.Skipped != 1 {
		t.Errorf("report = %+v, want 0 processed, 1 skipped", report)
	}

	pending, err := svc.matches.GetUnprocessed(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("match should stay unprocessed for retry, got %d pending", len(pending))
	}
}

func TestMatchIdentity(t *testing.T) {
	matchID, ts, err := matchIdentity(rawPayload("EUW1_42", "p"))
	if err != nil {
		t.Fatal(err)
	}
	if matchID != "EUW1_42" || ts != 1700000000000 {
		t.Errorf("got %q/%d", matchID, ts)
	}

	if _, _, err := matchIdentity(json.RawMessage(`{"info":{}}`)); err == nil {
		t.Error("payload without match id should be rejected")
	}
	if _, _, err := matchIdentity(json.RawMessage(`not json`)); err == nil {
		t.Error("malformed payload should be rejected")
	}
}
