package chapters

import (
	"testing"
	"time"

	"league-journey/internal/config"
	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

func newTestAggregator(mode string, size, rangeDays int) *Aggregator {
	cfg := &config.Config{Analysis: config.DefaultAnalysisConfig()}
	cfg.Analysis.Chapters.Mode = mode
	cfg.Analysis.Chapters.Size = size
	cfg.Analysis.Chapters.RangeDays = rangeDays
	return NewAggregator(cfg, zerolog.Nop())
}

// makeHistory builds n matches one day apart, oldest first.
func makeHistory(n int) []domain.PlayerMatchMetrics {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	history := make([]domain.PlayerMatchMetrics, n)
	for i := range history {
		kda := 3.0
		cs := 7.0
		history[i] = domain.PlayerMatchMetrics{
			MatchID:         int64(i + 1),
			PlayerID:        1,
			ChampionID:      int64(100 + i%3),
			ChampionName:    "Champ",
			Win:             i%2 == 0,
			KDARatio:        &kda,
			CSPerMin:        &cs,
			MatchRecordedAt: base.AddDate(0, 0, i).UnixMilli(),
		}
	}
	return history
}

func TestAggregate_TenMatchesSizeFive(t *testing.T) {
	agg := newTestAggregator("count", 5, 0)
	chapters := agg.Aggregate(1, 2025, makeHistory(10))

	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].ChapterIndex != 1 || chapters[1].ChapterIndex != 2 {
		t.Errorf("expected indices 1 and 2, got %d and %d", chapters[0].ChapterIndex, chapters[1].ChapterIndex)
	}
	if chapters[0].StartGameIdx != 1 || chapters[0].EndGameIdx != 5 {
		t.Errorf("chapter 1 should cover games 1-5, got %d-%d", chapters[0].StartGameIdx, chapters[0].EndGameIdx)
	}
	if chapters[1].StartGameIdx != 6 || chapters[1].EndGameIdx != 10 {
		t.Errorf("chapter 2 should cover games 6-10, got %d-%d", chapters[1].StartGameIdx, chapters[1].EndGameIdx)
	}
}

func TestAggregate_CoversHistoryExactlyOnce(t *testing.T) {
	agg := newTestAggregator("count", 4, 0)
	history := makeHistory(11)
	chapters := agg.Aggregate(1, 2025, history)

	seen := make(map[int64]int)
	prevEnd := 0
	for _, ch := range chapters {
		if ch.StartGameIdx != prevEnd+1 {
			t.Errorf("chapter %d not contiguous: starts at %d after end %d", ch.ChapterIndex, ch.StartGameIdx, prevEnd)
		}
		if ch.StartGameIdx > ch.EndGameIdx {
			t.Errorf("chapter %d has start_game_idx > end_game_idx", ch.ChapterIndex)
		}
		prevEnd = ch.EndGameIdx
		for _, id := range ch.MatchIDs {
			seen[id]++
		}
	}
	if prevEnd != len(history) {
		t.Errorf("chapters cover %d games, history has %d", prevEnd, len(history))
	}
	for _, m := range history {
		if seen[m.MatchID] != 1 {
			t.Errorf("match %d covered %d times", m.MatchID, seen[m.MatchID])
		}
	}
}

func TestAggregate_EmptyHistory(t *testing.T) {
	agg := newTestAggregator("count", 5, 0)
	if chapters := agg.Aggregate(1, 2025, nil); len(chapters) != 0 {
		t.Errorf("expected zero chapters for empty history, got %d", len(chapters))
	}
}

func TestAggregate_DateRangeMode(t *testing.T) {
	agg := newTestAggregator("date_range", 0, 7)
	// 14 daily matches from the anchor → two 7-day windows.
	chapters := agg.Aggregate(1, 2025, makeHistory(14))

	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters for 14 daily matches in 7-day windows, got %d", len(chapters))
	}
	if chapters[0].GamesCount != 7 || chapters[1].GamesCount != 7 {
		t.Errorf("expected 7 games per chapter, got %d and %d", chapters[0].GamesCount, chapters[1].GamesCount)
	}
}

func TestAggregate_WinRateAndScores(t *testing.T) {
	agg := newTestAggregator("count", 10, 0)
	chapters := agg.Aggregate(1, 2025, makeHistory(10))

	ch := chapters[0]
	if ch.WinRate != 0.5 {
		t.Errorf("expected win_rate 0.5, got %v", ch.WinRate)
	}
	for name, score := range map[string]float64{
		"kda":    ch.KDAScore,
		"cs":     ch.CSScore,
		"damage": ch.DamageScore,
		"vision": ch.VisionScore,
	} {
		if score < 0 || score > 100 {
			t.Errorf("%s score out of [0,100]: %v", name, score)
		}
	}
	// KDA 3.0 against the default 0-6 range.
	if ch.KDAScore != 50 {
		t.Errorf("expected kda score 50, got %v", ch.KDAScore)
	}
}

func TestMinMaxScale_Clamps(t *testing.T) {
	s := MinMaxScale{Range: config.ScaleRange{Min: 0, Max: 10}}
	if got := s.Score(-5); got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}
	if got := s.Score(25); got != 100 {
		t.Errorf("expected clamp to 100, got %v", got)
	}
	if got := s.Score(5); got != 50 {
		t.Errorf("expected 50 at midpoint, got %v", got)
	}
}

func TestTopChampion_TieBreaks(t *testing.T) {
	win := func(id int64, won bool) domain.PlayerMatchMetrics {
		return domain.PlayerMatchMetrics{ChampionID: id, ChampionName: "c", Win: won}
	}

	// Equal games, champion 200 has the higher win rate.
	id, _, games := topChampion([]domain.PlayerMatchMetrics{
		win(100, false), win(100, false),
		win(200, true), win(200, false),
	})
	if id != 200 || games != 2 {
		t.Errorf("expected champion 200 by win rate, got %d (%d games)", id, games)
	}

	// Equal games and win rate → lowest champion id.
	id, _, _ = topChampion([]domain.PlayerMatchMetrics{
		win(300, true), win(100, true),
	})
	if id != 100 {
		t.Errorf("expected champion 100 by lowest id, got %d", id)
	}
}
