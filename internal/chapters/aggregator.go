// Package chapters partitions a player's chronologically ordered match
// metrics into contiguous, non-overlapping chapters and scores each one.
package chapters

import (
	"sort"
	"time"

	"league-journey/internal/config"
	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// Scale maps a raw per-chapter aggregate onto the 0-100 score range. It
// must be monotonic and clamp at both ends.
type Scale interface {
	Score(v float64) float64
}

// MinMaxScale maps a reference range linearly onto [0,100].
type MinMaxScale struct {
	Range config.ScaleRange
}

func (s MinMaxScale) Score(v float64) float64 {
	span := s.Range.Max - s.Range.Min
	if span <= 0 {
		return 0
	}
	score := (v - s.Range.Min) / span * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

type Aggregator struct {
	cfg    config.ChapterConfig
	logger zerolog.Logger

	kdaScale    Scale
	csScale     Scale
	damageScale Scale
	visionScale Scale
}

func NewAggregator(cfg *config.Config, logger zerolog.Logger) *Aggregator {
	ch := cfg.Analysis.Chapters
	return &Aggregator{
		cfg:         ch,
		logger:      logger,
		kdaScale:    MinMaxScale{Range: ch.KDA},
		csScale:     MinMaxScale{Range: ch.CSPerMin},
		damageScale: MinMaxScale{Range: ch.DamageShare},
		visionScale: MinMaxScale{Range: ch.VisionPerMin},
	}
}

// Aggregate partitions the ordered history (ascending match timestamp)
// into chapters, oldest first, chapter_index starting at 1. Empty history
// yields zero chapters.
func (a *Aggregator) Aggregate(playerID int64, season int, history []domain.PlayerMatchMetrics) []domain.PlayerChapter {
	if len(history) == 0 {
		return nil
	}

	runs := a.partition(history)

	chapters := make([]domain.PlayerChapter, 0, len(runs))
	gameIdx := 1
	for i, run := range runs {
		ch := a.buildChapter(playerID, season, i+1, gameIdx, run)
		chapters = append(chapters, ch)
		gameIdx += len(run)
	}

	a.logger.Debug().
		Int64("player_id", playerID).
		Int("season", season).
		Int("matches", len(history)).
		Int("chapters", len(chapters)).
		Msg("history partitioned into chapters")

	return chapters
}

func (a *Aggregator) partition(history []domain.PlayerMatchMetrics) [][]domain.PlayerMatchMetrics {
	if a.cfg.Mode == "date_range" {
		return partitionByDate(history, a.cfg.RangeDays)
	}
	return partitionByCount(history, a.cfg.Size)
}

func partitionByCount(history []domain.PlayerMatchMetrics, size int) [][]domain.PlayerMatchMetrics {
	var runs [][]domain.PlayerMatchMetrics
	for start := 0; start < len(history); start += size {
		end := start + size
		if end > len(history) {
			end = len(history)
		}
		runs = append(runs, history[start:end])
	}
	return runs
}

// partitionByDate buckets matches into fixed-length windows anchored at
// the first match. Windows with no matches produce no chapter, so game
// indices stay contiguous.
func partitionByDate(history []domain.PlayerMatchMetrics, rangeDays int) [][]domain.PlayerMatchMetrics {
	window := time.Duration(rangeDays) * 24 * time.Hour
	anchor := time.UnixMilli(history[0].MatchRecordedAt)

	var runs [][]domain.PlayerMatchMetrics
	var current []domain.PlayerMatchMetrics
	bucket := 0
	for _, m := range history {
		b := int(time.UnixMilli(m.MatchRecordedAt).Sub(anchor) / window)
		if b != bucket && len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
		bucket = b
		current = append(current, m)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

func (a *Aggregator) buildChapter(playerID int64, season, index, startIdx int, run []domain.PlayerMatchMetrics) domain.PlayerChapter {
	wins := 0
	matchIDs := make([]int64, len(run))
	for i, m := range run {
		if m.Win {
			wins++
		}
		matchIDs[i] = m.MatchID
	}

	topID, topName, topGames := topChampion(run)

	return domain.PlayerChapter{
		PlayerID:     playerID,
		ChapterIndex: index,
		Season:       season,

		StartDate: time.UnixMilli(run[0].MatchRecordedAt),
		EndDate:   time.UnixMilli(run[len(run)-1].MatchRecordedAt),

		StartGameIdx: startIdx,
		EndGameIdx:   startIdx + len(run) - 1,

		TopChampionID:    topID,
		TopChampionName:  topName,
		TopChampionGames: topGames,

		GamesCount:  len(run),
		WinRate:     float64(wins) / float64(len(run)),
		KDAScore:    a.kdaScale.Score(mean(run, func(m domain.PlayerMatchMetrics) *float64 { return m.KDARatio })),
		CSScore:     a.csScale.Score(mean(run, func(m domain.PlayerMatchMetrics) *float64 { return m.CSPerMin })),
		DamageScore: a.damageScale.Score(mean(run, func(m domain.PlayerMatchMetrics) *float64 { return m.DamageShare })),
		VisionScore: a.visionScale.Score(mean(run, func(m domain.PlayerMatchMetrics) *float64 { return m.VisionScorePerMin })),

		MatchIDs: matchIDs,
	}
}

// mean averages a nullable field over the run, skipping nulls.
func mean(run []domain.PlayerMatchMetrics, get func(domain.PlayerMatchMetrics) *float64) float64 {
	sum := 0.0
	n := 0
	for _, m := range run {
		if v := get(m); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// topChampion picks the most played champion in the run; ties break by
// highest win rate, then by lowest champion id.
func topChampion(run []domain.PlayerMatchMetrics) (int64, string, int) {
	type champStat struct {
		id    int64
		name  string
		games int
		wins  int
	}
	byID := make(map[int64]*champStat)
	for _, m := range run {
		cs, ok := byID[m.ChampionID]
		if !ok {
			cs = &champStat{id: m.ChampionID, name: m.ChampionName}
			byID[m.ChampionID] = cs
		}
		cs.games++
		if m.Win {
			cs.wins++
		}
	}

	stats := make([]*champStat, 0, len(byID))
	for _, cs := range byID {
		stats = append(stats, cs)
	}
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.games != b.games {
			return a.games > b.games
		}
		aw := float64(a.wins) / float64(a.games)
		bw := float64(b.wins) / float64(b.games)
		if aw != bw {
			return aw > bw
		}
		return a.id < b.id
	})

	top := stats[0]
	return top.id, top.name, top.games
}
