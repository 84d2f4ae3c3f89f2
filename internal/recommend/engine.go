// Package recommend derives champion-pool suggestions from similarity
// results and the player's own champion history.
package recommend

import (
	"sort"

	"league-journey/internal/config"
	"league-journey/internal/constants"
	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// RankedPro is one similar pro with their champion pool, best match first
// as produced by the similarity matcher.
type RankedPro struct {
	ProPlayerID int64
	Score       float64
	Pool        []ChampionPlay
}

type ChampionPlay struct {
	ChampionID   int64
	ChampionName string
	Games        int
}

// Candidate is a ranked recommendation before persistence.
type Candidate struct {
	Rank         int
	ChampionID   int64
	ChampionName string
	Score        float64
	// SourcePros are the pros whose pools contributed this champion,
	// carried for the narrative reason payload.
	SourcePros []int64
}

type Engine struct {
	topN         int
	masteryGames int
	logger       zerolog.Logger
}

func NewEngine(cfg *config.Config, logger zerolog.Logger) *Engine {
	return &Engine{
		topN:         cfg.Analysis.Similarity.TopN,
		masteryGames: cfg.Analysis.Recommend.MasteryGames,
		logger:       logger,
	}
}

// Recommend produces up to three candidates, rank 1 first. Candidates are
// champions played by the top-N most similar pros that the player has not
// mastered; the composite score is similarity-weighted champion frequency.
// Fewer than three viable candidates yields fewer rows, never padding.
func (e *Engine) Recommend(history []domain.PlayerMatchMetrics, pros []RankedPro) []Candidate {
	mastered := masteredChampions(history, e.masteryGames)

	top := pros
	if len(top) > e.topN {
		top = top[:e.topN]
	}

	type entry struct {
		id      int64
		name    string
		score   float64
		sources []int64
	}
	byChampion := make(map[int64]*entry)
	for _, pro := range top {
		for _, play := range pro.Pool {
			if play.Games == 0 {
				continue
			}
			if mastered[play.ChampionID] {
				continue
			}
			en, ok := byChampion[play.ChampionID]
			if !ok {
				en = &entry{id: play.ChampionID, name: play.ChampionName}
				byChampion[play.ChampionID] = en
			}
			en.score += pro.Score * float64(play.Games)
			en.sources = append(en.sources, pro.ProPlayerID)
		}
	}

	entries := make([]*entry, 0, len(byChampion))
	for _, en := range byChampion {
		entries = append(entries, en)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].id < entries[j].id
	})

	if len(entries) > constants.MaxRecommendationRank {
		entries = entries[:constants.MaxRecommendationRank]
	}

	candidates := make([]Candidate, len(entries))
	for i, en := range entries {
		candidates[i] = Candidate{
			Rank:         i + 1,
			ChampionID:   en.id,
			ChampionName: en.name,
			Score:        en.score,
			SourcePros:   en.sources,
		}
	}

	e.logger.Debug().
		Int("pros_considered", len(top)).
		Int("candidates", len(candidates)).
		Msg("recommendations derived")

	return candidates
}

// masteredChampions returns the champions the player already plays at or
// above the mastery threshold.
func masteredChampions(history []domain.PlayerMatchMetrics, masteryGames int) map[int64]bool {
	games := make(map[int64]int)
	for _, m := range history {
		games[m.ChampionID]++
	}
	mastered := make(map[int64]bool)
	for id, n := range games {
		if n >= masteryGames {
			mastered[id] = true
		}
	}
	return mastered
}
