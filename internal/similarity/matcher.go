// Package similarity ranks pro players against a player's playstyle
// vector by cosine similarity.
package similarity

import (
	"math"
	"sort"

	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

type Result struct {
	ProPlayerID int64
	Score       float64 // 0-1
}

type Matcher struct {
	logger zerolog.Logger
}

func NewMatcher(logger zerolog.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// Match scores the player's vector against every pro vector, best first;
// ties break by ascending pro player id. Pros without a usable vector are
// skipped, never a failure. A nil player vector yields an empty result.
func (m *Matcher) Match(player *domain.PlayerPlaystyle, pros []domain.PlayerPlaystyle) []Result {
	if player == nil {
		m.logger.Debug().Msg("no player vector, skipping similarity run")
		return nil
	}

	playerValues := player.Vector.Values()
	results := make([]Result, 0, len(pros))
	for _, pro := range pros {
		proID, ok := pro.Owner.ProPlayerID()
		if !ok {
			m.logger.Warn().Stringer("owner", pro.Owner).Msg("roster vector not owned by a pro player, skipping")
			continue
		}

		score, ok := cosine01(playerValues, pro.Vector.Values())
		if !ok {
			m.logger.Debug().Int64("pro_player_id", proID).Msg("degenerate vector, skipping pro")
			continue
		}
		results = append(results, Result{ProPlayerID: proID, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ProPlayerID < results[j].ProPlayerID
	})

	return results
}

// cosine01 is cosine similarity rescaled from [-1,1] to [0,1]. The
// dimensions are non-negative so the cosine is naturally in [0,1]; the
// rescale and clamp guard floating-point edge values. A zero-magnitude
// vector has no defined direction and reports not-ok.
func cosine01(a, b [6]float64) (float64, bool) {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	score := (cos + 1) / 2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, true
}
