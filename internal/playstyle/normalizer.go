// Package playstyle reduces a metrics history into the six-dimension
// normalized playstyle vector.
package playstyle

import (
	"fmt"

	"league-journey/internal/config"
	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

// longGameSeconds is the cutoff above which a game counts as "long" for
// the late-game scaling signal.
const longGameSeconds = 30 * 60

type Normalizer struct {
	cfg    config.PlaystyleConfig
	logger zerolog.Logger
}

func NewNormalizer(cfg *config.Config, logger zerolog.Logger) *Normalizer {
	return &Normalizer{cfg: cfg.Analysis.Playstyle, logger: logger}
}

// Normalize computes the playstyle vector for exactly one owner. A zero
// owner is a caller contract violation. An empty history is valid and
// yields a zero vector flagged low-confidence.
func (n *Normalizer) Normalize(owner domain.PlaystyleOwner, history []domain.PlayerMatchMetrics) (*domain.PlayerPlaystyle, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("normalize playstyle: %w", domain.ErrAmbiguousOwner)
	}

	signals := rawSignals(history)

	vector := domain.PlaystyleVector{
		Aggressiveness:   n.dimension("aggressiveness", signals),
		TeamFocus:        n.dimension("team_focus", signals),
		ObjectiveControl: n.dimension("objective_control", signals),
		VisionControl:    n.dimension("vision_control", signals),
		FarmEfficiency:   n.dimension("farm_efficiency", signals),
		LateGameScaling:  n.dimension("late_game_scaling", signals),
	}

	lowConfidence := len(history) < n.cfg.MinSampleSize
	if lowConfidence {
		n.logger.Debug().
			Stringer("owner", owner).
			Int("matches", len(history)).
			Int("min_sample_size", n.cfg.MinSampleSize).
			Msg("playstyle computed below minimum sample size")
	}

	return &domain.PlayerPlaystyle{
		Owner:         owner,
		Vector:        vector,
		LowConfidence: lowConfidence,
		Signals:       signals,
	}, nil
}

// dimension blends the configured signals into one 0-100 value. Each raw
// signal is normalized against its population baseline before weighting.
func (n *Normalizer) dimension(name string, signals map[string]float64) float64 {
	weights := n.cfg.Weights[name]
	if len(weights) == 0 {
		return 0
	}

	weighted := 0.0
	total := 0.0
	for _, w := range weights {
		baseline, ok := n.cfg.Baselines[w.Signal]
		if !ok {
			n.logger.Warn().Str("dimension", name).Str("signal", w.Signal).Msg("signal has no baseline, skipping")
			continue
		}
		weighted += w.Weight * normalize(signals[w.Signal], baseline)
		total += w.Weight
	}
	if total == 0 {
		return 0
	}

	score := weighted / total * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// normalize maps a raw signal value into [0,1] against its baseline range.
func normalize(v float64, r config.ScaleRange) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	x := (v - r.Min) / span
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// rawSignals aggregates the per-match metrics into the named raw signals
// the dimension blends draw from.
func rawSignals(history []domain.PlayerMatchMetrics) map[string]float64 {
	signals := map[string]float64{}
	if len(history) == 0 {
		return signals
	}

	games := float64(len(history))
	var (
		kills, assists         float64
		minutes                float64
		killsNearTurret        float64
		objectiveDamage        float64
		wards                  float64
		firstTowerGames        float64
		longGames, longWins    float64
		wins                   float64
		damagePerMinSum        float64
		damagePerMinN          float64
		damageShareSum         float64
		damageShareN           float64
		killParticipationSum   float64
		killParticipationN     float64
		csPerMinSum, csPerMinN float64
		goldPerMinSum          float64
		goldPerMinN            float64
		visionPerMinSum        float64
		visionPerMinN          float64
	)

	for _, m := range history {
		kills += float64(m.Kills)
		assists += float64(m.Assists)
		if m.Win {
			wins++
		}
		if m.GameDuration != nil {
			minutes += float64(*m.GameDuration) / 60
			if *m.GameDuration > longGameSeconds {
				longGames++
				if m.Win {
					longWins++
				}
			}
		}
		if m.ObjectiveContribution != nil {
			killsNearTurret += float64(m.ObjectiveContribution.KillsNearEnemyTurret)
			objectiveDamage += float64(m.ObjectiveContribution.DamageToObjectives)
		}
		if m.WardsPlaced != nil {
			wards += float64(*m.WardsPlaced)
		}
		if m.WardsKilled != nil {
			wards += float64(*m.WardsKilled)
		}
		if m.FirstTower || m.FirstTowerAssist {
			firstTowerGames++
		}
		addMean(m.DamagePerMin, &damagePerMinSum, &damagePerMinN)
		addMean(m.DamageShare, &damageShareSum, &damageShareN)
		addMean(m.KillParticipation, &killParticipationSum, &killParticipationN)
		addMean(m.CSPerMin, &csPerMinSum, &csPerMinN)
		addMean(m.GoldPerMin, &goldPerMinSum, &goldPerMinN)
		addMean(m.VisionScorePerMin, &visionPerMinSum, &visionPerMinN)
	}

	signals["kills_near_turret_rate"] = killsNearTurret / games
	signals["first_tower_rate"] = firstTowerGames / games
	signals["damage_per_min"] = safeDiv(damagePerMinSum, damagePerMinN)
	signals["damage_share"] = safeDiv(damageShareSum, damageShareN)
	signals["kill_participation"] = safeDiv(killParticipationSum, killParticipationN)
	signals["cs_per_min"] = safeDiv(csPerMinSum, csPerMinN)
	signals["gold_per_min"] = safeDiv(goldPerMinSum, goldPerMinN)
	signals["vision_per_min"] = safeDiv(visionPerMinSum, visionPerMinN)

	if minutes > 0 {
		signals["kills_per_min"] = kills / minutes
		signals["wards_per_min"] = wards / minutes
		signals["objective_damage_per_min"] = objectiveDamage / minutes
	}

	if kills+assists > 0 {
		signals["assist_rate"] = assists / (kills + assists)
	}

	if longGames > 0 {
		signals["long_game_win_rate"] = longWins / longGames
	} else {
		// No long games on record; fall back to the overall win rate.
		signals["long_game_win_rate"] = wins / games
	}

	return signals
}

func addMean(v *float64, sum, n *float64) {
	if v != nil {
		*sum += *v
		*n++
	}
}

func safeDiv(sum, n float64) float64 {
	if n == 0 {
		return 0
	}
	return sum / n
}
