// Package metrics derives a structured per-match metrics record for one
// player from a raw match payload.
package metrics

import (
	"fmt"
	"math"

	"league-journey/internal/constants"
	"league-journey/internal/domain"

	"github.com/rs/zerolog"
)

type Computer struct {
	logger zerolog.Logger
}

func NewComputer(logger zerolog.Logger) *Computer {
	return &Computer{logger: logger}
}

// Compute derives the metrics record for the participant identified by
// puuid. The payload is never mutated; recomputing on the same inputs
// yields the same record. A payload without the target participant
// returns domain.ErrMissingParticipant.
func (c *Computer) Compute(payload *domain.RawMatchPayload, puuid string) (*domain.PlayerMatchMetrics, error) {
	p, ok := payload.ParticipantFor(puuid)
	if !ok {
		return nil, fmt.Errorf("match %s: %w", payload.Metadata.MatchID, domain.ErrMissingParticipant)
	}

	duration := payload.Info.GameDuration
	minutes := float64(duration) / 60.0

	teamDamage := 0
	teamKills := 0
	for _, tp := range payload.Info.Participants {
		if tp.TeamID != p.TeamID {
			continue
		}
		teamDamage += tp.TotalDamageDealtToChampions
		teamKills += tp.Kills
	}

	m := &domain.PlayerMatchMetrics{
		ChampionID:   p.ChampionID,
		ChampionName: p.ChampionName,
		Role:         optString(p.TeamPosition),
		Lane:         optString(p.Lane),

		Kills:   p.Kills,
		Deaths:  p.Deaths,
		Assists: p.Assists,

		Win:           p.Win,
		TeamID:        intPtr(p.TeamID),
		ParticipantID: intPtr(p.ParticipantID),
		GameDuration:  intPtr(duration),

		VisionScore:          intPtr(p.VisionScore),
		GoldEarned:           intPtr(p.GoldEarned),
		TotalDamageDealt:     intPtr(p.TotalDamageDealtToChampions),
		TotalDamageTaken:     intPtr(p.TotalDamageTaken),
		TotalHeal:            intPtr(p.TotalHeal),
		TotalMinionsKilled:   intPtr(p.TotalMinionsKilled),
		NeutralMinionsKilled: intPtr(p.NeutralMinionsKilled),
		WardsPlaced:          intPtr(p.WardsPlaced),
		WardsKilled:          intPtr(p.WardsKilled),

		FirstBlood:       p.FirstBloodKill,
		FirstBloodAssist: p.FirstBloodAssist,
		FirstTower:       p.FirstTowerKill,
		FirstTowerAssist: p.FirstTowerAssist,

		MatchRecordedAt: payload.Info.GameCreation,
	}

	cs := p.TotalMinionsKilled + p.NeutralMinionsKilled
	m.CSPerMin = perMinute(float64(cs), minutes)
	m.GoldPerMin = perMinute(float64(p.GoldEarned), minutes)
	m.DamagePerMin = perMinute(float64(p.TotalDamageDealtToChampions), minutes)
	m.VisionScorePerMin = perMinute(float64(p.VisionScore), minutes)

	m.DamageShare = share(float64(p.TotalDamageDealtToChampions), float64(teamDamage))
	m.KillParticipation = share(float64(p.Kills+p.Assists), float64(teamKills))

	m.KDARatio = kdaRatio(p.Kills, p.Deaths, p.Assists)

	m.Items = truncate(c.logger, payload.Metadata.MatchID, "items", p.Items, constants.MaxItemSlots)
	m.SummonerSpells = truncate(c.logger, payload.Metadata.MatchID, "summoner_spells", p.SummonerSpells, constants.MaxSummonerSpells)
	m.SkillOrder = truncate(c.logger, payload.Metadata.MatchID, "skill_order", p.SkillOrder, constants.MaxSkillOrder)

	runes := p.Runes
	m.RuneSetup = &runes

	m.DamageBreakdown = &domain.DamageBreakdown{
		Physical:     p.PhysicalDamageDealt,
		Magic:        p.MagicDamageDealt,
		True:         p.TrueDamageDealt,
		ToChampions:  p.TotalDamageDealtToChampions,
		ToObjectives: p.Challenges.DamageDealtToObjectives,
		ToTurrets:    p.Challenges.DamageDealtToTurrets,
	}
	m.ObjectiveContribution = &domain.ObjectiveContribution{
		DamageToObjectives:   p.Challenges.DamageDealtToObjectives,
		DamageToTurrets:      p.Challenges.DamageDealtToTurrets,
		TurretPlates:         p.Challenges.TurretPlatesTaken,
		KillsNearEnemyTurret: p.Challenges.KillsNearEnemyTurret,
		FirstTower:           p.FirstTowerKill || p.FirstTowerAssist,
	}

	return m, nil
}

// truncate enforces the fixed capacity of an array field. Excess entries
// are a data-quality condition, logged and dropped, never a failure.
func truncate[T any](logger zerolog.Logger, matchID, field string, values []T, capacity int) []T {
	if len(values) <= capacity {
		return values
	}
	logger.Warn().
		Str("match_id", matchID).
		Str("field", field).
		Int("got", len(values)).
		Int("capacity", capacity).
		Msg("truncating oversized payload field")
	return values[:capacity]
}

// perMinute divides a cumulative total by the game length in minutes.
// Non-finite or negative results resolve to null rather than propagating.
func perMinute(total, minutes float64) *float64 {
	if minutes <= 0 {
		return nil
	}
	v := total / minutes
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

// share divides a player contribution by the team total, clamped to [0,1].
// A zero team total is a data anomaly and resolves to null.
func share(part, teamTotal float64) *float64 {
	if teamTotal <= 0 {
		return nil
	}
	v := part / teamTotal
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}

// kdaRatio is (kills+assists)/deaths, or kills+assists when deaths is zero.
func kdaRatio(kills, deaths, assists int) *float64 {
	var v float64
	if deaths == 0 {
		v = float64(kills + assists)
	} else {
		v = float64(kills+assists) / float64(deaths)
	}
	return &v
}

func intPtr(v int) *int { return &v }

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
