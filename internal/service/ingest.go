package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"league-journey/internal/api"
	"league-journey/internal/config"
	"league-journey/internal/constants"
	"league-journey/internal/domain"
	"league-journey/internal/metrics"
	"league-journey/internal/repository"

	"github.com/rs/zerolog"
)

// IngestService pulls raw matches from the gateway, stores them, and turns
// each stored payload into a per-player metrics record.
type IngestService struct {
	rift     *api.RiftClient
	players  *repository.PlayerRepository
	matches  *repository.MatchRepository
	computer *metrics.Computer
	maxFetch int
	logger   zerolog.Logger
}

func NewIngestService(
	rift *api.RiftClient,
	players *repository.PlayerRepository,
	matches *repository.MatchRepository,
	computer *metrics.Computer,
	cfg *config.Config,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		rift:     rift,
		players:  players,
		matches:  matches,
		computer: computer,
		maxFetch: cfg.FetchMaxMatches,
		logger:   logger,
	}
}

// IngestReport summarizes one player's ingest pass.
type IngestReport struct {
	Fetched   int `json:"fetched"`
	Stored    int `json:"stored"`
	Duplicate int `json:"duplicate"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// ResolvePlayer finds the tracked player for a riot id, creating the row
// from the gateway's account lookup on first sight.
func (s *IngestService) ResolvePlayer(ctx context.Context, gameName, tagLine, region string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.players.GetByRiotID(ctx, gameName, tagLine, region)
	if err == nil {
		s.touchRiotUser(ctx, player)
		return player, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	s.logger.Info().Str("game_name", gameName).Str("tag_line", tagLine).Msg("player not tracked yet, fetching account")

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	acc, err := s.rift.GetAccount(apiCtx, gameName, tagLine, region)
	if err != nil {
		s.logger.Error().Err(err).Str("game_name", gameName).Msg("failed to fetch account")
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	player = &domain.Player{
		GameName: acc.Data.GameName,
		TagLine:  acc.Data.TagLine,
		Puuid:    acc.Data.Puuid,
		Region:   region,
	}
	if acc.Data.SummonerID != "" {
		player.SummonerID = &acc.Data.SummonerID
	}
	if acc.Data.ProfileIconID != 0 {
		player.ProfileIconID = &acc.Data.ProfileIconID
	}

	id, err := s.players.Create(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	player.ID = id

	s.touchRiotUser(ctx, player)
	s.logger.Info().Int64("player_id", id).Str("puuid", player.Puuid).Msg("player registered")
	return player, nil
}

func (s *IngestService) touchRiotUser(ctx context.Context, p *domain.Player) {
	role := ""
	if p.Role != nil {
		role = *p.Role
	}
	u := &domain.RiotUser{
		RiotID:             p.RiotID(),
		Region:             p.Region,
		MainRole:           role,
		FavoriteChampionID: p.FavoriteChampionID,
	}
	if err := s.players.TouchRiotUser(ctx, u); err != nil {
		s.logger.Warn().Err(err).Str("riot_id", u.RiotID).Msg("failed to touch riot user")
	}
}

// FetchAndStore pulls the player's match batch for a year and stores every
// payload, deduping on match id. Payloads stay opaque here.
func (s *IngestService) FetchAndStore(ctx context.Context, player *domain.Player, year int) (*IngestReport, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	role := ""
	if player.Role != nil {
		role = *player.Role
	}
	resp, err := s.rift.FetchMatches(apiCtx, api.FetchMatchesRequest{
		RiotID: player.RiotID(),
		Region: player.Region,
		Year:   year,
		Role:   role,
		Max:    s.maxFetch,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("player_id", player.ID).Msg("failed to fetch matches")
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}

	report := &IngestReport{Fetched: len(resp.Data)}
	for _, raw := range resp.Data {
		matchID, ts, err := matchIdentity(raw)
		if err != nil {
			s.logger.Warn().Err(err).Int64("player_id", player.ID).Msg("skipping malformed match payload")
			report.Skipped++
			continue
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
		_, isNew, err := s.matches.StoreRaw(dbCtx, player.ID, matchID, raw, ts)
		dbCancel()
		if err != nil {
			return report, fmt.Errorf("failed to store match %s: %w", matchID, err)
		}
		if isNew {
			report.Stored++
		} else {
			report.Duplicate++
		}
	}

	s.logger.Info().
		Int64("player_id", player.ID).
		Int("fetched", report.Fetched).
		Int("stored", report.Stored).
		Int("duplicate", report.Duplicate).
		Msg("match batch stored")
	return report, nil
}

// ProcessUnprocessed computes metrics for every stored-but-unprocessed
// match. A payload missing the player's participant entry is skipped and
// left unprocessed rather than failing the pass.
func (s *IngestService) ProcessUnprocessed(ctx context.Context, player *domain.Player, report *IngestReport) error {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	pending, err := s.matches.GetUnprocessed(dbCtx, player.ID)
	cancel()
	if err != nil {
		return err
	}

	for _, match := range pending {
		var payload domain.RawMatchPayload
		if err := json.Unmarshal(match.RawData, &payload); err != nil {
			s.logger.Warn().Err(err).Str("match_id", match.MatchID).Msg("stored payload does not parse, leaving unprocessed")
			report.Skipped++
			continue
		}

		m, err := s.computer.Compute(&payload, player.Puuid)
		if err != nil {
			if errors.Is(err, domain.ErrMissingParticipant) {
				s.logger.Warn().Str("match_id", match.MatchID).Str("puuid", player.Puuid).Msg("player absent from payload, leaving unprocessed")
				report.Skipped++
				continue
			}
			return fmt.Errorf("failed to compute metrics for match %s: %w", match.MatchID, err)
		}
		m.MatchID = match.ID
		m.PlayerID = player.ID
		m.MatchRecordedAt = match.MatchTimestamp

		dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
		err = s.matches.SaveMetrics(dbCtx, m)
		dbCancel()
		if err != nil {
			return fmt.Errorf("failed to save metrics for match %s: %w", match.MatchID, err)
		}
		report.Processed++
	}

	s.logger.Info().
		Int64("player_id", player.ID).
		Int("processed", report.Processed).
		Int("skipped", report.Skipped).
		Msg("pending matches processed")
	return nil
}

// matchIdentity pulls out the two fields every stored payload must carry.
func matchIdentity(raw json.RawMessage) (string, int64, error) {
	var probe struct {
		Metadata struct {
			MatchID string `json:"matchId"`
		} `json:"metadata"`
		Info struct {
			GameCreation int64 `json:"gameCreation"`
		} `json:"info"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", 0, err
	}
	if strings.TrimSpace(probe.Metadata.MatchID) == "" {
		return "", 0, fmt.Errorf("payload has no match id")
	}
	return probe.Metadata.MatchID, probe.Info.GameCreation, nil
}
