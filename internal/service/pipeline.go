package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"league-journey/internal/api"
	"league-journey/internal/chapters"
	"league-journey/internal/config"
	"league-journey/internal/constants"
	"league-journey/internal/domain"
	"league-journey/internal/playstyle"
	"league-journey/internal/recommend"
	"league-journey/internal/repository"
	"league-journey/internal/similarity"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PipelineService runs the derivation chain for a player: ingest, metrics,
// chapters, playstyle, similarity, recommendations. Stages run serially so
// each reads only committed output of the previous one; a stage failure
// aborts the player's remaining stages and leaves earlier results intact.
type PipelineService struct {
	ingest *IngestService

	players *repository.PlayerRepository
	matches *repository.MatchRepository

	aggregator  *chapters.Aggregator
	chapterRepo *repository.ChapterRepository

	normalizer    *playstyle.Normalizer
	playstyleRepo *repository.PlaystyleRepository

	matcher        *similarity.Matcher
	similarityRepo *repository.SimilarityRepository

	engine             *recommend.Engine
	recommendationRepo *repository.RecommendationRepository

	pros      *repository.ProPlayerRepository
	champions *repository.ChampionRepository
	narrative *api.NarrativeClient

	topN   int
	logger zerolog.Logger
}

func NewPipelineService(
	ingest *IngestService,
	players *repository.PlayerRepository,
	matches *repository.MatchRepository,
	aggregator *chapters.Aggregator,
	chapterRepo *repository.ChapterRepository,
	normalizer *playstyle.Normalizer,
	playstyleRepo *repository.PlaystyleRepository,
	matcher *similarity.Matcher,
	similarityRepo *repository.SimilarityRepository,
	engine *recommend.Engine,
	recommendationRepo *repository.RecommendationRepository,
	pros *repository.ProPlayerRepository,
	champions *repository.ChampionRepository,
	narrative *api.NarrativeClient,
	cfg *config.Config,
	logger zerolog.Logger,
) *PipelineService {
	return &PipelineService{
		ingest:             ingest,
		players:            players,
		matches:            matches,
		aggregator:         aggregator,
		chapterRepo:        chapterRepo,
		normalizer:         normalizer,
		playstyleRepo:      playstyleRepo,
		matcher:            matcher,
		similarityRepo:     similarityRepo,
		engine:             engine,
		recommendationRepo: recommendationRepo,
		pros:               pros,
		champions:          champions,
		narrative:          narrative,
		topN:               cfg.Analysis.Similarity.TopN,
		logger:             logger,
	}
}

// RunReport is the outcome of one pipeline run.
type RunReport struct {
	RunID      string        `json:"run_id"`
	PlayerID   int64         `json:"player_id"`
	Ingest     *IngestReport `json:"ingest,omitempty"`
	Chapters   int           `json:"chapters"`
	Similarity int           `json:"similarity_matches"`
	Recommends int           `json:"recommendations"`
	FailedAt   string        `json:"failed_at,omitempty"`
	Err        string        `json:"error,omitempty"`
}

// BatchReport aggregates a RunAll pass.
type BatchReport struct {
	RunID     string      `json:"run_id"`
	Players   int         `json:"players"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Reports   []RunReport `json:"reports"`
}

// RunPlayer executes every stage for one player.
func (s *PipelineService) RunPlayer(ctx context.Context, playerID int64) (*RunReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.PipelineTimeout)
	defer cancel()

	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	report := &RunReport{RunID: runID, PlayerID: playerID}

	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("run_id", runID).Int64("player_id", playerID).Logger()
	logger.Info().Str("riot_id", player.RiotID()).Msg("pipeline run starting")

	if err := s.runStages(ctx, player, report, logger); err != nil {
		report.Err = err.Error()
		logger.Error().Err(err).Str("failed_at", report.FailedAt).Msg("pipeline run aborted")
		return report, err
	}

	logger.Info().
		Int("chapters", report.Chapters).
		Int("similarity", report.Similarity).
		Int("recommendations", report.Recommends).
		Msg("pipeline run finished")
	return report, nil
}

func (s *PipelineService) runStages(ctx context.Context, player *domain.Player, report *RunReport, logger zerolog.Logger) error {
	report.FailedAt = "ingest"
	ingestReport, err := s.ingest.FetchAndStore(ctx, player, time.Now().Year())
	if err != nil {
		return err
	}
	report.Ingest = ingestReport

	report.FailedAt = "metrics"
	if err := s.ingest.ProcessUnprocessed(ctx, player, ingestReport); err != nil {
		return err
	}

	history, err := s.matches.MetricsHistory(ctx, player.ID)
	if err != nil {
		return err
	}

	report.FailedAt = "chapters"
	if err := s.rebuildChapters(ctx, player.ID, history, report); err != nil {
		return err
	}

	report.FailedAt = "playstyle"
	ps, err := s.normalizer.Normalize(domain.PlayerOwner(player.ID), history)
	if err != nil {
		return err
	}
	if err := s.playstyleRepo.Upsert(ctx, ps); err != nil {
		return err
	}

	report.FailedAt = "similarity"
	results, err := s.rebuildSimilarity(ctx, player.ID, ps)
	if err != nil {
		return err
	}
	report.Similarity = len(results)

	report.FailedAt = "recommendations"
	recs, err := s.rebuildRecommendations(ctx, player.ID, history, results)
	if err != nil {
		return err
	}
	report.Recommends = len(recs)

	// Narrative text is an enrichment, not a stage: failures log and leave
	// fields empty.
	s.enrichNarratives(ctx, player, logger)

	report.FailedAt = ""
	return nil
}

// rebuildChapters repartitions the full history per season and atomically
// replaces each season's chapter set.
func (s *PipelineService) rebuildChapters(ctx context.Context, playerID int64, history []domain.PlayerMatchMetrics, report *RunReport) error {
	bySeason := make(map[int][]domain.PlayerMatchMetrics)
	var seasons []int
	for _, m := range history {
		season := time.UnixMilli(m.MatchRecordedAt).UTC().Year()
		if _, ok := bySeason[season]; !ok {
			seasons = append(seasons, season)
		}
		bySeason[season] = append(bySeason[season], m)
	}

	for _, season := range seasons {
		set := s.aggregator.Aggregate(playerID, season, bySeason[season])
		if err := s.chapterRepo.ReplaceSeason(ctx, playerID, season, set); err != nil {
			return fmt.Errorf("failed to replace season %d: %w", season, err)
		}
		report.Chapters += len(set)
	}
	return nil
}

// rebuildSimilarity stores one ranked match per pro with a usable vector;
// the recommendation stage narrows to its top-N slice, not this one.
func (s *PipelineService) rebuildSimilarity(ctx context.Context, playerID int64, ps *domain.PlayerPlaystyle) ([]similarity.Result, error) {
	proVectors, err := s.playstyleRepo.ListProVectors(ctx)
	if err != nil {
		return nil, err
	}

	results := s.matcher.Match(ps, proVectors)

	matches := make([]domain.SimilarityMatch, len(results))
	for i, res := range results {
		matches[i] = domain.SimilarityMatch{
			PlayerID:    playerID,
			ProPlayerID: res.ProPlayerID,
			Score:       res.Score,
		}
	}
	if err := s.similarityRepo.ReplaceForPlayer(ctx, playerID, matches); err != nil {
		return nil, err
	}
	return results, nil
}

// rebuildRecommendations draws candidates from the player's top-N most
// similar pros only; the full similarity ranking stays stored as is.
func (s *PipelineService) rebuildRecommendations(ctx context.Context, playerID int64, history []domain.PlayerMatchMetrics, results []similarity.Result) ([]domain.ChampionRecommendation, error) {
	if len(results) > s.topN {
		results = results[:s.topN]
	}

	ranked := make([]recommend.RankedPro, 0, len(results))
	for _, res := range results {
		pool, err := s.pros.ChampionPool(ctx, res.ProPlayerID)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, recommend.RankedPro{
			ProPlayerID: res.ProPlayerID,
			Score:       res.Score,
			Pool:        pool,
		})
	}

	candidates := s.engine.Recommend(history, ranked)

	recs := make([]domain.ChampionRecommendation, len(candidates))
	var videos []domain.ProPlayerChampionVideo
	for i, c := range candidates {
		recs[i] = domain.ChampionRecommendation{
			PlayerID:        playerID,
			ChampionID:      c.ChampionID,
			ChampionName:    c.ChampionName,
			ChampionIconURL: s.champions.IconURL(ctx, c.ChampionID),
			Rank:            c.Rank,
		}
		videos = append(videos, s.referenceVideos(ctx, playerID, c)...)
	}

	if err := s.recommendationRepo.ReplaceForPlayer(ctx, playerID, recs); err != nil {
		return nil, err
	}
	if err := s.pros.ReplaceVideos(ctx, playerID, videos); err != nil {
		return nil, err
	}
	return recs, nil
}

// referenceVideos attaches each recommendation's source pros' actual games
// on that champion as study footage. Pros without an ingested game on the
// champion contribute nothing.
func (s *PipelineService) referenceVideos(ctx context.Context, playerID int64, c recommend.Candidate) []domain.ProPlayerChampionVideo {
	var videos []domain.ProPlayerChampionVideo
	for _, proID := range c.SourcePros {
		matchID, err := s.pros.ReferenceMatch(ctx, proID, c.ChampionID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn().Err(err).Int64("pro_player_id", proID).Msg("reference match lookup failed")
			}
			continue
		}
		mid := matchID
		videos = append(videos, domain.ProPlayerChampionVideo{
			PlayerID:     playerID,
			ProPlayerID:  proID,
			ChampionID:   c.ChampionID,
			ChampionName: c.ChampionName,
			VideoURL:     fmt.Sprintf("https://www.leagueofgraphs.com/match/%s", matchID),
			MatchID:      &mid,
		})
	}
	return videos
}

// RunAll runs the pipeline for every tracked player with bounded
// parallelism. One player's failure never stops the others.
func (s *PipelineService) RunAll(ctx context.Context) (*BatchReport, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	players, err := s.players.List(ctx)
	if err != nil {
		return nil, err
	}

	batch := &BatchReport{RunID: runID, Players: len(players)}
	reports := make([]RunReport, len(players))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.PipelineParallelism)
	for i, p := range players {
		g.Go(func() error {
			report, err := s.RunPlayer(gctx, p.ID)
			if report == nil {
				report = &RunReport{PlayerID: p.ID, Err: err.Error()}
			}
			reports[i] = *report
			// Failures are recorded in the report, not propagated, so the
			// group keeps going.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range reports {
		if r.Err == "" {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	batch.Reports = reports

	s.logger.Info().
		Str("run_id", runID).
		Int("players", batch.Players).
		Int("succeeded", batch.Succeeded).
		Int("failed", batch.Failed).
		Msg("batch pipeline finished")
	return batch, nil
}

// RunProPlayers ingests each pro's match history (pros are stored as
// regular player rows linked by puuid) and refreshes their playstyle
// vector. Pros without a Riot identity are skipped.
func (s *PipelineService) RunProPlayers(ctx context.Context) (int, error) {
	pros, err := s.pros.List(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, pro := range pros {
		linkedID, err := s.linkedProPlayer(ctx, pro)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug().Int64("pro_player_id", pro.ID).Str("name", pro.Name).Msg("pro has no riot identity, skipping")
				continue
			}
			return refreshed, err
		}

		player, err := s.players.GetByID(ctx, linkedID)
		if err != nil {
			return refreshed, err
		}
		report, err := s.ingest.FetchAndStore(ctx, player, time.Now().Year())
		if err != nil {
			// An upstream failure for one pro should not starve the rest;
			// their stored history still feeds normalization.
			s.logger.Warn().Err(err).Str("name", pro.Name).Msg("pro match fetch failed, using stored history")
			report = &IngestReport{}
		}
		if err := s.ingest.ProcessUnprocessed(ctx, player, report); err != nil {
			return refreshed, err
		}

		history, err := s.matches.MetricsHistory(ctx, linkedID)
		if err != nil {
			return refreshed, err
		}

		ps, err := s.normalizer.Normalize(domain.ProPlayerOwner(pro.ID), history)
		if err != nil {
			return refreshed, err
		}
		if err := s.playstyleRepo.Upsert(ctx, ps); err != nil {
			return refreshed, err
		}
		refreshed++
	}

	s.logger.Info().Int("refreshed", refreshed).Int("roster", len(pros)).Msg("pro playstyles refreshed")
	return refreshed, nil
}

// linkedProPlayer resolves the player row carrying a pro's match history,
// creating it from the pro's Riot identity on first refresh.
func (s *PipelineService) linkedProPlayer(ctx context.Context, pro domain.ProPlayer) (int64, error) {
	id, err := s.pros.LinkedPlayerID(ctx, pro.ID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	if pro.Puuid == nil || pro.GameName == nil || pro.TagLine == nil {
		return 0, domain.ErrNotFound
	}

	player := &domain.Player{
		GameName: *pro.GameName,
		TagLine:  *pro.TagLine,
		Puuid:    *pro.Puuid,
		Region:   pro.Region,
	}
	if pro.Role != "" {
		role := pro.Role
		player.Role = &role
	}
	return s.players.Create(ctx, player)
}

// enrichNarratives fills chapter summaries and similarity explanations via
// the narrative sidecar. Best effort only.
func (s *PipelineService) enrichNarratives(ctx context.Context, player *domain.Player, logger zerolog.Logger) {
	if !s.narrative.Enabled() {
		return
	}

	nctx, cancel := context.WithTimeout(ctx, constants.NarrativeTimeout)
	defer cancel()

	seasons, err := s.chapterRepo.Seasons(nctx, player.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("narrative enrichment skipped")
		return
	}
	for _, season := range seasons {
		set, err := s.chapterRepo.ListSeason(nctx, player.ID, season)
		if err != nil {
			logger.Warn().Err(err).Int("season", season).Msg("narrative enrichment skipped for season")
			continue
		}
		for _, ch := range set {
			if ch.Summary != "" {
				continue
			}
			resp, err := s.narrative.ChapterSummary(nctx, api.ChapterSummaryRequest{
				ChapterIndex:     ch.ChapterIndex,
				Season:           ch.Season,
				GamesCount:       ch.GamesCount,
				WinRate:          ch.WinRate,
				KDAScore:         ch.KDAScore,
				CSScore:          ch.CSScore,
				DamageScore:      ch.DamageScore,
				VisionScore:      ch.VisionScore,
				TopChampion:      ch.TopChampionName,
				TopChampionGames: ch.TopChampionGames,
			})
			if err != nil {
				logger.Warn().Err(err).Int("chapter_index", ch.ChapterIndex).Msg("chapter summary generation failed")
				continue
			}
			if err := s.chapterRepo.UpdateSummary(nctx, ch.ID, resp.Title, resp.Summary); err != nil {
				logger.Warn().Err(err).Int64("chapter_id", ch.ID).Msg("failed to store chapter summary")
			}
		}
	}

	s.enrichSimilarity(nctx, player, logger)
	s.enrichRecommendations(nctx, player, logger)
}

func (s *PipelineService) enrichSimilarity(ctx context.Context, player *domain.Player, logger zerolog.Logger) {
	stored, err := s.similarityRepo.ListByPlayer(ctx, player.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("similarity enrichment skipped")
		return
	}

	playerPS, err := s.playstyleRepo.GetByOwner(ctx, domain.PlayerOwner(player.ID))
	if err != nil {
		logger.Warn().Err(err).Msg("similarity enrichment skipped")
		return
	}

	for _, m := range stored {
		if m.FeatureExplanation != "" {
			continue
		}
		pro, err := s.pros.GetByID(ctx, m.ProPlayerID)
		if err != nil {
			continue
		}
		proPS, err := s.playstyleRepo.GetByOwner(ctx, domain.ProPlayerOwner(m.ProPlayerID))
		if err != nil {
			continue
		}
		resp, err := s.narrative.SimilarityExplanation(ctx, api.SimilarityExplanationRequest{
			ProName:       pro.Name,
			ProRole:       pro.Role,
			Score:         m.Score,
			PlayerVector:  playerPS.Vector.Values(),
			ProVector:     proPS.Vector.Values(),
			PlayerSignals: playerPS.Signals,
		})
		if err != nil {
			logger.Warn().Err(err).Int64("pro_player_id", m.ProPlayerID).Msg("similarity explanation generation failed")
			continue
		}
		if err := s.similarityRepo.UpdateExplanation(ctx, m.ID, resp.Explanation); err != nil {
			logger.Warn().Err(err).Str("match_id", m.ID).Msg("failed to store similarity explanation")
		}
	}
}

func (s *PipelineService) enrichRecommendations(ctx context.Context, player *domain.Player, logger zerolog.Logger) {
	recs, err := s.recommendationRepo.ListByPlayer(ctx, player.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("recommendation enrichment skipped")
		return
	}

	// The stored study videos carry each recommendation's source pros.
	proNames := make(map[int64][]string)
	if videos, err := s.pros.ListVideos(ctx, player.ID); err == nil {
		for _, v := range videos {
			pro, err := s.pros.GetByID(ctx, v.ProPlayerID)
			if err != nil {
				continue
			}
			proNames[v.ChampionID] = append(proNames[v.ChampionID], pro.Name)
		}
	}

	for _, rec := range recs {
		if rec.Reason != "" {
			continue
		}
		resp, err := s.narrative.RecommendationReason(ctx, api.RecommendationReasonRequest{
			ChampionName: rec.ChampionName,
			Rank:         rec.Rank,
			SourcePros:   proNames[rec.ChampionID],
		})
		if err != nil {
			logger.Warn().Err(err).Str("champion", rec.ChampionName).Msg("recommendation reason generation failed")
			continue
		}
		if err := s.recommendationRepo.UpdateReason(ctx, rec.ID, resp.Reason); err != nil {
			logger.Warn().Err(err).Int64("recommendation_id", rec.ID).Msg("failed to store recommendation reason")
		}
	}
}
