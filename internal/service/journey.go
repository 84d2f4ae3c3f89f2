package service

import (
	"context"
	"errors"
	"time"

	"league-journey/internal/constants"
	"league-journey/internal/domain"
	"league-journey/internal/repository"

	"github.com/rs/zerolog"
)

// JourneyService assembles the read model served to clients: chapters per
// season plus playstyle, similarity and recommendations. It only reads
// committed pipeline output and never triggers computation.
type JourneyService struct {
	players        *repository.PlayerRepository
	chapterRepo    *repository.ChapterRepository
	playstyleRepo  *repository.PlaystyleRepository
	similarityRepo *repository.SimilarityRepository
	recommendRepo  *repository.RecommendationRepository
	pros           *repository.ProPlayerRepository
	logger         zerolog.Logger
}

func NewJourneyService(
	players *repository.PlayerRepository,
	chapterRepo *repository.ChapterRepository,
	playstyleRepo *repository.PlaystyleRepository,
	similarityRepo *repository.SimilarityRepository,
	recommendRepo *repository.RecommendationRepository,
	pros *repository.ProPlayerRepository,
	logger zerolog.Logger,
) *JourneyService {
	return &JourneyService{
		players:        players,
		chapterRepo:    chapterRepo,
		playstyleRepo:  playstyleRepo,
		similarityRepo: similarityRepo,
		recommendRepo:  recommendRepo,
		pros:           pros,
		logger:         logger,
	}
}

// Journey is the full read model for one player.
type Journey struct {
	Player          JourneyPlayer                   `json:"player"`
	Seasons         []SeasonChapters                `json:"seasons"`
	Playstyle       *JourneyPlaystyle               `json:"playstyle,omitempty"`
	SimilarPros     []SimilarPro                    `json:"similar_pros"`
	Recommendations []domain.ChampionRecommendation `json:"recommendations"`
	Videos          []domain.ProPlayerChampionVideo `json:"videos"`
}

type JourneyPlayer struct {
	ID     int64  `json:"id"`
	RiotID string `json:"riot_id"`
	Region string `json:"region"`
	Role   string `json:"role,omitempty"`
}

type SeasonChapters struct {
	Season   int                    `json:"season"`
	Chapters []domain.PlayerChapter `json:"chapters"`
}

type JourneyPlaystyle struct {
	Vector        domain.PlaystyleVector `json:"vector"`
	LowConfidence bool                   `json:"low_confidence"`
	Summary       string                 `json:"summary,omitempty"`
}

type SimilarPro struct {
	ProPlayerID int64   `json:"pro_player_id"`
	Name        string  `json:"name"`
	Team        string  `json:"team,omitempty"`
	Role        string  `json:"role"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation,omitempty"`
}

// GetJourney loads the committed read model for a player.
func (s *JourneyService) GetJourney(ctx context.Context, player *domain.Player) (*Journey, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	start := time.Now()

	journey := &Journey{
		Player: JourneyPlayer{
			ID:     player.ID,
			RiotID: player.RiotID(),
			Region: player.Region,
		},
	}
	if player.Role != nil {
		journey.Player.Role = *player.Role
	}

	seasons, err := s.chapterRepo.Seasons(ctx, player.ID)
	if err != nil {
		return nil, err
	}
	for _, season := range seasons {
		set, err := s.chapterRepo.ListSeason(ctx, player.ID, season)
		if err != nil {
			return nil, err
		}
		journey.Seasons = append(journey.Seasons, SeasonChapters{Season: season, Chapters: set})
	}

	ps, err := s.playstyleRepo.GetByOwner(ctx, domain.PlayerOwner(player.ID))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if ps != nil {
		journey.Playstyle = &JourneyPlaystyle{
			Vector:        ps.Vector,
			LowConfidence: ps.LowConfidence,
			Summary:       ps.Summary,
		}
	}

	matches, err := s.similarityRepo.ListByPlayer(ctx, player.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		sp := SimilarPro{
			ProPlayerID: m.ProPlayerID,
			Score:       m.Score,
			Explanation: m.FeatureExplanation,
		}
		pro, err := s.pros.GetByID(ctx, m.ProPlayerID)
		if err == nil {
			sp.Name = pro.Name
			sp.Role = pro.Role
			if pro.Team != nil {
				sp.Team = *pro.Team
			}
		}
		journey.SimilarPros = append(journey.SimilarPros, sp)
	}

	journey.Recommendations, err = s.recommendRepo.ListByPlayer(ctx, player.ID)
	if err != nil {
		return nil, err
	}

	journey.Videos, err = s.pros.ListVideos(ctx, player.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("player_id", player.ID).
		Int("seasons", len(journey.Seasons)).
		Dur("elapsed", time.Since(start)).
		Msg("journey assembled")
	return journey, nil
}
