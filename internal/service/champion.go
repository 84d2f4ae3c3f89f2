package service

import (
	"context"
	"fmt"

	"league-journey/internal/api"
	"league-journey/internal/constants"
	"league-journey/internal/repository"

	"github.com/rs/zerolog"
)

// ChampionService seeds the local champion catalog from Data Dragon.
type ChampionService struct {
	ddragon   *api.DDragonClient
	champions *repository.ChampionRepository
	logger    zerolog.Logger
}

func NewChampionService(ddragon *api.DDragonClient, champions *repository.ChampionRepository, logger zerolog.Logger) *ChampionService {
	return &ChampionService{ddragon: ddragon, champions: champions, logger: logger}
}

// Seed downloads the latest catalog and upserts it. Safe to re-run on
// every patch.
func (s *ChampionService) Seed(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	version, err := s.ddragon.LatestVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve ddragon version: %w", err)
	}

	champions, err := s.ddragon.ChampionCatalog(ctx, version)
	if err != nil {
		return 0, fmt.Errorf("failed to download champion catalog: %w", err)
	}

	if err := s.champions.UpsertBatch(ctx, champions); err != nil {
		return 0, err
	}

	s.logger.Info().Str("version", version).Int("count", len(champions)).Msg("champion catalog seeded")
	return len(champions), nil
}
