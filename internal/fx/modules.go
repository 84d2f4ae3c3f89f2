package fx

import (
	"league-journey/internal/api"
	"league-journey/internal/chapters"
	"league-journey/internal/config"
	"league-journey/internal/database"
	"league-journey/internal/logger"
	"league-journey/internal/metrics"
	"league-journey/internal/playstyle"
	"league-journey/internal/recommend"
	"league-journey/internal/repository"
	"league-journey/internal/server"
	"league-journey/internal/service"
	"league-journey/internal/similarity"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewChapterRepository),
	fx.Provide(repository.NewPlaystyleRepository),
	fx.Provide(repository.NewSimilarityRepository),
	fx.Provide(repository.NewRecommendationRepository),
	fx.Provide(repository.NewChampionRepository),
	fx.Provide(repository.NewProPlayerRepository),
	// api clients
	fx.Provide(api.NewRiftClient),
	fx.Provide(api.NewDDragonClient),
	fx.Provide(api.NewNarrativeClient),
	// derivation
	fx.Provide(metrics.NewComputer),
	fx.Provide(chapters.NewAggregator),
	fx.Provide(playstyle.NewNormalizer),
	fx.Provide(similarity.NewMatcher),
	fx.Provide(recommend.NewEngine),
	// svc
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewPipelineService),
	fx.Provide(service.NewJourneyService),
	fx.Provide(service.NewChampionService),
	// server
	fx.Provide(server.NewJourneyServer),
)
