package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"league-journey/internal/domain"
	"league-journey/internal/service"

	"github.com/rs/zerolog"
)

// JourneyServer is the HTTP boundary. Handlers translate the request, call
// one service, and map the error; nothing else lives here.
type JourneyServer struct {
	ingest   *service.IngestService
	pipeline *service.PipelineService
	journey  *service.JourneyService
	champs   *service.ChampionService
	logger   zerolog.Logger
}

func NewJourneyServer(
	ingest *service.IngestService,
	pipeline *service.PipelineService,
	journey *service.JourneyService,
	champs *service.ChampionService,
	logger zerolog.Logger,
) *JourneyServer {
	return &JourneyServer{
		ingest:   ingest,
		pipeline: pipeline,
		journey:  journey,
		champs:   champs,
		logger:   logger,
	}
}

// Register wires the routes onto a mux.
func (s *JourneyServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /players/{riotID}/sync", s.handleSync)
	mux.HandleFunc("GET /players/{riotID}/journey", s.handleJourney)
	mux.HandleFunc("POST /admin/seed-champions", s.handleSeedChampions)
	mux.HandleFunc("POST /admin/refresh-pros", s.handleRefreshPros)
	mux.HandleFunc("POST /admin/run-all", s.handleRunAll)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// handleSync registers the player if needed and runs their full pipeline.
func (s *JourneyServer) handleSync(w http.ResponseWriter, r *http.Request) {
	gameName, tagLine, err := splitRiotID(r.PathValue("riotID"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	region := r.URL.Query().Get("region")
	if region == "" {
		region = "euw1"
	}

	player, err := s.ingest.ResolvePlayer(r.Context(), gameName, tagLine, region)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	report, err := s.pipeline.RunPlayer(r.Context(), player.ID)
	if err != nil {
		// The report carries how far the run got; return it alongside the
		// failure status so callers can see partial progress.
		s.writeJSON(w, statusFor(err), report)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *JourneyServer) handleJourney(w http.ResponseWriter, r *http.Request) {
	gameName, tagLine, err := splitRiotID(r.PathValue("riotID"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	region := r.URL.Query().Get("region")
	if region == "" {
		region = "euw1"
	}

	player, err := s.ingest.ResolvePlayer(r.Context(), gameName, tagLine, region)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	journey, err := s.journey.GetJourney(r.Context(), player)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, journey)
}

func (s *JourneyServer) handleSeedChampions(w http.ResponseWriter, r *http.Request) {
	count, err := s.champs.Seed(r.Context())
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"seeded": count})
}

func (s *JourneyServer) handleRefreshPros(w http.ResponseWriter, r *http.Request) {
	refreshed, err := s.pipeline.RunProPlayers(r.Context())
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"refreshed": refreshed})
}

func (s *JourneyServer) handleRunAll(w http.ResponseWriter, r *http.Request) {
	batch, err := s.pipeline.RunAll(r.Context())
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, batch)
}

func (s *JourneyServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// splitRiotID parses "GameName#TAG" (hash possibly URL-escaped).
func splitRiotID(raw string) (string, string, error) {
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return "", "", fmt.Errorf("malformed riot id: %w", err)
	}
	gameName, tagLine, ok := strings.Cut(unescaped, "#")
	if !ok || gameName == "" || tagLine == "" {
		return "", "", fmt.Errorf("riot id must be GameName#TAG, got %q", unescaped)
	}
	return gameName, tagLine, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrConstraintViolation), errors.Is(err, domain.ErrAmbiguousOwner):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *JourneyServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}

func (s *JourneyServer) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
