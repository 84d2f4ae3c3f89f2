package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"league-journey/internal/config"

	"github.com/valyala/fasthttp"
)

// NarrativeClient talks to the text-generation sidecar. Every request is a
// structured numeric summary of already-computed data; the response text is
// stored verbatim and never parsed back into numbers. When no base URL is
// configured the client reports itself disabled and callers skip enrichment.
type NarrativeClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewNarrativeClient(cfg *config.Config) *NarrativeClient {
	return &NarrativeClient{
		baseURL: cfg.NarrativeBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         20 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *NarrativeClient) Enabled() bool { return c.baseURL != "" }

type ChapterSummaryRequest struct {
	ChapterIndex     int     `json:"chapter_index"`
	Season           int     `json:"season"`
	GamesCount       int     `json:"games_count"`
	WinRate          float64 `json:"win_rate"`
	KDAScore         float64 `json:"kda_score"`
	CSScore          float64 `json:"cs_score"`
	DamageScore      float64 `json:"damage_score"`
	VisionScore      float64 `json:"vision_score"`
	TopChampion      string  `json:"top_champion"`
	TopChampionGames int     `json:"top_champion_games"`
}

type ChapterSummaryResponse struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type SimilarityExplanationRequest struct {
	ProName       string             `json:"pro_name"`
	ProRole       string             `json:"pro_role"`
	Score         float64            `json:"score"`
	PlayerVector  [6]float64         `json:"player_vector"`
	ProVector     [6]float64         `json:"pro_vector"`
	PlayerSignals map[string]float64 `json:"player_signals,omitempty"`
}

type SimilarityExplanationResponse struct {
	Explanation string `json:"explanation"`
}

type RecommendationReasonRequest struct {
	ChampionName string   `json:"champion_name"`
	Rank         int      `json:"rank"`
	SourcePros   []string `json:"source_pros,omitempty"`
}

type RecommendationReasonResponse struct {
	Reason string `json:"reason"`
}

func (c *NarrativeClient) ChapterSummary(ctx context.Context, req ChapterSummaryRequest) (*ChapterSummaryResponse, error) {
	return narrativePost[ChapterSummaryResponse](ctx, c, "/narrative/chapter-summary", req)
}

func (c *NarrativeClient) SimilarityExplanation(ctx context.Context, req SimilarityExplanationRequest) (*SimilarityExplanationResponse, error) {
	return narrativePost[SimilarityExplanationResponse](ctx, c, "/narrative/similarity-explanation", req)
}

func (c *NarrativeClient) RecommendationReason(ctx context.Context, req RecommendationReasonRequest) (*RecommendationReasonResponse, error) {
	return narrativePost[RecommendationReasonResponse](ctx, c, "/narrative/recommendation-reason", req)
}

func narrativePost[T any](ctx context.Context, c *NarrativeClient, path string, payload any) (*T, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("narrative client not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, mapTransportError(err)
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, mapTransportError(err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("narrative error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
