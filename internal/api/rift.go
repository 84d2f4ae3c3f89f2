package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"league-journey/internal/config"
	"league-journey/internal/domain"

	"github.com/valyala/fasthttp"
)

// RiftClient talks to the match-fetching gateway that wraps the Riot API.
// The gateway owns Riot rate limiting; we only mirror what its headers
// report so operators can see remaining budget.
type RiftClient struct {
	baseURL     string
	apiKey      string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewRiftClient(cfg *config.Config) *RiftClient {
	return &RiftClient{
		baseURL: cfg.RiftAPIBaseURL,
		apiKey:  cfg.RiftAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:     100,
			Remaining: 100,
			Reset:     120,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *RiftClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiftClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// FetchMatchesRequest selects which matches the gateway should return.
type FetchMatchesRequest struct {
	RiotID string `json:"riot_id"`
	Region string `json:"region"`
	Year   int    `json:"year"`
	Role   string `json:"role"`
	Max    int    `json:"max"`
}

// FetchMatchesResponse carries raw match documents. Each element is an
// opaque payload stored whole; parsing happens at metrics time.
type FetchMatchesResponse struct {
	Status int               `json:"status"`
	Data   []json.RawMessage `json:"data"`
}

type AccountResponse struct {
	Status int         `json:"status"`
	Data   AccountData `json:"data"`
}

type AccountData struct {
	Puuid         string `json:"puuid"`
	GameName      string `json:"game_name"`
	TagLine       string `json:"tag_line"`
	Region        string `json:"region"`
	SummonerID    string `json:"summoner_id"`
	ProfileIconID int64  `json:"profile_icon_id"`
	SummonerLevel int    `json:"summoner_level"`
}

func (c *RiftClient) GetAccount(ctx context.Context, gameName, tagLine, region string) (*AccountResponse, error) {
	url := fmt.Sprintf("%s/accounts/%s/%s/%s", c.baseURL, region, gameName, tagLine)
	return doRequest[AccountResponse](ctx, c, fasthttp.MethodGet, url, nil)
}

// FetchMatches pulls a player's raw match batch from the gateway.
func (c *RiftClient) FetchMatches(ctx context.Context, req FetchMatchesRequest) (*FetchMatchesResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return doRequest[FetchMatchesResponse](ctx, c, fasthttp.MethodPost, c.baseURL+"/matches/fetch", body)
}

func doRequest[T any](ctx context.Context, client *RiftClient, method, url string, body []byte) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if client.apiKey != "" {
		req.Header.Set("Authorization", client.apiKey)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, mapTransportError(err)
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, mapTransportError(err)
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func mapTransportError(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	return err
}
