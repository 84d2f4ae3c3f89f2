package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"league-journey/internal/config"
	"league-journey/internal/domain"

	"github.com/valyala/fasthttp"
)

const ddragonBase = "https://ddragon.leagueoflegends.com"

// DDragonClient reads the public Data Dragon static-data CDN. No auth,
// no rate limit headers.
type DDragonClient struct {
	locale string
	client *fasthttp.Client
}

func NewDDragonClient(cfg *config.Config) *DDragonClient {
	return &DDragonClient{
		locale: cfg.DDragonLocale,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type championFile struct {
	Data map[string]struct {
		Key   string `json:"key"` // numeric id as string
		ID    string `json:"id"`  // "Aatrox"
		Name  string `json:"name"`
		Title string `json:"title"`
		Image struct {
			Full string `json:"full"`
		} `json:"image"`
	} `json:"data"`
}

// LatestVersion resolves the newest published patch.
func (c *DDragonClient) LatestVersion(ctx context.Context) (string, error) {
	var versions []string
	if err := c.get(ctx, ddragonBase+"/api/versions.json", &versions); err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("versions.json returned no versions")
	}
	return versions[0], nil
}

// ChampionCatalog downloads the full champion list for a patch.
func (c *DDragonClient) ChampionCatalog(ctx context.Context, version string) ([]domain.Champion, error) {
	url := fmt.Sprintf("%s/cdn/%s/data/%s/champion.json", ddragonBase, version, c.locale)
	var file championFile
	if err := c.get(ctx, url, &file); err != nil {
		return nil, err
	}

	champions := make([]domain.Champion, 0, len(file.Data))
	for _, entry := range file.Data {
		championID, err := strconv.ParseInt(entry.Key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("champion %s has non-numeric key %q: %w", entry.ID, entry.Key, err)
		}
		champions = append(champions, domain.Champion{
			ChampionID:  championID,
			ChampionKey: entry.ID,
			Name:        entry.Name,
			Title:       entry.Title,
			ImageURL:    fmt.Sprintf("%s/cdn/%s/img/champion/%s", ddragonBase, version, entry.Image.Full),
		})
	}
	return champions, nil
}

func (c *DDragonClient) get(ctx context.Context, url string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return mapTransportError(err)
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return mapTransportError(err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("ddragon error: %d", resp.StatusCode())
	}
	return json.Unmarshal(resp.Body(), out)
}
