package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xhad/rescript/internal/models"
	"golang.org/x/time/rate"
)

// CaptionConfig configures the hosted captions endpoint provider.
type CaptionConfig struct {
	BaseURL   string
	Language  string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// CaptionClient fetches transcripts from a hosted captions service, one GET
// per video, keyed by video ID and language. It is the cheapest provider and
// sits first in the fallback chain.
type CaptionClient struct {
	config  CaptionConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewCaptionClient(config CaptionConfig) *CaptionClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://youtube-transcript-api.deno.dev"
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}

	return &CaptionClient{
		config:  config,
		client:  newHTTPClient(config.Timeout),
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func (c *CaptionClient) Name() string {
	return "captions"
}

func (c *CaptionClient) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, providerErr(c.Name(), "rate limiter wait cancelled", err)
	}

	query := url.Values{}
	query.Set("video_id", videoID)
	query.Set("lang", c.config.Language)
	endpoint := c.config.BaseURL + "/?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, providerErr(c.Name(), "building request failed", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, providerErr(c.Name(), "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providerErr(c.Name(), fmt.Sprintf("received status code %d", resp.StatusCode), nil)
	}

	var segments []models.Segment
	if err := json.NewDecoder(resp.Body).Decode(&segments); err != nil {
		return nil, providerErr(c.Name(), "malformed payload", err)
	}

	if len(segments) == 0 {
		return nil, providerErr(c.Name(), "empty segment list", nil)
	}

	return segments, nil
}
