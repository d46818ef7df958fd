package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider queries an external video index for candidate footage. An empty
// result list is a valid outcome, not an error; callers decide how to treat
// it.
type Provider interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Options configures the YouTube Data API backed provider.
type Options struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
}

// YouTubeProvider searches the YouTube Data API v3 and returns ranked watch
// URLs for the top candidates.
type YouTubeProvider struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

func NewYouTubeProvider(opts Options) *YouTubeProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &YouTubeProvider{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		maxResults: maxResults,
		client:     client,
	}
}

// Search returns candidate video URLs ranked by the index's relevance order.
func (p *YouTubeProvider) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("part", "id")
	q.Set("type", "video")
	q.Set("videoEmbeddable", "true")
	q.Set("maxResults", fmt.Sprintf("%d", p.maxResults))
	q.Set("q", query)
	if p.apiKey != "" {
		q.Set("key", p.apiKey)
	}

	endpoint := p.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("video search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("video search status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var urls []string
	for _, item := range out.Items {
		if item.ID.VideoID == "" {
			continue
		}
		urls = append(urls, "https://www.youtube.com/watch?v="+item.ID.VideoID)
	}
	return urls, nil
}

var _ Provider = (*YouTubeProvider)(nil)
