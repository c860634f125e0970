// Package search wraps the Google Custom Search JSON API for claim
// verification queries.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pressgauge/pressgauge/internal/cache"
	"github.com/pressgauge/pressgauge/internal/model"
	"github.com/pressgauge/pressgauge/internal/worker"
)

// Provider issues one web-search query and returns ranked results
type Provider interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// Error is a structured search failure carrying the HTTP status code and
// the raw response body. Callers receive this typed failure, never a panic.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("search failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// GoogleClient implements Provider against the Custom Search JSON API
type GoogleClient struct {
	apiKey     string
	engineID   string
	baseURL    string
	maxResults int
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      cache.Cache // nil disables caching
	cacheTTL   time.Duration
}

// Option configures a GoogleClient
type Option func(*GoogleClient)

// WithCache enables response caching with the given TTL
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(g *GoogleClient) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// WithLimiter enables rate limiting of outbound search calls
func WithLimiter(l *worker.Limiter) Option {
	return func(g *GoogleClient) {
		g.limiter = l
	}
}

// NewGoogleClient creates a search client from configuration
func NewGoogleClient(cfg model.SearchConfig, opts ...Option) *GoogleClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > 5 {
		maxResults = 5
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	g := &GoogleClient{
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// searchResponse mirrors the items array of the API response; any
// additional fields are discarded.
type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search performs one outbound search call. At most maxResults results
// are returned in provider relevance order. Missing item fields come
// back as empty strings. No retry at this layer.
func (g *GoogleClient) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	if g.cache != nil {
		if data, found := g.cache.Get(cache.Key("search", query)); found {
			var cached []model.SearchResult
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, g.baseURL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(g.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]model.SearchResult, 0, g.maxResults)
	for i, item := range parsed.Items {
		if i >= g.maxResults {
			break
		}
		results = append(results, model.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	if g.cache != nil {
		if data, err := json.Marshal(results); err == nil {
			_ = g.cache.Set(cache.Key("search", query), data, g.cacheTTL)
		}
	}

	return results, nil
}
