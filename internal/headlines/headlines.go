// Package headlines fetches and caches the RSS headline sidebar.
package headlines

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pressgauge/pressgauge/internal/cache"
	"github.com/pressgauge/pressgauge/internal/model"
)

// Service fetches headlines from configured feeds through a TTL cache.
// The cache is an explicit handle, never package-level state.
type Service struct {
	parser *gofeed.Parser
	cache  cache.Cache
	feeds  []string
	ttl    time.Duration
	limit  int
}

// NewService creates a headline service
func NewService(cfg model.HeadlinesConfig, c cache.Cache) *Service {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 12
	}

	return &Service{
		parser: gofeed.NewParser(),
		cache:  c,
		feeds:  cfg.Feeds,
		ttl:    ttl,
		limit:  limit,
	}
}

// Fetch returns up to the configured number of headlines across all
// feeds. Feeds that fail to parse are skipped with a warning; a fully
// failed fetch returns an empty slice, never an error.
func (s *Service) Fetch(ctx context.Context) []model.Headline {
	var headlines []model.Headline

	for _, feedURL := range s.feeds {
		items := s.fetchFeed(ctx, feedURL)
		headlines = append(headlines, items...)
		if len(headlines) >= s.limit {
			break
		}
	}

	if len(headlines) > s.limit {
		headlines = headlines[:s.limit]
	}
	return headlines
}

// fetchFeed returns one feed's headlines, from cache when fresh
func (s *Service) fetchFeed(ctx context.Context, feedURL string) []model.Headline {
	key := cache.Key("headlines", feedURL)

	if s.cache != nil {
		if data, found := s.cache.Get(key); found {
			var cached []model.Headline
			if json.Unmarshal(data, &cached) == nil {
				return cached
			}
		}
	}

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "headlines: fetch %s failed: %v\n", feedURL, err)
		return nil
	}

	items := make([]model.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		h := model.Headline{
			Title:  item.Title,
			Link:   item.Link,
			Source: feed.Title,
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = *item.PublishedParsed
		}
		items = append(items, h)
	}

	if s.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(key, data, s.ttl)
		}
	}

	return items
}
