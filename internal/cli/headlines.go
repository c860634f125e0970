package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pressgauge/pressgauge/internal/cache"
	"github.com/pressgauge/pressgauge/internal/headlines"
	"github.com/pressgauge/pressgauge/internal/model"
	"github.com/spf13/cobra"
)

var (
	headlineFeeds []string
	headlineLimit int
	headlineTTL   time.Duration
)

// headlinesCmd represents the headlines command
var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Fetch cached headlines from configured RSS feeds",
	Long: `Headlines fetches the latest items from the configured RSS feeds.
Feed responses are cached with a TTL, so repeated calls within the
cache window do not hit the feeds again.

Example:
  pressgauge headlines
  pressgauge headlines --feed https://feeds.bbci.co.uk/news/world/rss.xml --limit 5`,
	RunE: runHeadlines,
}

func init() {
	rootCmd.AddCommand(headlinesCmd)

	headlinesCmd.Flags().StringArrayVar(&headlineFeeds, "feed", nil, "RSS feed URL (repeatable; defaults when empty)")
	headlinesCmd.Flags().IntVar(&headlineLimit, "limit", 12, "max headlines to show")
	headlinesCmd.Flags().DurationVar(&headlineTTL, "ttl", 15*time.Minute, "cache TTL for feed responses")
}

func runHeadlines(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := model.DefaultConfig()
	if len(headlineFeeds) > 0 {
		cfg.Headlines.Feeds = headlineFeeds
	}
	cfg.Headlines.Limit = headlineLimit
	cfg.Headlines.TTL = headlineTTL

	var feedCache cache.Cache
	if home, err := os.UserHomeDir(); err == nil {
		feedCache = cache.NewLayeredCache(headlineTTL, home+"/.pressgauge/cache", headlineTTL)
	}

	service := headlines.NewService(cfg.Headlines, feedCache)
	items := service.Fetch(ctx)
	if len(items) == 0 {
		return fmt.Errorf("no headlines available")
	}

	for _, h := range items {
		if h.PublishedAt.IsZero() {
			fmt.Printf("• [%s] %s\n  %s\n", h.Source, h.Title, h.Link)
		} else {
			fmt.Printf("• [%s] %s (%s)\n  %s\n", h.Source, h.Title, h.PublishedAt.Format("2006-01-02 15:04"), h.Link)
		}
	}
	return nil
}
