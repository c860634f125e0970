package model

import "time"

// Config holds the complete pressgauge configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Search      SearchConfig      `yaml:"search"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Headlines   HeadlinesConfig   `yaml:"headlines"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls outbound article fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// SearchConfig controls the web-search API used for claim verification
type SearchConfig struct {
	APIKey     string        `yaml:"api_key"`
	EngineID   string        `yaml:"engine_id"` // Custom search engine identifier (cx)
	BaseURL    string        `yaml:"base_url"`  // Override for tests
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	Burst      int           `yaml:"burst"`
}

// LLMConfig controls the language-model oracle
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// CacheConfig controls search-response and headline caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls parallelism
type ConcurrencyConfig struct {
	Workers       int           `yaml:"workers"`        // Batch analysis workers
	ClaimWorkers  int           `yaml:"claim_workers"`  // Parallel claim verifications per article
	BranchTimeout time.Duration `yaml:"branch_timeout"` // Per-branch budget for bias / verification
}

// HeadlinesConfig lists RSS feeds for the headline sidebar
type HeadlinesConfig struct {
	Feeds []string      `yaml:"feeds"`
	TTL   time.Duration `yaml:"ttl"`
	Limit int           `yaml:"limit"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Pressgauge/0.1 (+https://github.com/pressgauge/pressgauge)",
			MaxBodyBytes: 2_000_000,
		},
		Search: SearchConfig{
			BaseURL:    "https://www.googleapis.com/customsearch/v1",
			MaxResults: 5,
			Timeout:    15 * time.Second,
			RatePerSec: 2,
			Burst:      5,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   50,
			MaxTokens: 2000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:       4,
			ClaimWorkers:  3,
			BranchTimeout: 45 * time.Second,
		},
		Headlines: HeadlinesConfig{
			Feeds: []string{
				"https://feeds.bbci.co.uk/news/world/rss.xml",
				"https://feeds.reuters.com/reuters/topNews",
			},
			TTL:   15 * time.Minute,
			Limit: 12,
		},
	}
}
