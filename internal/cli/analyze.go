package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressgauge/pressgauge/internal/model"
	"github.com/pressgauge/pressgauge/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outHTML     string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url|file|->",
	Short: "Analyze one article for bias and misinformation",
	Long: `Analyze runs the full pipeline over one article:
- Score ideological bias and flag loaded passages
- Extract factual claims and verify each with one web search
- Merge both annotation sets into an inline-highlighted article view
- Generate a summary and an unbiased rewrite

The input is an http(s) URL, a local text file, or "-" for stdin.

Example:
  pressgauge analyze https://example.com/news/story
  pressgauge analyze article.txt --json report.json --html report.html
  cat article.txt | pressgauge analyze - --llm-provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outHTML, "html", "", "output annotated HTML path (optional)")

	// HTTP flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "Pressgauge/0.1 (+https://github.com/pressgauge/pressgauge)", "HTTP User-Agent")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable search-response cache")
	analyzeCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	analyzeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	analyzeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", input)
		fmt.Fprintf(os.Stderr, "LLM: %s\n", cfg.LLM.Provider)
		fmt.Fprintln(os.Stderr)
	}

	var report *model.Report
	switch {
	case strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"):
		report, err = p.AnalyzeURL(ctx, input)
	case input == "-":
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		report, err = p.AnalyzeText(ctx, "Pasted article", string(data))
	default:
		data, readErr := os.ReadFile(input)
		if readErr != nil {
			return fmt.Errorf("read input file: %w", readErr)
		}
		subject := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		report, err = p.AnalyzeText(ctx, subject, string(data))
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := pipeline.NewRenderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outHTML != "" {
		if err := renderer.RenderHTML(report, outHTML); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote HTML: %s\n", outHTML)
		}
	}

	renderer.RenderSummary(report)
	return nil
}

// buildConfig assembles configuration from flags and environment
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.InsecureTLS = insecureTLS
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	cfg.Search.APIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	cfg.Search.EngineID = os.Getenv("GOOGLE_CSE_ID")
	if cfg.Search.APIKey == "" || cfg.Search.EngineID == "" {
		return nil, fmt.Errorf("GOOGLE_SEARCH_API_KEY and GOOGLE_CSE_ID environment variables must be set")
	}

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
