// Package pipeline orchestrates one article analysis: bias annotation
// and claim verification run concurrently, then their outputs merge into
// the annotated article view.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pressgauge/pressgauge/internal/bias"
	"github.com/pressgauge/pressgauge/internal/cache"
	"github.com/pressgauge/pressgauge/internal/highlight"
	"github.com/pressgauge/pressgauge/internal/llm"
	"github.com/pressgauge/pressgauge/internal/model"
	"github.com/pressgauge/pressgauge/internal/search"
	"github.com/pressgauge/pressgauge/internal/verify"
	"github.com/pressgauge/pressgauge/internal/worker"
)

// Pipeline wires the analysis components for repeated runs
type Pipeline struct {
	fetcher    *Fetcher
	verifier   *verify.Verifier
	annotator  *bias.Annotator
	summarizer *llm.Summarizer
	config     *model.Config
}

// NewPipeline creates a pipeline from configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	oracle, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	var searchCache cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				dir = home + "/.pressgauge/cache"
			}
		}
		if dir != "" {
			searchCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
		}
	}

	limiter := worker.NewLimiter(cfg.Search.RatePerSec, cfg.Search.Burst)
	opts := []search.Option{search.WithLimiter(limiter)}
	if searchCache != nil {
		opts = append(opts, search.WithCache(searchCache, cfg.Cache.MemoryTTL))
	}
	searcher := search.NewGoogleClient(cfg.Search, opts...)

	return &Pipeline{
		fetcher: NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		verifier:   verify.NewVerifier(oracle, searcher, cfg.Concurrency.ClaimWorkers, cfg.Output.Verbose),
		annotator:  bias.NewAnnotator(oracle),
		summarizer: llm.NewSummarizer(oracle),
		config:     cfg,
	}, nil
}

// AnalyzeURL fetches an article by URL and analyzes it
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*model.Report, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	article, err := ExtractArticle(fetched.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	if article.Text == "" {
		return nil, fmt.Errorf("no readable text at %s", rawURL)
	}

	report, err := p.AnalyzeText(ctx, article.Title, article.Text)
	if err != nil {
		return nil, err
	}
	report.SourceURL = fetched.FinalURL
	report.FetchMeta = &fetched.Meta
	return report, nil
}

// AnalyzeText runs the full analysis over raw article text. The bias and
// verification branches run concurrently, each under its own timeout; a
// timed-out or failed branch degrades (nil bias report, empty verdicts)
// instead of failing the run.
func (p *Pipeline) AnalyzeText(ctx context.Context, subject, articleText string) (*model.Report, error) {
	budget := p.config.Concurrency.BranchTimeout
	if budget == 0 {
		budget = 45 * time.Second
	}

	var (
		wg         sync.WaitGroup
		biasReport *model.BiasReport
		verdicts   []model.ClaimVerdict
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, budget)
		defer cancel()

		report, err := p.annotator.Annotate(branchCtx, articleText)
		if err != nil {
			p.warnf("bias annotation failed: %v", err)
			return
		}
		biasReport = report
	}()
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, budget)
		defer cancel()

		verdicts = p.verifier.Verify(branchCtx, articleText)
	}()
	wg.Wait()

	var biasPassages []model.BiasPassage
	lean := ""
	if biasReport != nil {
		biasPassages = biasReport.Passages
		lean = model.LeanLabel(biasReport.Score)
	}

	report := &model.Report{
		Subject:       subject,
		AnalyzedAt:    time.Now().UTC(),
		Bias:          biasReport,
		Lean:          lean,
		Verdicts:      verdicts,
		AnnotatedHTML: highlight.Merge(articleText, biasPassages, verdicts),
	}

	// Summary and rewrite never fail the run
	if summary, err := p.summarizer.Summarize(ctx, articleText); err != nil {
		p.warnf("summary generation failed: %v", err)
	} else {
		report.Summary = summary
	}
	if rewrite, err := p.summarizer.Rewrite(ctx, articleText); err != nil {
		p.warnf("unbiased rewrite failed: %v", err)
	} else {
		report.UnbiasedText = rewrite
	}

	return report, nil
}

func (p *Pipeline) warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
