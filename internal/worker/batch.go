package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressgauge/pressgauge/internal/model"
)

// Analyzer defines the interface for analyzing one input
type Analyzer interface {
	AnalyzeURL(ctx context.Context, url string) (*model.Report, error)
	AnalyzeText(ctx context.Context, subject, text string) (*model.Report, error)
}

// AnalyzeJob analyzes one input: an http(s) URL or a local text file path
type AnalyzeJob struct {
	Input    string
	Analyzer Analyzer
}

// Execute runs the analysis for this job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.analyze(ctx)
	return &AnalyzeResult{
		Input:  j.Input,
		Report: report,
		Error:  err,
	}
}

func (j *AnalyzeJob) analyze(ctx context.Context) (*model.Report, error) {
	if strings.HasPrefix(j.Input, "http://") || strings.HasPrefix(j.Input, "https://") {
		return j.Analyzer.AnalyzeURL(ctx, j.Input)
	}

	data, err := os.ReadFile(j.Input)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	subject := strings.TrimSuffix(filepath.Base(j.Input), filepath.Ext(j.Input))
	return j.Analyzer.AnalyzeText(ctx, subject, string(data))
}

// AnalyzeResult is the result of one batch job
type AnalyzeResult struct {
	Input  string
	Report *model.Report
	Error  error
}

// GetError returns the error from the analysis
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple inputs concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// Process analyzes all inputs and returns results (completion order)
func (b *BatchProcessor) Process(ctx context.Context, inputs []string) []*AnalyzeResult {
	if len(inputs) == 0 {
		return nil
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	go func() {
		<-ctx.Done()
		pool.Shutdown()
	}()

	for _, input := range inputs {
		pool.Submit(&AnalyzeJob{Input: input, Analyzer: b.analyzer})
	}

	results := pool.Wait()

	out := make([]*AnalyzeResult, 0, len(results))
	for _, r := range results {
		if ar, ok := r.(*AnalyzeResult); ok {
			out = append(out, ar)
		}
	}
	return out
}

// ReadInputsFile reads one input per line, skipping blanks and comments
func ReadInputsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inputs file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var inputs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read inputs file: %w", err)
	}
	return inputs, nil
}
