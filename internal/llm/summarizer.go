package llm

import (
	"context"
	"fmt"
)

// Summarizer produces the optional summary and neutral rewrite for a report.
// Failures here never fail the analysis run.
type Summarizer struct {
	provider Provider
}

// NewSummarizer creates a summarizer backed by the given provider
func NewSummarizer(provider Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

const summarizeSystem = "You are a neutral news editor. You summarize articles factually, without editorializing."

const rewriteSystem = "You are a neutral news editor. You rewrite articles to remove ideological framing while preserving every factual statement. Return only the rewritten article text."

// Summarize generates a 3-4 sentence summary of the article
func (s *Summarizer) Summarize(ctx context.Context, articleText string) (string, error) {
	prompt := fmt.Sprintf("Summarize the following article in 3-4 sentences. Report only what the article says.\n\nARTICLE:\n%s", articleText)

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		System:      summarizeSystem,
		Prompt:      prompt,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return resp.Text, nil
}

// Rewrite generates an unbiased rendition of the article
func (s *Summarizer) Rewrite(ctx context.Context, articleText string) (string, error) {
	prompt := fmt.Sprintf("Rewrite the following article with neutral language. Keep all facts, drop loaded framing, attribute opinions to their holders.\n\nARTICLE:\n%s", articleText)

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		System: rewriteSystem,
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite: %w", err)
	}
	return resp.Text, nil
}
