// Package verify implements claim extraction and adjudication: each
// extracted claim gets exactly one web search, and the oracle decides
// Supported, Disputed, or Unverified from the returned results.
package verify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pressgauge/pressgauge/internal/llm"
	"github.com/pressgauge/pressgauge/internal/model"
	"github.com/pressgauge/pressgauge/internal/search"
)

const extractSystem = `You are a fact-checking assistant. From the article you are given, extract the factual claims that plausibly constitute misinformation, misrepresentation, or exaggeration.

For each claim return:
- "claim-query": the claim restated with enough article context to search the web meaningfully
- "original-passage": the claim exactly as it appears in the article, word for word, preserving all punctuation, quotation marks, and apostrophes; do not modify it at all

Return only a JSON array of objects with exactly those two keys. No markdown, no prose, no code comments.`

const adjudicateSystem = `You are a fact-checking assistant adjudicating one claim against web search results.

Rules:
- If no result directly confirms or contradicts the claim, the verdict is "Unverified" and the source is "No relevant source found".
- If one or more results directly confirm the claim, the verdict is "Supported"; cite the confirming result's link as the source.
- If a result directly contradicts the claim, the verdict is "Disputed"; cite the contradicting result's link as the source.
- If results conflict, prefer the most specific, most directly on-point result; if genuinely ambiguous, fall back to "Unverified" rather than guessing.

Return only a JSON object with exactly these keys: "claim-query", "original-passage", "verdict", "justification", "source". The verdict must be exactly "Supported", "Disputed", or "Unverified". The justification is one short sentence. No markdown, no prose.`

// Verifier runs the claim-verification pipeline for one article
type Verifier struct {
	oracle   llm.Provider
	searcher search.Provider
	workers  int
	verbose  bool
}

// NewVerifier creates a verifier. workers bounds how many claims are
// verified in parallel; order of the returned verdicts always follows
// claim-extraction order regardless.
func NewVerifier(oracle llm.Provider, searcher search.Provider, workers int, verbose bool) *Verifier {
	if workers <= 0 {
		workers = 1
	}
	return &Verifier{
		oracle:   oracle,
		searcher: searcher,
		workers:  workers,
		verbose:  verbose,
	}
}

// Verify extracts claims from the article and adjudicates each one.
// It never fails: any internal error degrades to an empty list, and
// partial results are discarded rather than returned half-formed.
func (v *Verifier) Verify(ctx context.Context, articleText string) []model.ClaimVerdict {
	claims, err := v.extractClaims(ctx, articleText)
	if err != nil {
		v.logf("claim extraction failed: %v", err)
		return []model.ClaimVerdict{}
	}
	if len(claims) == 0 {
		return []model.ClaimVerdict{}
	}

	v.logf("extracted %d claims", len(claims))

	// Slots are index-addressed so extraction order survives parallel
	// completion. A nil slot means the claim's verdict record was dropped.
	slots := make([]*model.ClaimVerdict, len(claims))
	var failed bool
	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.workers)

	for i, claim := range claims {
		wg.Add(1)
		go func(idx int, c model.Claim) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				mu.Lock()
				failed = true
				mu.Unlock()
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			verdict, err := v.verifyClaim(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = true
				return
			}
			slots[idx] = verdict
		}(i, claim)
	}

	wg.Wait()

	if failed {
		v.logf("verification aborted; discarding partial results")
		return []model.ClaimVerdict{}
	}

	verdicts := make([]model.ClaimVerdict, 0, len(claims))
	for _, slot := range slots {
		if slot != nil {
			verdicts = append(verdicts, *slot)
		}
	}
	return verdicts
}

// extractClaims asks the oracle for candidate claims
func (v *Verifier) extractClaims(ctx context.Context, articleText string) ([]model.Claim, error) {
	resp, err := v.oracle.Complete(ctx, llm.CompletionRequest{
		System: extractSystem,
		Prompt: "ARTICLE:\n" + articleText,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction oracle: %w", err)
	}
	return parseClaims(resp.Text)
}

// verifyClaim issues the claim's single search call and adjudicates.
// A search transport failure degrades the claim to Unverified without
// consulting the oracle; a search failure on a cancelled or expired
// context is a run failure instead, so a timed-out run never fabricates
// verdicts. A nil verdict with nil error means the adjudication record
// was malformed and the claim is skipped.
func (v *Verifier) verifyClaim(ctx context.Context, claim model.Claim) (*model.ClaimVerdict, error) {
	results, err := v.searcher.Search(ctx, claim.QueryText)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		v.logf("search failed for %q: %v", claim.QueryText, err)
		return &model.ClaimVerdict{
			ClaimQuery:      claim.QueryText,
			OriginalPassage: claim.OriginalPassage,
			Verdict:         model.VerdictUnverified,
			Justification:   "Search was unavailable, so the claim could not be checked against external sources.",
			Source:          model.NoSourceMarker,
		}, nil
	}

	resp, err := v.oracle.Complete(ctx, llm.CompletionRequest{
		System: adjudicateSystem,
		Prompt: adjudicationPrompt(claim, results),
	})
	if err != nil {
		return nil, fmt.Errorf("adjudication oracle: %w", err)
	}

	records, err := parseVerdicts(resp.Text)
	if err != nil || len(records) == 0 {
		// The record came back malformed; skip this claim, keep the rest
		v.logf("dropping malformed verdict for %q", claim.QueryText)
		return nil, nil
	}

	rec := records[0]
	// The oracle occasionally echoes a rephrased claim; keep the extraction
	// pass's fields so the passage can still match the article verbatim.
	rec.ClaimQuery = claim.QueryText
	rec.OriginalPassage = claim.OriginalPassage
	return &rec, nil
}

// adjudicationPrompt formats the claim and its search results for the oracle
func adjudicationPrompt(claim model.Claim, results []model.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CLAIM: %s\n", claim.QueryText)
	fmt.Fprintf(&b, "ORIGINAL PASSAGE: %s\n\n", claim.OriginalPassage)

	if len(results) == 0 {
		b.WriteString("SEARCH RESULTS: none\n")
		return b.String()
	}

	b.WriteString("SEARCH RESULTS:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Link, r.Snippet)
	}
	return b.String()
}

func (v *Verifier) logf(format string, args ...interface{}) {
	if v.verbose {
		fmt.Fprintf(os.Stderr, "verify: "+format+"\n", args...)
	}
}
