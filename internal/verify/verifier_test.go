package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/pressgauge/pressgauge/internal/llm"
	"github.com/pressgauge/pressgauge/internal/model"
	"github.com/pressgauge/pressgauge/internal/search"
)

// fakeOracle routes extraction and adjudication calls by system prompt.
// adjudicate is keyed by the claim query embedded in the prompt.
type fakeOracle struct {
	extractText string
	extractErr  error
	adjudicate  func(prompt string) (string, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeOracle) Name() string { return "fake" }

func (f *fakeOracle) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeOracle) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if strings.HasPrefix(req.Prompt, "ARTICLE:") {
		if f.extractErr != nil {
			return nil, f.extractErr
		}
		return &llm.CompletionResponse{Text: f.extractText}, nil
	}

	text, err := f.adjudicate(req.Prompt)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Text: text}, nil
}

type fakeSearcher struct {
	results map[string][]model.SearchResult
	errs    map[string]error
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func verdictJSON(query, passage, verdict, justification, source string) string {
	return `{"claim-query": "` + query + `", "original-passage": "` + passage +
		`", "verdict": "` + verdict + `", "justification": "` + justification +
		`", "source": "` + source + `"}`
}

func TestVerify_OrderFollowsExtraction(t *testing.T) {
	oracle := &fakeOracle{
		extractText: `[
			{"claim-query": "q1", "original-passage": "p1"},
			{"claim-query": "q2", "original-passage": "p2"},
			{"claim-query": "q3", "original-passage": "p3"}
		]`,
		adjudicate: func(prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "CLAIM: q1"):
				return verdictJSON("q1", "p1", "Supported", "confirmed", "https://example.com/1"), nil
			case strings.Contains(prompt, "CLAIM: q2"):
				return verdictJSON("q2", "p2", "Disputed", "contradicted", "https://example.com/2"), nil
			default:
				return verdictJSON("q3", "p3", "Unverified", "nothing found", model.NoSourceMarker), nil
			}
		},
	}
	searcher := &fakeSearcher{
		results: map[string][]model.SearchResult{
			"q1": {{Title: "t", Link: "https://example.com/1", Snippet: "s"}},
			"q2": {{Title: "t", Link: "https://example.com/2", Snippet: "s"}},
			"q3": {},
		},
	}

	v := NewVerifier(oracle, searcher, 3, false)
	verdicts := v.Verify(context.Background(), "some article")

	if len(verdicts) != 3 {
		t.Fatalf("Expected 3 verdicts, got %d", len(verdicts))
	}
	for i, wantQuery := range []string{"q1", "q2", "q3"} {
		if verdicts[i].ClaimQuery != wantQuery {
			t.Errorf("Verdict %d: expected query %q, got %q", i, wantQuery, verdicts[i].ClaimQuery)
		}
	}
	if verdicts[0].Verdict != model.VerdictSupported || verdicts[1].Verdict != model.VerdictDisputed || verdicts[2].Verdict != model.VerdictUnverified {
		t.Errorf("Unexpected verdict sequence: %+v", verdicts)
	}
}

func TestVerify_SearchFailureDegradesToUnverified(t *testing.T) {
	oracle := &fakeOracle{
		extractText: `[{"claim-query": "blocked query", "original-passage": "blocked passage"}]`,
		adjudicate: func(prompt string) (string, error) {
			t.Error("Oracle must not be consulted when search fails")
			return "", errors.New("unreachable")
		},
	}
	searcher := &fakeSearcher{
		errs: map[string]error{
			"blocked query": &search.Error{StatusCode: 403, Body: "quota exceeded"},
		},
	}

	v := NewVerifier(oracle, searcher, 1, false)
	verdicts := v.Verify(context.Background(), "article")

	if len(verdicts) != 1 {
		t.Fatalf("Expected 1 degraded verdict, got %d", len(verdicts))
	}
	got := verdicts[0]
	if got.Verdict != model.VerdictUnverified {
		t.Errorf("Expected Unverified, got %q", got.Verdict)
	}
	if got.Source != model.NoSourceMarker {
		t.Errorf("Expected no-source marker, got %q", got.Source)
	}
	if got.OriginalPassage != "blocked passage" {
		t.Errorf("Expected extraction passage preserved, got %q", got.OriginalPassage)
	}
}

// cancellingSearcher cancels the run while its search call is in flight
type cancellingSearcher struct {
	cancel context.CancelFunc
}

func (s *cancellingSearcher) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	s.cancel()
	return nil, ctx.Err()
}

func TestVerify_CancelledRunDiscardsVerdicts(t *testing.T) {
	oracle := &fakeOracle{
		extractText: `[{"claim-query": "q1", "original-passage": "p1"}]`,
		adjudicate: func(prompt string) (string, error) {
			t.Error("Oracle must not adjudicate on a cancelled run")
			return "", errors.New("unreachable")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := NewVerifier(oracle, &cancellingSearcher{cancel: cancel}, 1, false)
	verdicts := v.Verify(ctx, "article")

	if len(verdicts) != 0 {
		t.Errorf("Expected empty result when the run is cancelled mid-search, got %d: %+v", len(verdicts), verdicts)
	}
}

func TestVerify_ExtractionFailureReturnsEmpty(t *testing.T) {
	oracle := &fakeOracle{extractErr: errors.New("oracle down")}
	v := NewVerifier(oracle, &fakeSearcher{}, 2, false)

	verdicts := v.Verify(context.Background(), "article")
	if len(verdicts) != 0 {
		t.Errorf("Expected empty result on extraction failure, got %d", len(verdicts))
	}
}

func TestVerify_ExtractionGarbageReturnsEmpty(t *testing.T) {
	oracle := &fakeOracle{extractText: "I could not find any claims, sorry."}
	v := NewVerifier(oracle, &fakeSearcher{}, 2, false)

	verdicts := v.Verify(context.Background(), "article")
	if len(verdicts) != 0 {
		t.Errorf("Expected empty result on unparseable extraction, got %d", len(verdicts))
	}
}

func TestVerify_AdjudicationFailureDiscardsPartials(t *testing.T) {
	oracle := &fakeOracle{
		extractText: `[
			{"claim-query": "q1", "original-passage": "p1"},
			{"claim-query": "q2", "original-passage": "p2"}
		]`,
		adjudicate: func(prompt string) (string, error) {
			if strings.Contains(prompt, "CLAIM: q1") {
				return verdictJSON("q1", "p1", "Supported", "confirmed", "https://example.com"), nil
			}
			return "", errors.New("oracle timeout")
		},
	}
	searcher := &fakeSearcher{results: map[string][]model.SearchResult{}}

	v := NewVerifier(oracle, searcher, 2, false)
	verdicts := v.Verify(context.Background(), "article")

	if len(verdicts) != 0 {
		t.Errorf("Expected partial results discarded, got %d: %+v", len(verdicts), verdicts)
	}
}

func TestVerify_MalformedRecordSkipsOnlyThatClaim(t *testing.T) {
	oracle := &fakeOracle{
		extractText: `[
			{"claim-query": "q1", "original-passage": "p1"},
			{"claim-query": "q2", "original-passage": "p2"}
		]`,
		adjudicate: func(prompt string) (string, error) {
			if strings.Contains(prompt, "CLAIM: q1") {
				// Missing justification, so the record is invalid
				return `{"claim-query": "q1", "original-passage": "p1", "verdict": "Supported", "source": "https://example.com"}`, nil
			}
			return verdictJSON("q2", "p2", "Disputed", "contradicted", "https://example.com/2"), nil
		},
	}
	searcher := &fakeSearcher{results: map[string][]model.SearchResult{}}

	v := NewVerifier(oracle, searcher, 2, false)
	verdicts := v.Verify(context.Background(), "article")

	if len(verdicts) != 1 {
		t.Fatalf("Expected only the valid claim, got %d", len(verdicts))
	}
	if verdicts[0].ClaimQuery != "q2" {
		t.Errorf("Expected q2 to survive, got %q", verdicts[0].ClaimQuery)
	}
}

func TestVerify_OracleRephrasingIsOverwritten(t *testing.T) {
	oracle := &fakeOracle{
		extractText: `[{"claim-query": "original query", "original-passage": "original passage"}]`,
		adjudicate: func(prompt string) (string, error) {
			return verdictJSON("a rephrased query", "a rephrased passage", "Supported", "confirmed", "https://example.com"), nil
		},
	}
	searcher := &fakeSearcher{results: map[string][]model.SearchResult{}}

	v := NewVerifier(oracle, searcher, 1, false)
	verdicts := v.Verify(context.Background(), "article")

	if len(verdicts) != 1 {
		t.Fatalf("Expected 1 verdict, got %d", len(verdicts))
	}
	if verdicts[0].ClaimQuery != "original query" || verdicts[0].OriginalPassage != "original passage" {
		t.Errorf("Expected extraction fields to win over the oracle's rephrasing, got %+v", verdicts[0])
	}
}

func TestNewVerifier_ClampsWorkers(t *testing.T) {
	v := NewVerifier(&fakeOracle{}, &fakeSearcher{}, 0, false)
	if v.workers != 1 {
		t.Errorf("Expected workers clamped to 1, got %d", v.workers)
	}
}

func TestAdjudicationPrompt(t *testing.T) {
	claim := model.Claim{QueryText: "did X happen", OriginalPassage: "X happened"}
	results := []model.SearchResult{
		{Title: "Report", Link: "https://example.com", Snippet: "details"},
	}

	prompt := adjudicationPrompt(claim, results)
	for _, want := range []string{"CLAIM: did X happen", "ORIGINAL PASSAGE: X happened", "1. Report", "https://example.com"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}

	empty := adjudicationPrompt(claim, nil)
	if !strings.Contains(empty, "SEARCH RESULTS: none") {
		t.Errorf("Expected empty-results marker, got:\n%s", empty)
	}
}
