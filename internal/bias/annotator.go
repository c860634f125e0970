// Package bias consumes the bias-annotation oracle: a bias score, a
// rubric justification, and a set of exact-substring passages with
// reasoning. Only the output contract is enforced here.
package bias

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pressgauge/pressgauge/internal/llm"
	"github.com/pressgauge/pressgauge/internal/model"
)

const annotateSystem = `You are a media-bias analyst. Score the article's ideological lean on an integer scale from -10 (far left) to +10 (far right), justify the score against a neutral-coverage rubric, and flag the passages that exhibit ideological framing.

Each flagged passage must be an exact substring of the article, copied word for word with all punctuation preserved.

Return only a JSON object with exactly these keys:
{"bias_score": <integer>, "rubric_justification": "<string>", "highlighted_passages": [{"passage": "<string>", "reasoning": "<string>"}]}
No markdown, no prose.`

// Annotator drives the bias oracle for one article
type Annotator struct {
	oracle llm.Provider
}

// NewAnnotator creates an annotator backed by the given provider
func NewAnnotator(oracle llm.Provider) *Annotator {
	return &Annotator{oracle: oracle}
}

// Annotate scores the article and returns the validated bias report.
// Passages with a missing field are dropped; malformed JSON fails the call.
func (a *Annotator) Annotate(ctx context.Context, articleText string) (*model.BiasReport, error) {
	resp, err := a.oracle.Complete(ctx, llm.CompletionRequest{
		System: annotateSystem,
		Prompt: "ARTICLE:\n" + articleText,
	})
	if err != nil {
		return nil, fmt.Errorf("bias oracle: %w", err)
	}

	return parseReport(resp.Text)
}

// parseReport validates the oracle's output against the bias contract
func parseReport(raw string) (*model.BiasReport, error) {
	payload := stripFences(raw)

	var report model.BiasReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("parse bias report: %w", err)
	}

	valid := make([]model.BiasPassage, 0, len(report.Passages))
	for _, p := range report.Passages {
		p.Passage = strings.TrimSpace(p.Passage)
		p.Reasoning = strings.TrimSpace(p.Reasoning)
		if p.IsValid() {
			valid = append(valid, p)
		}
	}
	report.Passages = valid
	report.RubricJustification = strings.TrimSpace(report.RubricJustification)

	return &report, nil
}

// stripFences removes incidental markdown code-fence wrapping
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
