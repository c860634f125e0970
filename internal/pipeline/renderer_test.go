package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pressgauge/pressgauge/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Subject:    "Sample story",
		SourceURL:  "https://example.com/story",
		AnalyzedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Summary:    "A short summary.",
		Lean:       "Center-Left",
		Bias: &model.BiasReport{
			Score:               -3,
			RubricJustification: "selective sourcing",
		},
		Verdicts: []model.ClaimVerdict{
			{ClaimQuery: "q", OriginalPassage: "p", Verdict: model.VerdictSupported, Justification: "j", Source: "https://example.com"},
		},
		AnnotatedHTML: `before <span class="highlight bias" data-reason="r">flagged</span> after`,
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := NewRenderer().RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read report failed: %v", err)
	}

	var parsed model.Report
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if parsed.Subject != "Sample story" || parsed.Lean != "Center-Left" {
		t.Errorf("Round-tripped report differs: %+v", parsed)
	}
	if len(parsed.Verdicts) != 1 || parsed.Verdicts[0].Verdict != model.VerdictSupported {
		t.Errorf("Verdicts did not survive: %+v", parsed.Verdicts)
	}
}

func TestRenderHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := NewRenderer().RenderHTML(sampleReport(), path); err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read page failed: %v", err)
	}
	page := string(data)

	for _, want := range []string{
		"<title>Sample story</title>",
		"Lean: Center-Left",
		"A short summary.",
		"selective sourcing",
		// The merger's markup is embedded without re-escaping
		`<span class="highlight bias" data-reason="r">flagged</span>`,
		".highlight.misinfo.disputed",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("Page missing %q", want)
		}
	}
}

func TestRenderHTML_EmptySubject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	report := &model.Report{AnnotatedHTML: "text"}
	if err := NewRenderer().RenderHTML(report, path); err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "<title>Article analysis</title>") {
		t.Error("Expected fallback title")
	}
}
