package pipeline

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/pressgauge/pressgauge/internal/model"
)

// Renderer writes analysis reports to files and the terminal
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
  body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; line-height: 1.6; padding: 0 1rem; }
  header { border-bottom: 1px solid #ccc; margin-bottom: 1.5rem; }
  .lean { font-weight: bold; }
  .highlight { padding: 0 2px; border-radius: 2px; cursor: help; }
  .highlight.bias { background: #fff3b0; }
  .highlight.misinfo.supported { background: #c9f2c7; }
  .highlight.misinfo.disputed { background: #f8c4c4; }
  .highlight.misinfo.unverified { background: #e0e0e0; }
  .article { white-space: pre-wrap; }
  section { margin-top: 2rem; }
</style>
</head>
<body>
<header>
<h1>%s</h1>
%s
</header>
<div class="article">%s</div>
%s
</body>
</html>
`

// RenderHTML writes a standalone annotated-article page
func (r *Renderer) RenderHTML(report *model.Report, path string) error {
	title := html.EscapeString(report.Subject)
	if title == "" {
		title = "Article analysis"
	}

	var meta strings.Builder
	if report.Lean != "" {
		fmt.Fprintf(&meta, `<p class="lean">Lean: %s</p>`, html.EscapeString(report.Lean))
	}
	if report.Summary != "" {
		fmt.Fprintf(&meta, "<p>%s</p>", html.EscapeString(report.Summary))
	}

	var sections strings.Builder
	if report.Bias != nil && report.Bias.RubricJustification != "" {
		fmt.Fprintf(&sections, "<section><h2>Bias rubric</h2><p>%s</p></section>",
			html.EscapeString(report.Bias.RubricJustification))
	}
	if report.UnbiasedText != "" {
		fmt.Fprintf(&sections, `<section><h2>Unbiased rewrite</h2><div class="article">%s</div></section>`,
			html.EscapeString(report.UnbiasedText))
	}

	// AnnotatedHTML is already escaped and annotated by the merger
	page := fmt.Sprintf(htmlPage, title, title, meta.String(), report.AnnotatedHTML, sections.String())

	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return fmt.Errorf("write HTML: %w", err)
	}
	return nil
}

// RenderSummary prints a terminal summary of the report
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", report.Subject)
	fmt.Println("═══════════════════════════════════════════════════════════")
	if report.Bias != nil {
		fmt.Printf("  Bias score:  %+d (%s)\n", report.Bias.Score, report.Lean)
	} else {
		fmt.Println("  Bias score:  unavailable")
	}
	fmt.Printf("  Claims checked: %d\n", len(report.Verdicts))

	counts := map[model.Verdict]int{}
	for _, v := range report.Verdicts {
		counts[v.Verdict]++
	}
	if len(report.Verdicts) > 0 {
		fmt.Printf("    Supported:  %d\n", counts[model.VerdictSupported])
		fmt.Printf("    Disputed:   %d\n", counts[model.VerdictDisputed])
		fmt.Printf("    Unverified: %d\n", counts[model.VerdictUnverified])
	}
	fmt.Println()
}
