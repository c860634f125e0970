package model

import "time"

// Report represents the complete analysis result for one article
type Report struct {
	Subject    string     `json:"subject"`              // Article title or derived subject
	SourceURL  string     `json:"source_url,omitempty"` // Set when the article was fetched from a URL
	AnalyzedAt time.Time  `json:"analyzed_at"`
	FetchMeta  *FetchMeta `json:"fetch_meta,omitempty"`

	Summary      string `json:"summary,omitempty"`       // Short oracle-generated summary
	UnbiasedText string `json:"unbiased_text,omitempty"` // Oracle-generated neutral rewrite

	Bias     *BiasReport    `json:"bias,omitempty"` // Nil when bias annotation failed or timed out
	Lean     string         `json:"lean,omitempty"` // Bucketed bias score label
	Verdicts []ClaimVerdict `json:"verdicts"`       // Extraction order; empty on verification failure

	AnnotatedHTML string `json:"annotated_html"` // Article text with inline highlight markers
}

// FetchMeta contains HTTP metadata from fetching the source article
type FetchMeta struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type,omitempty"`
	FinalURL    string `json:"final_url,omitempty"` // After redirects
}

// Headline is one cached sidebar headline from an RSS feed
type Headline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
