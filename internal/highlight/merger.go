// Package highlight merges bias passages and claim verdicts into a
// single, non-overlapping, ordered set of inline annotations over the
// original article text.
package highlight

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/pressgauge/pressgauge/internal/model"
)

// Kind distinguishes the two annotation sources
type Kind string

const (
	KindBias    Kind = "bias"
	KindMisinfo Kind = "misinfo"
)

// span is one candidate inline annotation, ephemeral to a single merge
type span struct {
	kind      Kind
	passage   string
	reason    string
	verdict   model.Verdict // misinfo only
	sourceURL string        // misinfo only; empty or NoSourceMarker when absent
	firstIdx  int           // index of passage's first occurrence in the article
}

// interval is a selected byte range of the original text
type interval struct {
	start int
	end   int
	sp    span
}

// Merge produces the article text with inline annotation markers inserted.
// Bias passages and claim verdicts whose passage text is not an exact
// substring of the article are silently dropped from display (the verdict
// data itself survives upstream in the report). Output is safe to embed
// directly as HTML body content: every piece of article or oracle text is
// escaped, and the wrapping markup is the only raw HTML.
func Merge(articleText string, biasPassages []model.BiasPassage, claimVerdicts []model.ClaimVerdict) string {
	// Bias spans are appended before misinfo spans, so a first-occurrence
	// tie keeps the bias span first after the stable sort.
	candidates := make([]span, 0, len(biasPassages)+len(claimVerdicts))

	for _, p := range biasPassages {
		idx := strings.Index(articleText, p.Passage)
		if idx < 0 || p.Passage == "" {
			continue
		}
		candidates = append(candidates, span{
			kind:     KindBias,
			passage:  p.Passage,
			reason:   p.Reasoning,
			firstIdx: idx,
		})
	}

	for _, v := range claimVerdicts {
		idx := strings.Index(articleText, v.OriginalPassage)
		if idx < 0 || v.OriginalPassage == "" {
			continue
		}
		candidates = append(candidates, span{
			kind:      KindMisinfo,
			passage:   v.OriginalPassage,
			reason:    v.Justification,
			verdict:   v.Verdict,
			sourceURL: v.Source,
			firstIdx:  idx,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].firstIdx < candidates[j].firstIdx
	})

	// Single-pass interval selection: each accepted span claims the first
	// occurrence of its passage that does not overlap an already-claimed
	// range, and a passage string is only ever annotated once.
	consumed := make(map[string]bool)
	var selected []interval

	for _, sp := range candidates {
		if consumed[sp.passage] {
			continue
		}
		start := firstFreeOccurrence(articleText, sp.passage, selected)
		if start < 0 {
			continue
		}
		selected = append(selected, interval{start: start, end: start + len(sp.passage), sp: sp})
		consumed[sp.passage] = true
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].start < selected[j].start
	})

	// Emit escaped text with markers spliced in
	var b strings.Builder
	pos := 0
	for _, iv := range selected {
		b.WriteString(html.EscapeString(articleText[pos:iv.start]))
		writeMarker(&b, iv.sp)
		pos = iv.end
	}
	b.WriteString(html.EscapeString(articleText[pos:]))

	return b.String()
}

// firstFreeOccurrence returns the index of the leftmost occurrence of
// passage in text that does not overlap any selected interval, or -1.
func firstFreeOccurrence(text, passage string, selected []interval) int {
	offset := 0
	for {
		idx := strings.Index(text[offset:], passage)
		if idx < 0 {
			return -1
		}
		start := offset + idx
		end := start + len(passage)
		if !overlapsAny(start, end, selected) {
			return start
		}
		offset = start + 1
	}
}

func overlapsAny(start, end int, selected []interval) bool {
	for _, iv := range selected {
		if start < iv.end && iv.start < end {
			return true
		}
	}
	return false
}

// writeMarker renders one annotation marker
func writeMarker(b *strings.Builder, sp span) {
	reason := html.EscapeString(sp.reason)
	passage := html.EscapeString(sp.passage)

	switch sp.kind {
	case KindBias:
		fmt.Fprintf(b, `<span class="highlight bias" data-reason="%s">%s</span>`, reason, passage)
	case KindMisinfo:
		class := "highlight misinfo " + strings.ToLower(string(sp.verdict))
		if isHTTPURL(sp.sourceURL) {
			fmt.Fprintf(b, `<span class="%s" data-reason="%s"><a href="%s" target="_blank" rel="noopener">%s</a></span>`,
				class, reason, html.EscapeString(sp.sourceURL), passage)
		} else {
			fmt.Fprintf(b, `<span class="%s" data-reason="%s">%s</span>`, class, reason, passage)
		}
	}
}

// isHTTPURL reports whether s looks like an http(s) URL worth linking
func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
