package model

import "strings"

// Claim represents a candidate factual assertion extracted from an article
type Claim struct {
	QueryText       string `json:"claim-query"`      // Claim restated with enough context to search
	OriginalPassage string `json:"original-passage"` // Byte-exact substring of the source article
}

// IsValid reports whether both fields are non-empty after trimming
func (c Claim) IsValid() bool {
	return strings.TrimSpace(c.QueryText) != "" && strings.TrimSpace(c.OriginalPassage) != ""
}

// Verdict is the adjudicated truth status of a claim
type Verdict string

const (
	VerdictSupported  Verdict = "Supported"  // A retrieved result directly confirms the claim
	VerdictDisputed   Verdict = "Disputed"   // A retrieved result directly contradicts the claim
	VerdictUnverified Verdict = "Unverified" // No retrieved result speaks directly to the claim
)

// KnownVerdict reports whether v is one of the three accepted tags
func KnownVerdict(v Verdict) bool {
	switch v {
	case VerdictSupported, VerdictDisputed, VerdictUnverified:
		return true
	}
	return false
}

// NoSourceMarker is the literal source value used when no retrieved
// result applies to a claim.
const NoSourceMarker = "No relevant source found"

// ClaimVerdict is the adjudicated outcome for one claim
type ClaimVerdict struct {
	ClaimQuery      string  `json:"claim-query"`
	OriginalPassage string  `json:"original-passage"`
	Verdict         Verdict `json:"verdict"`
	Justification   string  `json:"justification"`
	Source          string  `json:"source"` // URL, or NoSourceMarker
}

// Trim returns a copy with all string fields whitespace-trimmed
func (v ClaimVerdict) Trim() ClaimVerdict {
	return ClaimVerdict{
		ClaimQuery:      strings.TrimSpace(v.ClaimQuery),
		OriginalPassage: strings.TrimSpace(v.OriginalPassage),
		Verdict:         Verdict(strings.TrimSpace(string(v.Verdict))),
		Justification:   strings.TrimSpace(v.Justification),
		Source:          strings.TrimSpace(v.Source),
	}
}

// IsValid reports whether all five fields are non-empty and the verdict
// tag is one of the three accepted values. Records failing this check are
// dropped, never propagated partially filled.
func (v ClaimVerdict) IsValid() bool {
	if v.ClaimQuery == "" || v.OriginalPassage == "" || v.Justification == "" || v.Source == "" {
		return false
	}
	return KnownVerdict(v.Verdict)
}

// SearchResult is one organic web-search hit
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
