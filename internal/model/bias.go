package model

import "strings"

// BiasPassage is a substring of the article flagged by the bias oracle
// as exhibiting ideological framing. Consumed read-only.
type BiasPassage struct {
	Passage   string `json:"passage"`   // Exact substring of the article
	Reasoning string `json:"reasoning"` // Why the passage was flagged
}

// IsValid reports whether both fields are non-empty after trimming
func (p BiasPassage) IsValid() bool {
	return strings.TrimSpace(p.Passage) != "" && strings.TrimSpace(p.Reasoning) != ""
}

// BiasReport is the bias oracle's full output for one article
type BiasReport struct {
	Score               int           `json:"bias_score"`           // -10 (far left) .. +10 (far right)
	RubricJustification string        `json:"rubric_justification"` // How the score was reached
	Passages            []BiasPassage `json:"highlighted_passages"`
}

// LeanLabel buckets a bias score into a human-readable lean.
// Thresholds are symmetric around zero.
func LeanLabel(score int) string {
	switch {
	case score <= -6:
		return "Left"
	case score <= -2:
		return "Center-Left"
	case score < 2:
		return "Center"
	case score < 6:
		return "Center-Right"
	default:
		return "Right"
	}
}
